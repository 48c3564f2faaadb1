package authflow

// LocationSelection is a committed country → state → city triple. The
// cascade invariant holds at all times: state belongs to the country's
// state set (or is empty), city belongs to the (country, state) city set
// (or is empty).
type LocationSelection struct {
	Country string
	State   string
	City    string
}

// Complete reports whether all three levels are selected.
func (s LocationSelection) Complete() bool {
	return s.Country != "" && s.State != "" && s.City != ""
}

// LocationSelector enforces the cascading-invalidation relation at the
// mutation boundary: every setter is a single atomic update of the whole
// triple, so an inconsistent selection can never be observed, not even
// mid-update.
type LocationSelector struct {
	provider  LocationProvider
	selection LocationSelection
}

// NewLocationSelector creates a selector over the given reference dataset.
func NewLocationSelector(provider LocationProvider) *LocationSelector {
	return &LocationSelector{provider: provider}
}

// Selection returns the committed triple.
func (s *LocationSelector) Selection() LocationSelection {
	return s.selection
}

// Countries describes the countries operation and its observable behavior.
func (s *LocationSelector) Countries() []LocationOption {
	return s.provider.Countries()
}

// States returns the state options for the selected country.
func (s *LocationSelector) States() []LocationOption {
	if s.selection.Country == "" {
		return nil
	}
	return s.provider.StatesOf(s.selection.Country)
}

// Cities returns the city options for the selected country and state.
func (s *LocationSelector) Cities() []string {
	if s.selection.Country == "" || s.selection.State == "" {
		return nil
	}
	return s.provider.CitiesOf(s.selection.Country, s.selection.State)
}

// SetCountry selects a country and unconditionally clears state and city.
// An unknown code is rejected and leaves the selection unchanged.
func (s *LocationSelector) SetCountry(code string) error {
	if !optionMember(s.provider.Countries(), code) {
		return ErrLocationInvalid
	}
	s.selection = LocationSelection{Country: code}
	return nil
}

// SetState selects a state within the current country. The city is cleared
// on every state change — including re-selecting the same value, so a stale
// city can never survive a state interaction.
func (s *LocationSelector) SetState(code string) error {
	if s.selection.Country == "" {
		return ErrLocationInvalid
	}
	if !optionMember(s.provider.StatesOf(s.selection.Country), code) {
		return ErrLocationInvalid
	}
	s.selection = LocationSelection{Country: s.selection.Country, State: code}
	return nil
}

// SetCity selects a city within the current country and state.
func (s *LocationSelector) SetCity(name string) error {
	if s.selection.Country == "" || s.selection.State == "" {
		return ErrLocationInvalid
	}
	if !cityMember(s.provider.CitiesOf(s.selection.Country, s.selection.State), name) {
		return ErrLocationInvalid
	}
	s.selection = LocationSelection{
		Country: s.selection.Country,
		State:   s.selection.State,
		City:    name,
	}
	return nil
}

// ComposedLocation returns the display string "city, state, country".
// It fails with ErrLocationIncomplete while any level is unselected.
func (s *LocationSelector) ComposedLocation() (string, error) {
	if !s.selection.Complete() {
		return "", ErrLocationIncomplete
	}
	return s.selection.City + ", " + s.selection.State + ", " + s.selection.Country, nil
}

// Reset clears the whole selection.
func (s *LocationSelector) Reset() {
	s.selection = LocationSelection{}
}

func optionMember(opts []LocationOption, code string) bool {
	for _, o := range opts {
		if o.Code == code {
			return true
		}
	}
	return false
}

func cityMember(cities []string, name string) bool {
	for _, c := range cities {
		if c == name {
			return true
		}
	}
	return false
}
