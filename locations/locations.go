// Package locations bundles the static country → state → city reference
// dataset used by the registration form's cascading selector. The dataset
// is intentionally small; production deployments supply their own provider
// backed by a full gazetteer.
package locations

import (
	authflow "github.com/Saroj-Kumarr/ribitto-authflow"
)

// Static is the bundled [authflow.LocationProvider]. All lookups are
// in-memory and return fresh slices, so callers may mutate results freely.
type Static struct{}

// New returns the bundled dataset provider.
func New() *Static {
	return &Static{}
}

type stateEntry struct {
	option authflow.LocationOption
	cities []string
}

var countries = []authflow.LocationOption{
	{Code: "IN", Name: "India"},
	{Code: "US", Name: "United States"},
	{Code: "AE", Name: "United Arab Emirates"},
}

var states = map[string][]stateEntry{
	"IN": {
		{option: authflow.LocationOption{Code: "MH", Name: "Maharashtra"}, cities: []string{"Mumbai", "Pune", "Nagpur"}},
		{option: authflow.LocationOption{Code: "KA", Name: "Karnataka"}, cities: []string{"Bengaluru", "Mysuru", "Mangaluru"}},
		{option: authflow.LocationOption{Code: "DL", Name: "Delhi"}, cities: []string{"New Delhi"}},
		{option: authflow.LocationOption{Code: "TN", Name: "Tamil Nadu"}, cities: []string{"Chennai", "Coimbatore"}},
	},
	"US": {
		{option: authflow.LocationOption{Code: "CA", Name: "California"}, cities: []string{"San Francisco", "Los Angeles", "San Diego"}},
		{option: authflow.LocationOption{Code: "NY", Name: "New York"}, cities: []string{"New York City", "Buffalo"}},
		{option: authflow.LocationOption{Code: "TX", Name: "Texas"}, cities: []string{"Austin", "Houston", "Dallas"}},
	},
	"AE": {
		{option: authflow.LocationOption{Code: "DU", Name: "Dubai"}, cities: []string{"Dubai"}},
		{option: authflow.LocationOption{Code: "AZ", Name: "Abu Dhabi"}, cities: []string{"Abu Dhabi", "Al Ain"}},
	},
}

// Countries describes the countries operation and its observable behavior.
func (*Static) Countries() []authflow.LocationOption {
	out := make([]authflow.LocationOption, len(countries))
	copy(out, countries)
	return out
}

// StatesOf returns the states of the given country code, nil when unknown.
func (*Static) StatesOf(country string) []authflow.LocationOption {
	entries, ok := states[country]
	if !ok {
		return nil
	}
	out := make([]authflow.LocationOption, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.option)
	}
	return out
}

// CitiesOf returns the cities of the given country and state code, nil
// when either is unknown.
func (*Static) CitiesOf(country, state string) []string {
	entries, ok := states[country]
	if !ok {
		return nil
	}
	for _, e := range entries {
		if e.option.Code == state {
			out := make([]string, len(e.cities))
			copy(out, e.cities)
			return out
		}
	}
	return nil
}
