package authflow

import (
	"errors"
	"testing"
)

type testProvider struct{}

func (testProvider) Countries() []LocationOption {
	return []LocationOption{
		{Code: "IN", Name: "India"},
		{Code: "US", Name: "United States"},
	}
}

func (testProvider) StatesOf(country string) []LocationOption {
	switch country {
	case "IN":
		return []LocationOption{
			{Code: "MH", Name: "Maharashtra"},
			{Code: "KA", Name: "Karnataka"},
		}
	case "US":
		return []LocationOption{{Code: "CA", Name: "California"}}
	default:
		return nil
	}
}

func (testProvider) CitiesOf(country, state string) []string {
	if country == "IN" && state == "MH" {
		return []string{"Mumbai", "Pune"}
	}
	if country == "IN" && state == "KA" {
		return []string{"Bengaluru"}
	}
	if country == "US" && state == "CA" {
		return []string{"San Francisco"}
	}
	return nil
}

func TestLocationSelectorCascadeReset(t *testing.T) {
	s := NewLocationSelector(testProvider{})

	if err := s.SetCountry("IN"); err != nil {
		t.Fatalf("SetCountry: %v", err)
	}
	if err := s.SetState("MH"); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := s.SetCity("Mumbai"); err != nil {
		t.Fatalf("SetCity: %v", err)
	}

	// Country change clears the whole tail.
	if err := s.SetCountry("US"); err != nil {
		t.Fatalf("SetCountry: %v", err)
	}
	sel := s.Selection()
	if sel.State != "" || sel.City != "" {
		t.Fatalf("country change did not cascade: %+v", sel)
	}
}

func TestLocationSelectorStateChangeClearsCity(t *testing.T) {
	s := NewLocationSelector(testProvider{})
	if err := s.SetCountry("IN"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState("MH"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCity("Mumbai"); err != nil {
		t.Fatal(err)
	}

	// Re-selecting the same state still clears the city.
	if err := s.SetState("MH"); err != nil {
		t.Fatal(err)
	}
	if s.Selection().City != "" {
		t.Fatalf("same-state reselect kept city: %+v", s.Selection())
	}
}

func TestLocationSelectorRejectsUnknownValues(t *testing.T) {
	s := NewLocationSelector(testProvider{})

	if err := s.SetCountry("XX"); !errors.Is(err, ErrLocationInvalid) {
		t.Fatalf("expected ErrLocationInvalid, got %v", err)
	}
	if err := s.SetState("MH"); !errors.Is(err, ErrLocationInvalid) {
		t.Fatalf("state without country: expected ErrLocationInvalid, got %v", err)
	}

	if err := s.SetCountry("IN"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState("CA"); !errors.Is(err, ErrLocationInvalid) {
		t.Fatalf("state of wrong country: expected ErrLocationInvalid, got %v", err)
	}
	if err := s.SetState("MH"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCity("Bengaluru"); !errors.Is(err, ErrLocationInvalid) {
		t.Fatalf("city of wrong state: expected ErrLocationInvalid, got %v", err)
	}

	// Rejected mutations leave the selection untouched.
	sel := s.Selection()
	if sel.Country != "IN" || sel.State != "MH" || sel.City != "" {
		t.Fatalf("rejected mutation leaked into selection: %+v", sel)
	}
}

func TestLocationSelectorComposedLocation(t *testing.T) {
	s := NewLocationSelector(testProvider{})

	if _, err := s.ComposedLocation(); !errors.Is(err, ErrLocationIncomplete) {
		t.Fatalf("expected ErrLocationIncomplete, got %v", err)
	}

	if err := s.SetCountry("IN"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState("MH"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ComposedLocation(); !errors.Is(err, ErrLocationIncomplete) {
		t.Fatalf("partial selection: expected ErrLocationIncomplete, got %v", err)
	}

	if err := s.SetCity("Mumbai"); err != nil {
		t.Fatal(err)
	}
	got, err := s.ComposedLocation()
	if err != nil {
		t.Fatalf("ComposedLocation: %v", err)
	}
	if got != "Mumbai, MH, IN" {
		t.Fatalf("expected %q, got %q", "Mumbai, MH, IN", got)
	}
}

func TestLocationSelectorOptionListsFollowSelection(t *testing.T) {
	s := NewLocationSelector(testProvider{})

	if s.States() != nil {
		t.Fatal("expected no states before a country is selected")
	}
	if s.Cities() != nil {
		t.Fatal("expected no cities before a state is selected")
	}

	if err := s.SetCountry("IN"); err != nil {
		t.Fatal(err)
	}
	if len(s.States()) != 2 {
		t.Fatalf("expected 2 states, got %d", len(s.States()))
	}
	if err := s.SetState("MH"); err != nil {
		t.Fatal(err)
	}
	if len(s.Cities()) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(s.Cities()))
	}
}
