package locations

import "testing"

func TestStaticCountries(t *testing.T) {
	p := New()

	countries := p.Countries()
	if len(countries) != 3 {
		t.Fatalf("expected 3 countries, got %d", len(countries))
	}
	if countries[0].Code != "IN" || countries[0].Name != "India" {
		t.Fatalf("unexpected first country: %+v", countries[0])
	}
}

func TestStaticStatesOf(t *testing.T) {
	p := New()

	states := p.StatesOf("IN")
	if len(states) != 4 {
		t.Fatalf("expected 4 states for IN, got %d", len(states))
	}
	if states[0].Code != "MH" {
		t.Fatalf("unexpected first state: %+v", states[0])
	}

	if got := p.StatesOf("XX"); got != nil {
		t.Fatalf("unknown country must yield nil, got %v", got)
	}
}

func TestStaticCitiesOf(t *testing.T) {
	p := New()

	cities := p.CitiesOf("IN", "MH")
	if len(cities) != 3 || cities[0] != "Mumbai" {
		t.Fatalf("unexpected MH cities: %v", cities)
	}

	if got := p.CitiesOf("IN", "XX"); got != nil {
		t.Fatalf("unknown state must yield nil, got %v", got)
	}
	if got := p.CitiesOf("XX", "MH"); got != nil {
		t.Fatalf("unknown country must yield nil, got %v", got)
	}
}

func TestStaticReturnsCopies(t *testing.T) {
	p := New()

	first := p.CitiesOf("IN", "MH")
	first[0] = "mutated"

	if p.CitiesOf("IN", "MH")[0] != "Mumbai" {
		t.Fatal("caller mutation leaked into the dataset")
	}

	countries := p.Countries()
	countries[0].Name = "mutated"
	if p.Countries()[0].Name != "India" {
		t.Fatal("caller mutation leaked into the dataset")
	}
}
