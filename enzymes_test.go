package bioquery

import (
	"errors"
	"strings"
	"testing"
)

func TestEnzyme_Ends(t *testing.T) {
	cases := []struct {
		name     string
		overhang int
		ends     string
	}{
		{"EcoRI", 4, "5' overhang"},
		{"NotI", 4, "5' overhang"},
		{"PstI", -4, "3' overhang"},
		{"KpnI", -4, "3' overhang"},
		{"SmaI", 0, "blunt"},
		{"EcoRV", 0, "blunt"},
		{"NdeI", 2, "5' overhang"},
	}
	for _, tc := range cases {
		e, ok := LookupEnzyme(tc.name)
		if !ok {
			t.Fatalf("expected %s in table", tc.name)
		}
		if e.Overhang() != tc.overhang {
			t.Errorf("%s: expected overhang %d, got %d", tc.name, tc.overhang, e.Overhang())
		}
		if e.Ends() != tc.ends {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.ends, e.Ends())
		}
	}
}

func TestEnzymeTable(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Enzymes() {
		if seen[strings.ToLower(e.Name)] {
			t.Errorf("duplicate enzyme %s", e.Name)
		}
		seen[strings.ToLower(e.Name)] = true
		if !IsNucleotideString(e.Site) {
			t.Errorf("%s: site %s is not IUPAC", e.Name, e.Site)
		}
		if e.Cut < 0 || e.Cut > len(e.Site) {
			t.Errorf("%s: cut %d outside site", e.Name, e.Cut)
		}
	}

	list := Enzymes()
	list[0].Name = "mutated"
	if Enzymes()[0].Name != "EcoRI" {
		t.Error("Enzymes should return a copy")
	}
}

func TestLookupEnzyme(t *testing.T) {
	for _, name := range []string{"EcoRI", "ecori", " ECORI "} {
		if e, ok := LookupEnzyme(name); !ok || e.Name != "EcoRI" {
			t.Errorf("expected EcoRI for %q, got %v %v", name, e, ok)
		}
	}
	if _, ok := LookupEnzyme("FooI"); ok {
		t.Error("expected FooI to be missing")
	}
}

func TestSelectEnzymes(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		got, err := SelectEnzymes(nil)
		if err != nil || len(got) != len(enzymeTable) {
			t.Errorf("expected whole table, got %d (%v)", len(got), err)
		}
	})

	t.Run("subset_deduplicated", func(t *testing.T) {
		got, err := SelectEnzymes([]string{"bamhi", "EcoRI", "BamHI"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0].Name != "BamHI" || got[1].Name != "EcoRI" {
			t.Errorf("expected [BamHI EcoRI], got %v", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := SelectEnzymes([]string{"ZzzI", "EcoRI", "AaaI"})
		if !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("expected ErrInvalidParameter, got %v", err)
		}
		if !strings.Contains(err.Error(), "AaaI, ZzzI") {
			t.Errorf("expected sorted missing names, got %v", err)
		}
	})

	t.Run("shortest_site", func(t *testing.T) {
		notI, _ := LookupEnzyme("NotI")
		ecoRI, _ := LookupEnzyme("EcoRI")
		if got := shortestSite([]Enzyme{notI, ecoRI}); got != 6 {
			t.Errorf("expected 6, got %d", got)
		}
		if got := shortestSite([]Enzyme{notI}); got != 8 {
			t.Errorf("expected 8, got %d", got)
		}
	})
}
