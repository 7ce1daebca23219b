package bioquery

import (
	"fmt"
	"sort"
	"strings"
)

// Enzyme is a restriction enzyme with its recognition site and top-strand cut offset.
// Cut is the number of site bases before the cut on the top strand, so EcoRI
// (G^AATTC) has Cut 1.
type Enzyme struct {
	Name string `json:"name"`
	Site string `json:"site"`
	Cut  int    `json:"cut"`
}

// Overhang returns the single-strand overhang length produced by the enzyme.
// Positive values are 5' overhangs, negative 3' overhangs and zero is blunt.
// Sites in the table are palindromic, so the bottom-strand cut mirrors Cut.
func (e Enzyme) Overhang() int {
	return len(e.Site) - 2*e.Cut
}

// Ends describes the cut as "5' overhang", "3' overhang" or "blunt".
func (e Enzyme) Ends() string {
	switch o := e.Overhang(); {
	case o > 0:
		return "5' overhang"
	case o < 0:
		return "3' overhang"
	default:
		return "blunt"
	}
}

// enzymeTable is the fixed, read-only enzyme catalog.
var enzymeTable = []Enzyme{
	{Name: "EcoRI", Site: "GAATTC", Cut: 1},
	{Name: "BamHI", Site: "GGATCC", Cut: 1},
	{Name: "HindIII", Site: "AAGCTT", Cut: 1},
	{Name: "NotI", Site: "GCGGCCGC", Cut: 2},
	{Name: "XbaI", Site: "TCTAGA", Cut: 1},
	{Name: "PstI", Site: "CTGCAG", Cut: 5},
	{Name: "SmaI", Site: "CCCGGG", Cut: 3},
	{Name: "KpnI", Site: "GGTACC", Cut: 5},
	{Name: "SacI", Site: "GAGCTC", Cut: 5},
	{Name: "SalI", Site: "GTCGAC", Cut: 1},
	{Name: "XhoI", Site: "CTCGAG", Cut: 1},
	{Name: "NcoI", Site: "CCATGG", Cut: 1},
	{Name: "NdeI", Site: "CATATG", Cut: 2},
	{Name: "SpeI", Site: "ACTAGT", Cut: 1},
	{Name: "EcoRV", Site: "GATATC", Cut: 3},
	{Name: "HincII", Site: "GTYRAC", Cut: 3},
	{Name: "AvaI", Site: "CYCGRG", Cut: 1},
}

// Enzymes returns a copy of the built-in enzyme table.
func Enzymes() []Enzyme {
	out := make([]Enzyme, len(enzymeTable))
	copy(out, enzymeTable)
	return out
}

// LookupEnzyme finds an enzyme by name, ignoring case.
func LookupEnzyme(name string) (Enzyme, bool) {
	for _, e := range enzymeTable {
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			return e, true
		}
	}
	return Enzyme{}, false
}

// SelectEnzymes resolves names against the table. An empty list selects the
// whole table.
func SelectEnzymes(names []string) ([]Enzyme, error) {
	if len(names) == 0 {
		return Enzymes(), nil
	}
	seen := make(map[string]bool, len(names))
	var out []Enzyme
	var missing []string
	for _, name := range names {
		e, ok := LookupEnzyme(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		if !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, e)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: enzyme %s not in the built-in table", ErrInvalidParameter, strings.Join(missing, ", "))
	}
	return out, nil
}

// shortestSite returns the shortest recognition site length among enzymes.
func shortestSite(enzymes []Enzyme) int {
	shortest := 0
	for _, e := range enzymes {
		if shortest == 0 || len(e.Site) < shortest {
			shortest = len(e.Site)
		}
	}
	return shortest
}
