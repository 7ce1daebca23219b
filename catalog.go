package bioquery

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrReferenceNotFound is returned by a Resolver that does not know a name.
var ErrReferenceNotFound = errors.New("reference sequence not found")

// Resolver looks up a named reference sequence (a gene or example name).
type Resolver interface {
	Resolve(ctx context.Context, name string) (ExtractedSequence, error)
}

// Reference is a built-in example sequence.
type Reference struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases"`
	Residues string   `json:"residues"`
}

var references = []Reference{
	{
		Name:     "test_dna",
		Aliases:  []string{"test dna", "test sequence", "pae1265"},
		Residues: "ATGGCGAATTACGTAGCTAGCTAGCGCGCTATAGCGCGCTAA",
	},
	{
		Name:     "brca1_fragment",
		Aliases:  []string{"brca1 fragment", "brca1"},
		Residues: "ATGGATTTATCTGCTCTTCGCGTTGAAGAAGTACAAAATGTCA",
	},
	{
		Name:     "p53_fragment",
		Aliases:  []string{"p53 fragment", "tp53", "p53"},
		Residues: "ATGGAGGAGCCGCAGTCAGATCCTAGCGTCGAGCCCCCTCTGA",
	},
}

// referencePatterns match any name or alias as a whole word.
var referencePatterns = func() []struct {
	name string
	re   *regexp.Regexp
} {
	var out []struct {
		name string
		re   *regexp.Regexp
	}
	for _, ref := range references {
		names := append([]string{ref.Name}, ref.Aliases...)
		for _, n := range names {
			expr := strings.ReplaceAll(regexp.QuoteMeta(n), "_", `[_\s-]`)
			expr = strings.ReplaceAll(expr, " ", `[_\s-]+`)
			out = append(out, struct {
				name string
				re   *regexp.Regexp
			}{ref.Name, regexp.MustCompile(`(?i)\b` + expr + `\b`)})
		}
	}
	return out
}()

// References returns the built-in example sequences.
func References() []Reference {
	out := make([]Reference, len(references))
	copy(out, references)
	return out
}

// MatchReference returns the canonical name of the first built-in reference
// mentioned in text.
func MatchReference(text string) (string, bool) {
	for _, p := range referencePatterns {
		if p.re.MatchString(text) {
			return p.name, true
		}
	}
	return "", false
}

// Catalog resolves names against the built-in references.
type Catalog struct{}

// Resolve implements Resolver.
func (Catalog) Resolve(_ context.Context, name string) (ExtractedSequence, error) {
	canonical, ok := MatchReference(name)
	if !ok {
		return ExtractedSequence{}, fmt.Errorf("%w: %q", ErrReferenceNotFound, name)
	}
	for _, ref := range references {
		if ref.Name == canonical {
			return ExtractedSequence{
				ID:       ref.Name,
				Residues: ref.Residues,
				Kind:     KindFASTA,
				Alphabet: Nucleotide,
				Span:     Span{Start: -1, End: -1},
			}, nil
		}
	}
	return ExtractedSequence{}, fmt.Errorf("%w: %q", ErrReferenceNotFound, name)
}
