// Package native implements the bioquery Toolkit in pure Go.
package native

import (
	"context"
	"sort"
	"strings"

	"github.com/zoobzio/bioquery"
)

// Toolkit runs every capability in-process. It is stateless and safe for
// concurrent use.
type Toolkit struct{}

// New creates a native Toolkit.
func New() *Toolkit {
	return &Toolkit{}
}

// Name implements bioquery.Toolkit.
func (*Toolkit) Name() string {
	return "native"
}

// Translate implements bioquery.Toolkit.
func (*Toolkit) Translate(ctx context.Context, seq string, frame int) (bioquery.Translation, error) {
	if err := ctx.Err(); err != nil {
		return bioquery.Translation{}, err
	}
	return bioquery.Translation{Frame: frame, Protein: TranslateFrame(seq, frame)}, nil
}

// ReverseComplement implements bioquery.Toolkit.
func (*Toolkit) ReverseComplement(ctx context.Context, seq string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return bioquery.ReverseComplement(seq), nil
}

// FindORFs implements bioquery.Toolkit. ORFs run from ATG to the first
// in-frame stop and are reported once per start region, longest first
// within a frame, in the order +1,+2,+3,-1,-2,-3.
func (*Toolkit) FindORFs(ctx context.Context, seq string, minLength int) ([]bioquery.ORF, error) {
	var out []bioquery.ORF
	n := len(seq)
	rc := bioquery.ReverseComplement(seq)
	for _, frame := range []int{1, 2, 3, -1, -2, -3} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		strand := seq
		if frame < 0 {
			strand = rc
		}
		for _, hit := range scanORFs(strand, offset(frame)) {
			length := hit.end - hit.start
			if length < minLength {
				continue
			}
			orf := bioquery.ORF{
				Frame:   frame,
				Length:  length,
				Protein: translate(strand[hit.start:hit.end]),
			}
			if frame > 0 {
				orf.Start, orf.End = hit.start+1, hit.end
			} else {
				orf.Start, orf.End = n-hit.end+1, n-hit.start
			}
			out = append(out, orf)
		}
	}
	return out, nil
}

type region struct {
	start, end int // end is exclusive and includes the stop codon
}

// scanORFs walks one strand from off and returns ATG..stop regions.
// A start inside an open ORF does not open a nested one.
func scanORFs(strand string, off int) []region {
	var out []region
	open := -1
	for i := off; i+3 <= len(strand); i += 3 {
		codon := strand[i : i+3]
		switch {
		case open < 0 && codon == "ATG":
			open = i
		case open >= 0 && isStop(codon):
			out = append(out, region{start: open, end: i + 3})
			open = -1
		}
	}
	return out
}

func isStop(codon string) bool {
	return codon == "TAA" || codon == "TAG" || codon == "TGA"
}

// GCContent implements bioquery.Toolkit.
func (*Toolkit) GCContent(ctx context.Context, seq string, window int) (bioquery.GCProfile, error) {
	if err := ctx.Err(); err != nil {
		return bioquery.GCProfile{}, err
	}
	prefix := make([]int, len(seq)+1)
	for i := 0; i < len(seq); i++ {
		prefix[i+1] = prefix[i]
		if isGC(seq[i]) {
			prefix[i+1]++
		}
	}
	profile := bioquery.GCProfile{
		Window:    window,
		GCPercent: percent(prefix[len(seq)], len(seq)),
	}
	if window < 1 || window > len(seq) {
		profile.Windows = []float64{}
		return profile, nil
	}
	profile.Windows = make([]float64, 0, len(seq)-window+1)
	for i := 0; i+window <= len(seq); i++ {
		profile.Windows = append(profile.Windows, percent(prefix[i+window]-prefix[i], window))
	}
	return profile, nil
}

func isGC(c byte) bool {
	return c == 'G' || c == 'C' || c == 'S'
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

// FindPattern implements bioquery.Toolkit. The pattern is matched on the
// forward strand and, as its reverse complement, on the reverse strand.
func (*Toolkit) FindPattern(ctx context.Context, seq, pattern string, mismatches int) ([]bioquery.PatternMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []bioquery.PatternMatch
	for _, hit := range Scan(seq, pattern, mismatches) {
		out = append(out, bioquery.PatternMatch{
			Strand:     "+",
			Start:      hit.Pos + 1,
			End:        hit.Pos + len(pattern),
			Mismatches: hit.Mismatches,
			Matched:    seq[hit.Pos : hit.Pos+len(pattern)],
		})
	}
	for _, hit := range Scan(seq, bioquery.ReverseComplement(pattern), mismatches) {
		out = append(out, bioquery.PatternMatch{
			Strand:     "-",
			Start:      hit.Pos + 1,
			End:        hit.Pos + len(pattern),
			Mismatches: hit.Mismatches,
			Matched:    bioquery.ReverseComplement(seq[hit.Pos : hit.Pos+len(pattern)]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Strand < out[j].Strand
	})
	return out, nil
}

// Hit is a raw pattern hit at a 0-based offset.
type Hit struct {
	Pos        int
	Mismatches int
}

// Scan slides pattern along seq and reports every offset with at most
// maxMismatches IUPAC-aware mismatches.
func Scan(seq, pattern string, maxMismatches int) []Hit {
	pl := len(pattern)
	if pl == 0 || len(seq) < pl {
		return nil
	}
	var out []Hit
window:
	for pos := 0; pos+pl <= len(seq); pos++ {
		mm := 0
		for j := 0; j < pl; j++ {
			if !bioquery.BaseMatch(seq[pos+j], pattern[j]) {
				mm++
				if mm > maxMismatches {
					continue window
				}
			}
		}
		out = append(out, Hit{Pos: pos, Mismatches: mm})
	}
	return out
}

// SixFrame implements bioquery.Toolkit.
func (*Toolkit) SixFrame(ctx context.Context, seq string) ([]bioquery.FrameTranslation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]bioquery.FrameTranslation, 0, 6)
	for _, frame := range []int{1, 2, 3, -1, -2, -3} {
		out = append(out, bioquery.FrameTranslation{
			Label:   bioquery.FrameLabel(frame),
			Frame:   frame,
			Protein: TranslateFrame(seq, frame),
		})
	}
	return out, nil
}

// RestrictionSites implements bioquery.Toolkit. Sites in the table are
// palindromic, so a forward scan finds both strands.
func (*Toolkit) RestrictionSites(ctx context.Context, seq string, enzymes []bioquery.Enzyme) ([]bioquery.RestrictionSite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []bioquery.RestrictionSite
	for _, e := range enzymes {
		for _, hit := range Scan(seq, strings.ToUpper(e.Site), 0) {
			out = append(out, bioquery.RestrictionSite{
				Enzyme:   e.Name,
				Site:     e.Site,
				Position: hit.Pos + 1,
				Cut:      hit.Pos + e.Cut,
				Overhang: e.Overhang(),
				Ends:     e.Ends(),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// Stats implements bioquery.Toolkit.
func (*Toolkit) Stats(ctx context.Context, seq string) (bioquery.SequenceStats, error) {
	if err := ctx.Err(); err != nil {
		return bioquery.SequenceStats{}, err
	}
	counts := map[string]int{"A": 0, "C": 0, "G": 0, "T": 0}
	gc, at := 0, 0
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		switch c {
		case 'A', 'T':
			at++
			counts[string(c)]++
		case 'C', 'G':
			gc++
			counts[string(c)]++
		default:
			counts["other"]++
		}
	}
	return bioquery.SequenceStats{
		Length:    len(seq),
		Counts:    counts,
		GCPercent: percent(gc, len(seq)),
		ATPercent: percent(at, len(seq)),
	}, nil
}
