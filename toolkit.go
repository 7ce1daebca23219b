package bioquery

import "context"

// Toolkit is the sequence analysis collaborator the Dispatcher invokes.
// Sequences passed in are upper-case DNA (U already mapped to T) and
// parameters are validated. Coordinates are 1-based and inclusive on the
// forward strand.
type Toolkit interface {
	Name() string
	Translate(ctx context.Context, seq string, frame int) (Translation, error)
	ReverseComplement(ctx context.Context, seq string) (string, error)
	FindORFs(ctx context.Context, seq string, minLength int) ([]ORF, error)
	GCContent(ctx context.Context, seq string, window int) (GCProfile, error)
	FindPattern(ctx context.Context, seq, pattern string, mismatches int) ([]PatternMatch, error)
	SixFrame(ctx context.Context, seq string) ([]FrameTranslation, error)
	RestrictionSites(ctx context.Context, seq string, enzymes []Enzyme) ([]RestrictionSite, error)
	Stats(ctx context.Context, seq string) (SequenceStats, error)
}

// Translation is a single-frame protein translation. Stops are '*' and
// ambiguous codons 'X'.
type Translation struct {
	Frame   int    `json:"frame"`
	Protein string `json:"protein"`
}

// ReverseComplementResult is the reverse-complement payload.
type ReverseComplementResult struct {
	Sequence string `json:"sequence"`
}

// ORF is an open reading frame from a start codon through its stop codon.
type ORF struct {
	Frame   int    `json:"frame"`  // +1..+3 forward, -1..-3 reverse
	Start   int    `json:"start"`  // 1-based forward coordinate
	End     int    `json:"end"`    // 1-based forward coordinate, inclusive
	Length  int    `json:"length"` // nucleotides including the stop codon
	Protein string `json:"protein"`
}

// ORFResult is the find-orfs payload.
type ORFResult struct {
	MinLength int   `json:"min_length"`
	ORFs      []ORF `json:"orfs"`
}

// GCProfile holds the overall GC percentage and the sliding-window series.
// Windows has len(seq)-Window+1 entries.
type GCProfile struct {
	GCPercent float64   `json:"gc_percent"`
	Window    int       `json:"window_size"`
	Windows   []float64 `json:"windows"`
}

// PatternMatch is one hit of a pattern search.
type PatternMatch struct {
	Strand     string `json:"strand"` // "+" or "-"
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Mismatches int    `json:"mismatches"`
	Matched    string `json:"matched"` // matched bases read along the hit strand
}

// PatternResult is the pattern-search payload.
type PatternResult struct {
	Pattern       string         `json:"pattern"`
	MaxMismatches int            `json:"mismatch_count"`
	Matches       []PatternMatch `json:"matches"`
}

// FrameTranslation is one of the six frame translations.
// Toolkits may label frames in their own scheme; the Dispatcher relabels.
type FrameTranslation struct {
	Label   string `json:"label"`
	Frame   int    `json:"frame"`
	Protein string `json:"protein"`
}

// SixFrameResult is the six-frame payload, always ordered +1,+2,+3,-1,-2,-3.
type SixFrameResult struct {
	Frames []FrameTranslation `json:"frames"`
}

// RestrictionSite is one recognition-site hit on the forward strand.
type RestrictionSite struct {
	Enzyme   string `json:"enzyme"`
	Site     string `json:"site"`
	Position int    `json:"position"` // 1-based start of the recognition site
	Cut      int    `json:"cut"`      // top strand is cut after this 1-based base
	Overhang int    `json:"overhang"`
	Ends     string `json:"ends"`
}

// RestrictionResult is the restriction-sites payload.
type RestrictionResult struct {
	Enzymes []string          `json:"enzymes"`
	Sites   []RestrictionSite `json:"sites"`
}

// SequenceStats summarizes base composition.
type SequenceStats struct {
	Length    int            `json:"length"`
	Counts    map[string]int `json:"counts"`
	GCPercent float64        `json:"gc_percent"`
	ATPercent float64        `json:"at_percent"`
}
