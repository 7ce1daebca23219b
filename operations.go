package bioquery

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operation is one of the fixed operation tags.
type Operation string

// Operation tags.
const (
	OpTranslate         Operation = "translate"
	OpReverseComplement Operation = "reverse-complement"
	OpFindORFs          Operation = "find-orfs"
	OpGCContent         Operation = "gc-content"
	OpPatternSearch     Operation = "pattern-search"
	OpSixFrame          Operation = "six-frame"
	OpRestrictionSites  Operation = "restriction-sites"
	OpSequenceStats     Operation = "sequence-stats"
	OpUnknown           Operation = "unknown"
)

// Parameter names.
const (
	ParamFrame        = "frame"
	ParamMinORFLength = "min_orf_length"
	ParamWindowSize   = "window_size"
	ParamPattern      = "pattern"
	ParamMismatches   = "mismatch_count"
	ParamEnzymes      = "enzymes"
)

// Documented defaults.
const (
	DefaultFrame        = 1
	DefaultMinORFLength = 75
	DefaultWindowSize   = 10
	DefaultMismatches   = 0
)

// ParamKind is the semantic type of a parameter value.
type ParamKind string

// Parameter kinds.
const (
	KindInteger    ParamKind = "integer"
	KindString     ParamKind = "string"
	KindStringList ParamKind = "string_list"
)

// ParamSpec describes one parameter of an operation.
type ParamSpec struct {
	Name        string
	Kind        ParamKind
	Default     any // nil when the parameter has no default
	Required    bool
	Description string
}

// OperationSpec describes an operation and its parameter schema.
type OperationSpec struct {
	Operation   Operation
	Description string
	Params      []ParamSpec
}

// operationSpecs is the read-only operation table.
var operationSpecs = []OperationSpec{
	{
		Operation:   OpTranslate,
		Description: "Translate DNA to protein using the standard genetic code",
		Params: []ParamSpec{
			{Name: ParamFrame, Kind: KindInteger, Default: DefaultFrame, Description: "reading frame: 1, 2, 3 or -1, -2, -3"},
		},
	},
	{
		Operation:   OpReverseComplement,
		Description: "Reverse complement of a DNA sequence",
	},
	{
		Operation:   OpFindORFs,
		Description: "Find open reading frames (start codon to stop codon) in all six frames",
		Params: []ParamSpec{
			{Name: ParamMinORFLength, Kind: KindInteger, Default: DefaultMinORFLength, Description: "minimum ORF length in nucleotides"},
		},
	},
	{
		Operation:   OpGCContent,
		Description: "GC percentage with a sliding-window series",
		Params: []ParamSpec{
			{Name: ParamWindowSize, Kind: KindInteger, Default: DefaultWindowSize, Description: "sliding window size in bases"},
		},
	},
	{
		Operation:   OpPatternSearch,
		Description: "Find a nucleotide pattern on both strands with mismatch tolerance",
		Params: []ParamSpec{
			{Name: ParamPattern, Kind: KindString, Required: true, Description: "pattern to search for (IUPAC codes allowed)"},
			{Name: ParamMismatches, Kind: KindInteger, Default: DefaultMismatches, Description: "maximum mismatches per hit"},
		},
	},
	{
		Operation:   OpSixFrame,
		Description: "Translate in all six reading frames",
	},
	{
		Operation:   OpRestrictionSites,
		Description: "Find restriction enzyme sites from the built-in enzyme table",
		Params: []ParamSpec{
			{Name: ParamEnzymes, Kind: KindStringList, Description: "optional subset of enzyme names to scan"},
		},
	},
	{
		Operation:   OpSequenceStats,
		Description: "Sequence length, base counts and GC/AT content",
	},
}

// operationAliases maps alternative tags and tool names to canonical tags.
var operationAliases = map[string]Operation{
	"translate":          OpTranslate,
	"translation":        OpTranslate,
	"transeq":            OpTranslate,
	"reverse":            OpReverseComplement,
	"reverse_complement": OpReverseComplement,
	"reversecomplement":  OpReverseComplement,
	"revcomp":            OpReverseComplement,
	"revseq":             OpReverseComplement,
	"orf":                OpFindORFs,
	"orfs":               OpFindORFs,
	"find_orfs":          OpFindORFs,
	"getorf":             OpFindORFs,
	"gc":                 OpGCContent,
	"gc_content":         OpGCContent,
	"pattern":            OpPatternSearch,
	"pattern_search":     OpPatternSearch,
	"fuzznuc":            OpPatternSearch,
	"motif":              OpPatternSearch,
	"sixframe":           OpSixFrame,
	"six_frame":          OpSixFrame,
	"sixpack":            OpSixFrame,
	"restriction":        OpRestrictionSites,
	"restriction_sites":  OpRestrictionSites,
	"restrict":           OpRestrictionSites,
	"stats":              OpSequenceStats,
	"sequence_stats":     OpSequenceStats,
	"infoseq":            OpSequenceStats,
	"none":               OpUnknown,
	"unknown":            OpUnknown,
}

// paramAliases maps alternative parameter names to schema names.
var paramAliases = map[string]string{
	"mismatch":       ParamMismatches,
	"mismatches":     ParamMismatches,
	"max_mismatches": ParamMismatches,
	"pmismatch":      ParamMismatches,
	"minsize":        ParamMinORFLength,
	"min_size":       ParamMinORFLength,
	"min_length":     ParamMinORFLength,
	"min_orf_size":   ParamMinORFLength,
	"window":         ParamWindowSize,
	"window_length":  ParamWindowSize,
	"motif":          ParamPattern,
	"enzyme":         ParamEnzymes,
	"reading_frame":  ParamFrame,
}

// Operations returns the supported operations in table order.
func Operations() []OperationSpec {
	out := make([]OperationSpec, len(operationSpecs))
	copy(out, operationSpecs)
	return out
}

// Spec returns the schema for o.
func (o Operation) Spec() (OperationSpec, bool) {
	for _, spec := range operationSpecs {
		if spec.Operation == o {
			return spec, true
		}
	}
	return OperationSpec{}, false
}

// Known reports whether o is a supported operation (not OpUnknown).
func (o Operation) Known() bool {
	_, ok := o.Spec()
	return ok
}

// LookupOperation resolves a tag or alias to a canonical operation.
// The second result is false when tag names nothing this package knows,
// which is different from an explicit "unknown".
func LookupOperation(tag string) (Operation, bool) {
	key := normalizeKey(tag)
	if key == "" {
		return "", false
	}
	for _, spec := range operationSpecs {
		if normalizeKey(string(spec.Operation)) == key {
			return spec.Operation, true
		}
	}
	op, ok := operationAliases[key]
	return op, ok
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Parameters maps parameter names to typed values (int, string or []string).
type Parameters map[string]any

// Int returns an integer parameter.
func (p Parameters) Int(name string) (int, bool) {
	v, ok := p[name].(int)
	return v, ok
}

// String returns a string parameter.
func (p Parameters) String(name string) (string, bool) {
	v, ok := p[name].(string)
	return v, ok
}

// Strings returns a string-list parameter.
func (p Parameters) Strings(name string) ([]string, bool) {
	v, ok := p[name].([]string)
	return v, ok
}

// Clone returns a deep copy.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// NormalizeParameters coerces raw values to the schema of op, drops unknown
// names and applies documented defaults. A value that cannot be coerced to its
// declared kind is an error.
func NormalizeParameters(op Operation, raw map[string]any) (Parameters, error) {
	out := Parameters{}
	spec, ok := op.Spec()
	if !ok {
		return out, nil
	}

	byName := make(map[string]ParamSpec, len(spec.Params))
	for _, ps := range spec.Params {
		byName[ps.Name] = ps
	}

	for key, value := range raw {
		name := normalizeKey(key)
		if alias, ok := paramAliases[name]; ok {
			name = alias
		}
		ps, ok := byName[name]
		if !ok || value == nil {
			continue
		}
		coerced, present, err := coerce(ps.Kind, value)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", ps.Name, err)
		}
		if present {
			out[ps.Name] = coerced
		}
	}

	for _, ps := range spec.Params {
		if _, ok := out[ps.Name]; !ok && ps.Default != nil {
			out[ps.Name] = ps.Default
		}
	}
	return out, nil
}

// coerce converts v to kind. present is false for empty values that should be
// treated as absent.
func coerce(kind ParamKind, v any) (value any, present bool, err error) {
	switch kind {
	case KindInteger:
		n, err := coerceInt(v)
		return n, err == nil, err
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, false, fmt.Errorf("expected string, got %T", v)
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	case KindStringList:
		list, err := coerceList(v)
		return list, err == nil && len(list) > 0, err
	default:
		return nil, false, fmt.Errorf("unsupported parameter kind %q", kind)
	}
}

func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n.String())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func coerceList(v any) ([]string, error) {
	var out []string
	add := func(s string) {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
			out = append(out, part)
		}
	}
	switch list := v.(type) {
	case string:
		add(list)
	case []string:
		for _, s := range list {
			add(s)
		}
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, got element %T", item)
			}
			add(s)
		}
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
	return out, nil
}
