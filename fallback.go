package bioquery

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// rule maps a vocabulary predicate to an operation and its parameter extractor.
type rule struct {
	op     Operation
	match  *regexp.Regexp
	params func(text string) map[string]any
}

func enzymeAlternation() string {
	names := make([]string, len(enzymeTable))
	for i, e := range enzymeTable {
		names[i] = regexp.QuoteMeta(e.Name)
	}
	return strings.Join(names, "|")
}

var (
	enzymeNames = regexp.MustCompile(`(?i)\b(` + enzymeAlternation() + `)\b`)

	mismatchAfter  = regexp.MustCompile(`(?i)\bmismatch(?:es)?(?:\s+count)?\s*(?:of|=|:|is|up\s+to)?\s*(\d+|zero|none|no|one|two|three|four|five)\b`)
	mismatchBefore = regexp.MustCompile(`(?i)\b(\d+|zero|no|one|a\s+single|single|two|three|four|five)\s+(?:base\s+)?mismatch(?:es)?\b`)

	minLengthAfter  = regexp.MustCompile(`(?i)\b(?:min(?:imum)?|length|size|longer\s+than|at\s+least|over)\s*(?:orf\s*)?(?:length|size)?\s*(?:of|=|:|is)?\s*(\d+)`)
	minLengthBefore = regexp.MustCompile(`(?i)\b(\d+)\s*(?:bp|nt|nts|nucleotides?|bases?)\b`)

	windowAfter  = regexp.MustCompile(`(?i)\bwindow(?:\s+(?:size|length))?\s*(?:of|=|:|is)?\s*(\d+)`)
	windowBefore = regexp.MustCompile(`(?i)\b(\d+)(?:[\s-]*(?:bp|nt|base|bases))?[\s-]*window`)

	frameAfter  = regexp.MustCompile(`(?i)\bframe\s*(?:of|=|:|is)?\s*([+-]?\d)\b`)
	frameBefore = regexp.MustCompile(`(?i)([+-]?\d)(?:st|nd|rd|th)?\s+(?:reading\s+)?frame\b`)

	patternLiteral = regexp.MustCompile(`(?i)\b(?:pattern|motif|find|search(?:\s+for)?|locate|look\s+for)\s+(?:(?:the|pattern|motif|sequence|site)\s+)*["']?(\[seq\d+\]|[ACGTURYSWKMBDHVN]+)["']?(?:\s+(?:with|allowing|mismatch\w*|in|within|on|at)\b|\s*[,.;:]|\s*$)`)
)

var numberWords = map[string]int{
	"zero":     0,
	"none":     0,
	"no":       0,
	"one":      1,
	"single":   1,
	"a single": 1,
	"two":      2,
	"three":    3,
	"four":     4,
	"five":     5,
}

// patternStopwords are English words made only of IUPAC letters.
var patternStopwords = map[string]bool{"a": true, "an": true, "and": true, "any": true, "at": true}

// fallbackRules is evaluated in order; the first match wins.
var fallbackRules = []rule{
	{
		op:    OpSixFrame,
		match: regexp.MustCompile(`(?i)\b(?:six|6)[\s-]*frames?\b|\bsixpack\b|\ball\s+(?:six\s+)?(?:reading\s+)?frames\b`),
	},
	{
		op:     OpFindORFs,
		match:  regexp.MustCompile(`(?i)\borfs?\b|\bopen\s+reading\s+frames?\b|\bgetorf\b`),
		params: orfParams,
	},
	{
		op:     OpRestrictionSites,
		match:  regexp.MustCompile(`(?i)\brestriction\b|\benzymes?\b|\bcut\s+sites?\b|\bdigest\w*\b|\b(?:` + enzymeAlternation() + `)\b`),
		params: restrictionParams,
	},
	{
		op:     OpPatternSearch,
		match:  regexp.MustCompile(`(?i)\bpattern\b|\bmotifs?\b|\bfuzznuc\b|\bmismatch(?:es)?\b|\boccurrences?\s+of\b|\b(?:find|search\s+for|locate|look\s+for)\s+(?:the\s+)?(?:sequence\s+|site\s+)?["']?(?:\[seq\d+\]|[ACGTURYSWKMBDHVN]{3,})["']?\s+(?:in|within|on)\b`),
		params: patternParams,
	},
	{
		// Translating the reverse complement is translation on the minus strand.
		op:     OpTranslate,
		match:  regexp.MustCompile(`(?is)\btranslat\w*\b.*\b(?:reverse[\s-]*complement|rev[\s-]?comp|minus\s+strand)|\b(?:reverse[\s-]*complement\w*|rev[\s-]?comp)\b.*\btranslat\w*\b`),
		params: reverseTranslateParams,
	},
	{
		op:    OpReverseComplement,
		match: regexp.MustCompile(`(?i)\breverse[\s-]*complement\w*|\brev[\s-]?comp\b|\brevseq\b|\bcomplement\b`),
	},
	{
		op:     OpGCContent,
		match:  regexp.MustCompile(`(?i)\bgc\b|\bg\s*\+\s*c\b|\bgc[\s-]*(?:content|percent\w*|ratio|%)|\bguanine\b`),
		params: gcParams,
	},
	{
		op:     OpTranslate,
		match:  regexp.MustCompile(`(?i)\btranslat\w*\b|\bprotein\b|\bamino\s+acids?\b|\btranseq\b|\bcodons?\b`),
		params: translateParams,
	},
	{
		op:    OpSequenceStats,
		match: regexp.MustCompile(`(?i)\b(?:stats|statistics|composition|length|base\s+counts?|analy[sz]e|infoseq|summary|summari[sz]e)\b`),
	},
}

// FallbackParser recognizes intent with keyword rules. It has no external
// dependency and never fails.
type FallbackParser struct{}

// NewFallbackParser creates a FallbackParser.
func NewFallbackParser() *FallbackParser {
	return &FallbackParser{}
}

// Name implements Parser.
func (*FallbackParser) Name() string {
	return "fallback"
}

// Parse implements Parser. The error is always nil.
func (f *FallbackParser) Parse(_ context.Context, text string, _ []ExtractedSequence) (CanonicalIntent, error) {
	return f.Intent(text), nil
}

// Intent returns the intent for text.
func (*FallbackParser) Intent(text string) CanonicalIntent {
	intent := CanonicalIntent{
		Operation:  OpUnknown,
		Parameters: Parameters{},
		Source:     SourceFallback,
	}
	if ref, ok := MatchReference(text); ok {
		intent.Reference = ref
	}

	for _, r := range fallbackRules {
		if !r.match.MatchString(text) {
			continue
		}
		var raw map[string]any
		if r.params != nil {
			raw = r.params(text)
		}
		params, err := NormalizeParameters(r.op, raw)
		if err != nil {
			params, _ = NormalizeParameters(r.op, nil)
		}
		intent.Operation = r.op
		intent.Parameters = params
		return intent
	}
	return intent
}

// firstNumber returns the first capture of the first matching expression.
func firstNumber(text string, exprs ...*regexp.Regexp) (int, bool) {
	for _, re := range exprs {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		word := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
		if n, ok := numberWords[word]; ok {
			return n, true
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(word, "+")); err == nil {
			return n, true
		}
	}
	return 0, false
}

func orfParams(text string) map[string]any {
	out := map[string]any{}
	if n, ok := firstNumber(text, minLengthAfter, minLengthBefore); ok {
		out[ParamMinORFLength] = n
	}
	return out
}

func gcParams(text string) map[string]any {
	out := map[string]any{}
	if n, ok := firstNumber(text, windowAfter, windowBefore); ok {
		out[ParamWindowSize] = n
	}
	return out
}

func translateParams(text string) map[string]any {
	out := map[string]any{}
	if n, ok := firstNumber(text, frameAfter, frameBefore); ok {
		out[ParamFrame] = n
	}
	return out
}

func reverseTranslateParams(text string) map[string]any {
	frame := DefaultFrame
	if n, ok := firstNumber(text, frameAfter, frameBefore); ok {
		frame = n
	}
	if frame > 0 {
		frame = -frame
	}
	return map[string]any{ParamFrame: frame}
}

func patternParams(text string) map[string]any {
	out := map[string]any{}
	if n, ok := firstNumber(text, mismatchAfter, mismatchBefore); ok {
		out[ParamMismatches] = n
	}
	for _, m := range patternLiteral.FindAllStringSubmatch(text, -1) {
		literal := m[1]
		if patternStopwords[strings.ToLower(literal)] {
			continue
		}
		if _, ok := PlaceholderIndex(literal); ok {
			literal = strings.ToLower(literal)
		}
		out[ParamPattern] = literal
		break
	}
	return out
}

func restrictionParams(text string) map[string]any {
	out := map[string]any{}
	var names []string
	for _, m := range enzymeNames.FindAllStringSubmatch(text, -1) {
		if e, ok := LookupEnzyme(m[1]); ok {
			names = append(names, e.Name)
		}
	}
	if len(names) > 0 {
		out[ParamEnzymes] = names
	}
	return out
}
