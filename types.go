package bioquery

// Span is a half-open byte range [Start, End) within the raw query.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// SequenceKind records how a sequence was found in the query.
type SequenceKind string

// Sequence kinds.
const (
	KindFASTA SequenceKind = "fasta"
	KindBare  SequenceKind = "bare"
)

// Alphabet is the residue alphabet a sequence was recognized with.
type Alphabet string

// Alphabets.
const (
	Nucleotide Alphabet = "nucleotide"
	Protein    Alphabet = "protein"
)

// ExtractedSequence is one biological sequence recovered from a query.
type ExtractedSequence struct {
	ID          string       `json:"id,omitempty"`          // FASTA identifier, empty for bare runs
	Description string       `json:"description,omitempty"` // Remainder of the FASTA header line
	Residues    string       `json:"residues"`              // Case preserved, whitespace stripped
	Span        Span         `json:"span"`
	Kind        SequenceKind `json:"kind"`
	Alphabet    Alphabet     `json:"alphabet"`
}

// Len returns the number of residues.
func (s ExtractedSequence) Len() int {
	return len(s.Residues)
}

// Label returns the identifier, or a positional name for bare runs.
func (s ExtractedSequence) Label() string {
	if s.ID != "" {
		return s.ID
	}
	return "query"
}

// Source identifies which parser produced an intent.
type Source string

// Intent sources.
const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// CanonicalIntent is the normalized output of either parser.
// Operation is always a known tag or OpUnknown, and Parameters only hold
// schema-valid values for that operation with defaults applied.
type CanonicalIntent struct {
	Operation  Operation  `json:"operation"`
	Parameters Parameters `json:"parameters"`
	Source     Source     `json:"source"`
	Reference  string     `json:"reference,omitempty"` // Named reference sequence, if one was mentioned
}

// Status is the outcome of a dispatched operation.
type Status string

// Result statuses.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// OperationResult is the single value produced for every query.
type OperationResult struct {
	Operation  Operation  `json:"operation"`
	Status     Status     `json:"status"`
	Operand    string     `json:"operand,omitempty"` // Label of the sequence operated on
	Parameters Parameters `json:"parameters,omitempty"`
	Payload    any        `json:"payload,omitempty"`
	Message    string     `json:"message,omitempty"`
	Kind       ErrorKind  `json:"error_kind,omitempty"`
}

// OK reports whether the operation succeeded.
func (r OperationResult) OK() bool {
	return r.Status == StatusSuccess
}

func failed(op Operation, kind ErrorKind, message string) OperationResult {
	return OperationResult{Operation: op, Status: StatusError, Kind: kind, Message: message}
}
