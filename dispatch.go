package bioquery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/capitan"
)

// handler validates arguments for one operation and invokes the toolkit.
type handler struct {
	validate func(seq string, p Parameters) error
	run      func(ctx context.Context, tk Toolkit, seq string, p Parameters) (any, error)
}

// handlers is the read-only dispatch table.
var handlers = map[Operation]handler{
	OpTranslate: {
		validate: func(_ string, p Parameters) error {
			frame, _ := p.Int(ParamFrame)
			return validFrame(frame)
		},
		run: func(ctx context.Context, tk Toolkit, seq string, p Parameters) (any, error) {
			frame, _ := p.Int(ParamFrame)
			return tk.Translate(ctx, seq, frame)
		},
	},
	OpReverseComplement: {
		run: func(ctx context.Context, tk Toolkit, seq string, _ Parameters) (any, error) {
			rc, err := tk.ReverseComplement(ctx, seq)
			if err != nil {
				return nil, err
			}
			return ReverseComplementResult{Sequence: rc}, nil
		},
	},
	OpFindORFs: {
		validate: func(_ string, p Parameters) error {
			if n, _ := p.Int(ParamMinORFLength); n < 3 {
				return fmt.Errorf("%w: %s must be at least 3, got %d", ErrInvalidParameter, ParamMinORFLength, n)
			}
			return nil
		},
		run: func(ctx context.Context, tk Toolkit, seq string, p Parameters) (any, error) {
			n, _ := p.Int(ParamMinORFLength)
			orfs, err := tk.FindORFs(ctx, seq, n)
			if err != nil {
				return nil, err
			}
			if orfs == nil {
				orfs = []ORF{}
			}
			return ORFResult{MinLength: n, ORFs: orfs}, nil
		},
	},
	OpGCContent: {
		validate: func(seq string, p Parameters) error {
			w, _ := p.Int(ParamWindowSize)
			if w < 1 || w > len(seq) {
				return fmt.Errorf("%w: %s must be between 1 and the sequence length %d, got %d", ErrInvalidParameter, ParamWindowSize, len(seq), w)
			}
			return nil
		},
		run: func(ctx context.Context, tk Toolkit, seq string, p Parameters) (any, error) {
			w, _ := p.Int(ParamWindowSize)
			profile, err := tk.GCContent(ctx, seq, w)
			if err != nil {
				return nil, err
			}
			if want := len(seq) - w + 1; len(profile.Windows) != want {
				return nil, fmt.Errorf("gc-content returned %d windows, expected %d", len(profile.Windows), want)
			}
			return profile, nil
		},
	},
	OpPatternSearch: {
		validate: func(_ string, p Parameters) error {
			pattern, _ := p.String(ParamPattern)
			pattern = NormalizeNucleotides(pattern)
			if pattern == "" {
				return fmt.Errorf("%w: %s is required", ErrInvalidParameter, ParamPattern)
			}
			if !IsNucleotideString(pattern) {
				return fmt.Errorf("%w: %s %q contains non-IUPAC characters", ErrInvalidParameter, ParamPattern, pattern)
			}
			mm, _ := p.Int(ParamMismatches)
			if mm < 0 {
				return fmt.Errorf("%w: %s must be non-negative, got %d", ErrInvalidParameter, ParamMismatches, mm)
			}
			if mm >= len(pattern) {
				return fmt.Errorf("%w: %s must be less than the pattern length %d, got %d", ErrInvalidParameter, ParamMismatches, len(pattern), mm)
			}
			return nil
		},
		run: func(ctx context.Context, tk Toolkit, seq string, p Parameters) (any, error) {
			pattern, _ := p.String(ParamPattern)
			pattern = NormalizeNucleotides(pattern)
			mm, _ := p.Int(ParamMismatches)
			matches, err := tk.FindPattern(ctx, seq, pattern, mm)
			if err != nil {
				return nil, err
			}
			if matches == nil {
				matches = []PatternMatch{}
			}
			return PatternResult{Pattern: pattern, MaxMismatches: mm, Matches: matches}, nil
		},
	},
	OpSixFrame: {
		run: func(ctx context.Context, tk Toolkit, seq string, _ Parameters) (any, error) {
			frames, err := tk.SixFrame(ctx, seq)
			if err != nil {
				return nil, err
			}
			ordered, err := canonicalFrames(frames)
			if err != nil {
				return nil, err
			}
			return SixFrameResult{Frames: ordered}, nil
		},
	},
	OpRestrictionSites: {
		validate: func(seq string, p Parameters) error {
			names, _ := p.Strings(ParamEnzymes)
			enzymes, err := SelectEnzymes(names)
			if err != nil {
				return err
			}
			if shortest := shortestSite(enzymes); len(seq) < shortest {
				return fmt.Errorf("%w: sequence length %d is shorter than the shortest recognition site (%d)", ErrInvalidParameter, len(seq), shortest)
			}
			return nil
		},
		run: func(ctx context.Context, tk Toolkit, seq string, p Parameters) (any, error) {
			names, _ := p.Strings(ParamEnzymes)
			enzymes, err := SelectEnzymes(names)
			if err != nil {
				return nil, err
			}
			sites, err := tk.RestrictionSites(ctx, seq, enzymes)
			if err != nil {
				return nil, err
			}
			if sites == nil {
				sites = []RestrictionSite{}
			}
			scanned := make([]string, len(enzymes))
			for i, e := range enzymes {
				scanned[i] = e.Name
			}
			return RestrictionResult{Enzymes: scanned, Sites: sites}, nil
		},
	},
	OpSequenceStats: {
		run: func(ctx context.Context, tk Toolkit, seq string, _ Parameters) (any, error) {
			return tk.Stats(ctx, seq)
		},
	},
}

func validFrame(frame int) error {
	switch frame {
	case 1, 2, 3, -1, -2, -3:
		return nil
	default:
		return fmt.Errorf("%w: %s must be one of 1, 2, 3, -1, -2, -3, got %d", ErrInvalidParameter, ParamFrame, frame)
	}
}

// frameOrder is the canonical six-frame order.
var frameOrder = []int{1, 2, 3, -1, -2, -3}

// FrameLabel renders a frame number as "+1" .. "-3".
func FrameLabel(frame int) string {
	if frame > 0 {
		return "+" + strconv.Itoa(frame)
	}
	return strconv.Itoa(frame)
}

// parseFrameLabel reads "+1", "1", "-2", "F1" or "R2" style labels.
func parseFrameLabel(label string) (int, bool) {
	label = strings.TrimSpace(strings.ToUpper(label))
	sign := 1
	switch {
	case strings.HasPrefix(label, "F"):
		label = label[1:]
	case strings.HasPrefix(label, "R"):
		label, sign = label[1:], -1
	}
	n, err := strconv.Atoi(label)
	if err != nil || n == 0 {
		return 0, false
	}
	return sign * n, validFrame(sign*n) == nil
}

// canonicalFrames reconciles toolkit output to exactly six frames in the
// order +1,+2,+3,-1,-2,-3 with canonical labels.
func canonicalFrames(frames []FrameTranslation) ([]FrameTranslation, error) {
	if len(frames) != len(frameOrder) {
		return nil, fmt.Errorf("six-frame translation returned %d frames", len(frames))
	}
	byFrame := make(map[int]FrameTranslation, len(frames))
	for _, f := range frames {
		frame := f.Frame
		if frame == 0 {
			n, ok := parseFrameLabel(f.Label)
			if !ok {
				return nil, fmt.Errorf("six-frame translation returned unrecognized frame label %q", f.Label)
			}
			frame = n
		}
		if validFrame(frame) != nil {
			return nil, fmt.Errorf("six-frame translation returned invalid frame %d", frame)
		}
		if _, dup := byFrame[frame]; dup {
			return nil, fmt.Errorf("six-frame translation returned frame %s twice", FrameLabel(frame))
		}
		byFrame[frame] = f
	}
	out := make([]FrameTranslation, len(frameOrder))
	for i, frame := range frameOrder {
		out[i] = FrameTranslation{
			Label:   FrameLabel(frame),
			Frame:   frame,
			Protein: byFrame[frame].Protein,
		}
	}
	return out, nil
}

// Dispatcher validates a CanonicalIntent and invokes the matching toolkit
// capability. It holds no per-request state.
type Dispatcher struct {
	toolkit Toolkit
}

// NewDispatcher creates a Dispatcher over toolkit.
func NewDispatcher(toolkit Toolkit) *Dispatcher {
	return &Dispatcher{toolkit: toolkit}
}

// Dispatch runs the intent against the first sequence. Every failure is
// reported in the returned result; Dispatch never panics or returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, intent CanonicalIntent, seqs []ExtractedSequence) OperationResult {
	result := d.dispatch(ctx, intent, seqs)
	if result.OK() {
		capitan.Info(ctx, DispatchComplete,
			OperationKey.Field(string(result.Operation)),
			StatusKey.Field(string(result.Status)),
			ToolkitKey.Field(d.toolkit.Name()),
		)
	} else {
		capitan.Error(ctx, DispatchFailed,
			OperationKey.Field(string(result.Operation)),
			StatusKey.Field(string(result.Status)),
			ErrorKindKey.Field(string(result.Kind)),
			MessageKey.Field(result.Message),
			ToolkitKey.Field(d.toolkit.Name()),
		)
	}
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, intent CanonicalIntent, seqs []ExtractedSequence) OperationResult {
	op := intent.Operation
	h, ok := handlers[op]
	if !ok {
		if op == "" {
			op = OpUnknown
		}
		return failed(op, KindUnknownOperation, unknownMessage())
	}

	if len(seqs) == 0 {
		return failed(op, KindNoOperand, ErrNoOperand.Error())
	}
	operand := seqs[0]

	params, err := NormalizeParameters(op, intent.Parameters)
	if err != nil {
		return failed(op, KindInvalidParameter, fmt.Sprintf("%s: %v", ErrInvalidParameter, err))
	}

	result := OperationResult{Operation: op, Operand: operand.Label(), Parameters: params}

	if operand.Alphabet == Protein {
		return withError(result, KindInvalidParameter, fmt.Sprintf("%s: %s requires a nucleotide sequence, %s is protein", ErrInvalidParameter, op, operand.Label()))
	}
	seq := NormalizeNucleotides(operand.Residues)
	if !IsNucleotideString(seq) {
		return withError(result, KindInvalidParameter, fmt.Sprintf("%s: %s contains non-nucleotide characters", ErrInvalidParameter, operand.Label()))
	}

	if h.validate != nil {
		if err := h.validate(seq, params); err != nil {
			return withError(result, KindInvalidParameter, err.Error())
		}
	}

	payload, err := d.invoke(ctx, h, seq, params)
	if err != nil {
		return withError(result, KindCollaboratorFailure, fmt.Sprintf("%s: %s %s: %v", ErrCollaborator, d.toolkit.Name(), op, err))
	}
	result.Status = StatusSuccess
	result.Payload = payload
	return result
}

// invoke runs the toolkit call, converting panics into errors.
func (d *Dispatcher) invoke(ctx context.Context, h handler, seq string, params Parameters) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return h.run(ctx, d.toolkit, seq, params)
}

func withError(r OperationResult, kind ErrorKind, message string) OperationResult {
	r.Status = StatusError
	r.Kind = kind
	r.Message = message
	return r
}

func unknownMessage() string {
	tags := make([]string, len(operationSpecs))
	for i, spec := range operationSpecs {
		tags[i] = string(spec.Operation)
	}
	return "no recognizable operation in the query; supported operations: " + strings.Join(tags, ", ")
}
