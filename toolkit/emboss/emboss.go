// Package emboss implements the bioquery Toolkit on top of the EMBOSS
// command line suite (transeq, revseq, getorf, fuzznuc).
//
// GC content, restriction scanning and sequence statistics run natively:
// EMBOSS restrict needs an external enzyme database and its GC tools do not
// produce a sliding-window series.
package emboss

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zoobzio/bioquery"
	"github.com/zoobzio/bioquery/toolkit/native"
)

// Toolkit shells out to EMBOSS for translation, reverse complement, ORF and
// pattern search.
type Toolkit struct {
	*native.Toolkit
	runner Runner
}

// New creates an EMBOSS Toolkit. A nil runner uses ExecRunner with PATH lookup.
func New(runner Runner) *Toolkit {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Toolkit{Toolkit: native.New(), runner: runner}
}

// Name implements bioquery.Toolkit.
func (*Toolkit) Name() string {
	return "emboss"
}

// Translate runs transeq for one frame.
func (t *Toolkit) Translate(ctx context.Context, seq string, frame int) (bioquery.Translation, error) {
	out, err := t.runner.Run(ctx, "transeq", seq, "-frame", strconv.Itoa(frame))
	if err != nil {
		return bioquery.Translation{}, err
	}
	records := parseFASTA(out)
	if len(records) == 0 {
		return bioquery.Translation{}, fmt.Errorf("transeq returned no translation")
	}
	return bioquery.Translation{Frame: frame, Protein: records[0].sequence}, nil
}

// ReverseComplement runs revseq.
func (t *Toolkit) ReverseComplement(ctx context.Context, seq string) (string, error) {
	out, err := t.runner.Run(ctx, "revseq", seq)
	if err != nil {
		return "", err
	}
	records := parseFASTA(out)
	if len(records) == 0 {
		return "", fmt.Errorf("revseq returned no sequence")
	}
	return strings.ToUpper(records[0].sequence), nil
}

// getorfHeader matches "Query_1 [10 - 99]" with an optional reverse marker.
var getorfHeader = regexp.MustCompile(`^\S+_\d+\s+\[(\d+)\s*-\s*(\d+)\](\s+\(REVERSE SENSE\))?`)

// FindORFs runs getorf between start and stop codons.
func (t *Toolkit) FindORFs(ctx context.Context, seq string, minLength int) ([]bioquery.ORF, error) {
	out, err := t.runner.Run(ctx, "getorf", seq, "-minsize", strconv.Itoa(minLength), "-find", "1")
	if err != nil {
		return nil, err
	}
	var orfs []bioquery.ORF
	for _, rec := range parseFASTA(out) {
		m := getorfHeader.FindStringSubmatch(rec.header)
		if m == nil {
			return nil, fmt.Errorf("getorf: unrecognized header %q", rec.header)
		}
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		orf := bioquery.ORF{Protein: rec.sequence}
		if m[3] == "" {
			orf.Start, orf.End = from, to
			orf.Frame = (from-1)%3 + 1
		} else {
			orf.Start, orf.End = to, from
			orf.Frame = -((len(seq)-from)%3 + 1)
		}
		orf.Length = orf.End - orf.Start + 1
		orfs = append(orfs, orf)
	}
	return orfs, nil
}

// FindPattern runs fuzznuc on both strands and reads its GFF report.
// Mismatch counts are recomputed from the reported coordinates.
func (t *Toolkit) FindPattern(ctx context.Context, seq, pattern string, mismatches int) ([]bioquery.PatternMatch, error) {
	out, err := t.runner.Run(ctx, "fuzznuc", seq,
		"-pattern", pattern,
		"-pmismatch", strconv.Itoa(mismatches),
		"-complement", "Y",
		"-rformat", "gff",
	)
	if err != nil {
		return nil, err
	}

	var matches []bioquery.PatternMatch
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 7 {
			continue
		}
		start, err1 := strconv.Atoi(cols[3])
		end, err2 := strconv.Atoi(cols[4])
		if err1 != nil || err2 != nil || start < 1 || end > len(seq) || start > end {
			return nil, fmt.Errorf("fuzznuc: malformed feature line %q", line)
		}
		window := seq[start-1 : end]
		m := bioquery.PatternMatch{Strand: cols[6], Start: start, End: end, Matched: window}
		if m.Strand == "-" {
			m.Matched = bioquery.ReverseComplement(window)
		}
		m.Mismatches = countMismatches(m.Matched, pattern)
		matches = append(matches, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fuzznuc: %w", err)
	}
	return matches, nil
}

func countMismatches(matched, pattern string) int {
	mm := 0
	for i := 0; i < len(matched) && i < len(pattern); i++ {
		if !bioquery.BaseMatch(matched[i], pattern[i]) {
			mm++
		}
	}
	return mm
}

// transeqFrames maps the transeq -frame 6 record order to frame numbers.
var transeqFrames = map[string]int{
	"1": 1, "2": 2, "3": 3, "4": -1, "5": -2, "6": -3,
}

// SixFrame runs transeq -frame 6. Records are labeled Query_1..Query_6; the
// suffix determines the frame.
func (t *Toolkit) SixFrame(ctx context.Context, seq string) ([]bioquery.FrameTranslation, error) {
	out, err := t.runner.Run(ctx, "transeq", seq, "-frame", "6")
	if err != nil {
		return nil, err
	}
	var frames []bioquery.FrameTranslation
	for _, rec := range parseFASTA(out) {
		id := strings.Fields(rec.header)[0]
		suffix := id[strings.LastIndex(id, "_")+1:]
		frame, ok := transeqFrames[suffix]
		if !ok {
			return nil, fmt.Errorf("transeq: unrecognized frame record %q", id)
		}
		frames = append(frames, bioquery.FrameTranslation{Label: id, Frame: frame, Protein: rec.sequence})
	}
	return frames, nil
}

type record struct {
	header   string
	sequence string
}

// parseFASTA reads EMBOSS sequence output. Records with an empty header are
// skipped.
func parseFASTA(out string) []record {
	var records []record
	var current *record
	var body strings.Builder
	flush := func() {
		if current != nil {
			current.sequence = body.String()
			records = append(records, *current)
		}
		body.Reset()
	}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ">") {
			flush()
			current = nil
			if header := strings.TrimSpace(line[1:]); header != "" {
				current = &record{header: header}
			}
			continue
		}
		body.WriteString(strings.Join(strings.Fields(line), ""))
	}
	flush()
	return records
}
