package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/zoobzio/bioquery"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderOutcome prints the result of one query for a human reader.
func renderOutcome(w io.Writer, out bioquery.Outcome) {
	r := out.Result
	fmt.Fprintf(w, "Operation: %s (parsed by %s parser)\n", r.Operation, out.Intent.Source)
	if r.Operand != "" {
		fmt.Fprintf(w, "Sequence:  %s\n", r.Operand)
	}
	if out.Intent.Reference != "" {
		fmt.Fprintf(w, "Reference: %s\n", out.Intent.Reference)
	}
	if len(r.Parameters) > 0 {
		fmt.Fprintf(w, "Params:    %s\n", formatParams(r.Parameters))
	}
	if !r.OK() {
		fmt.Fprintf(w, "Error [%s]: %s\n", r.Kind, r.Message)
		return
	}
	fmt.Fprintln(w)
	renderPayload(w, r.Payload)
}

func formatParams(p bioquery.Parameters) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		v := p[k]
		if list, ok := v.([]string); ok {
			v = strings.Join(list, ",")
		}
		parts[i] = fmt.Sprintf("%s=%v", k, v)
	}
	return strings.Join(parts, " ")
}

func renderPayload(w io.Writer, payload any) {
	switch p := payload.(type) {
	case bioquery.Translation:
		fmt.Fprintf(w, "Frame %s: %s\n", bioquery.FrameLabel(p.Frame), p.Protein)
	case bioquery.ReverseComplementResult:
		fmt.Fprintln(w, p.Sequence)
	case bioquery.ORFResult:
		fmt.Fprintf(w, "%d ORF(s) of at least %d nt\n", len(p.ORFs), p.MinLength)
		for _, orf := range p.ORFs {
			fmt.Fprintf(w, "  %-3s %6d..%-6d %5d nt  %s\n",
				bioquery.FrameLabel(orf.Frame), orf.Start, orf.End, orf.Length, orf.Protein)
		}
	case bioquery.GCProfile:
		fmt.Fprintf(w, "GC content: %.2f%%\n", p.GCPercent)
		fmt.Fprintf(w, "Window %d: %d value(s)", p.Window, len(p.Windows))
		if len(p.Windows) > 0 {
			lo, hi := p.Windows[0], p.Windows[0]
			for _, v := range p.Windows {
				lo, hi = min(lo, v), max(hi, v)
			}
			fmt.Fprintf(w, ", min %.1f%%, max %.1f%%", lo, hi)
		}
		fmt.Fprintln(w)
	case bioquery.PatternResult:
		fmt.Fprintf(w, "%d match(es) for %s with up to %d mismatch(es)\n", len(p.Matches), p.Pattern, p.MaxMismatches)
		for _, m := range p.Matches {
			fmt.Fprintf(w, "  %s %6d..%-6d %s (%d mismatch)\n", m.Strand, m.Start, m.End, m.Matched, m.Mismatches)
		}
	case bioquery.SixFrameResult:
		for _, f := range p.Frames {
			fmt.Fprintf(w, "%s  %s\n", f.Label, f.Protein)
		}
	case bioquery.RestrictionResult:
		fmt.Fprintf(w, "%d site(s) for %s\n", len(p.Sites), strings.Join(p.Enzymes, ", "))
		for _, s := range p.Sites {
			fmt.Fprintf(w, "  %-8s %-10s pos %-6d cut after %-6d %s\n", s.Enzyme, s.Site, s.Position, s.Cut, s.Ends)
		}
	case bioquery.SequenceStats:
		fmt.Fprintf(w, "Length: %d\n", p.Length)
		for _, base := range []string{"A", "C", "G", "T", "other"} {
			if n, ok := p.Counts[base]; ok {
				fmt.Fprintf(w, "  %-5s %d\n", base, n)
			}
		}
		fmt.Fprintf(w, "GC: %.2f%%  AT: %.2f%%\n", p.GCPercent, p.ATPercent)
	default:
		writeJSON(w, payload)
	}
}
