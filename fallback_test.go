package bioquery

import (
	"context"
	"reflect"
	"testing"
)

func TestFallbackParser_Operations(t *testing.T) {
	cases := []struct {
		text string
		want Operation
	}{
		{"Translate [seq1]", OpTranslate},
		{"what protein does [seq1] encode", OpTranslate},
		{"reverse complement of [seq1]", OpReverseComplement},
		{"give me the revcomp", OpReverseComplement},
		{"find ORFs in [seq1]", OpFindORFs},
		{"list open reading frames", OpFindORFs},
		{"GC content of [seq1]", OpGCContent},
		{"what is the gc% here", OpGCContent},
		{"Find pattern GAATTC mismatch 1 in [seq1]", OpPatternSearch},
		{"search for the motif TATAAT", OpPatternSearch},
		{"find GAATTC in [seq1]", OpPatternSearch},
		{"six-frame translation of [seq1]", OpSixFrame},
		{"translate in all six frames", OpSixFrame},
		{"show restriction sites", OpRestrictionSites},
		{"where does EcoRI cut", OpRestrictionSites},
		{"sequence statistics for [seq1]", OpSequenceStats},
		{"hello there", OpUnknown},
		{"", OpUnknown},
	}
	parser := NewFallbackParser()
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got := parser.Intent(tc.text)
			if got.Operation != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got.Operation)
			}
			if got.Source != SourceFallback {
				t.Errorf("Expected fallback source, got %s", got.Source)
			}
			if got.Parameters == nil {
				t.Error("Expected non-nil parameters")
			}
		})
	}
}

func TestFallbackParser_Priority(t *testing.T) {
	t.Run("six frame over translate", func(t *testing.T) {
		got := NewFallbackParser().Intent("translate [seq1] in 6 frames")
		if got.Operation != OpSixFrame {
			t.Errorf("Expected six-frame to win, got %s", got.Operation)
		}
	})

	t.Run("orfs over translate", func(t *testing.T) {
		got := NewFallbackParser().Intent("translate the ORFs of [seq1]")
		if got.Operation != OpFindORFs {
			t.Errorf("Expected find-orfs to win, got %s", got.Operation)
		}
	})

	t.Run("translate the reverse complement", func(t *testing.T) {
		for _, text := range []string{
			"translate the reverse complement of [seq1]",
			"reverse complement [seq1] and then translate it",
		} {
			got := NewFallbackParser().Intent(text)
			if got.Operation != OpTranslate {
				t.Errorf("%s: Expected translate to win, got %s", text, got.Operation)
			}
			if f, _ := got.Parameters.Int(ParamFrame); f != -1 {
				t.Errorf("%s: Expected frame -1, got %d", text, f)
			}
		}
	})

	t.Run("reverse complement frame", func(t *testing.T) {
		got := NewFallbackParser().Intent("translate frame 2 of the reverse complement of [seq1]")
		if f, _ := got.Parameters.Int(ParamFrame); got.Operation != OpTranslate || f != -2 {
			t.Errorf("Expected translate frame -2, got %s frame %d", got.Operation, f)
		}
	})

	t.Run("reverse complement alone", func(t *testing.T) {
		got := NewFallbackParser().Intent("reverse complement of [seq1]")
		if got.Operation != OpReverseComplement {
			t.Errorf("Expected reverse-complement, got %s", got.Operation)
		}
	})

	t.Run("gc over translate", func(t *testing.T) {
		got := NewFallbackParser().Intent("gc content of the protein coding region [seq1]")
		if got.Operation != OpGCContent {
			t.Errorf("Expected gc-content to win, got %s", got.Operation)
		}
	})

	t.Run("translate over stats", func(t *testing.T) {
		got := NewFallbackParser().Intent("translate [seq1] and report its length")
		if got.Operation != OpTranslate {
			t.Errorf("Expected translate to win, got %s", got.Operation)
		}
	})

	t.Run("pattern over reverse complement", func(t *testing.T) {
		got := NewFallbackParser().Intent("find pattern GGATCC in the reverse complement")
		if got.Operation != OpPatternSearch {
			t.Errorf("Expected pattern-search to win, got %s", got.Operation)
		}
	})
}

func TestFallbackParser_Parameters(t *testing.T) {
	parser := NewFallbackParser()

	t.Run("pattern and mismatches", func(t *testing.T) {
		got := parser.Intent("Find pattern GAATTC mismatch 1 in [seq1]")
		if p, _ := got.Parameters.String(ParamPattern); p != "GAATTC" {
			t.Errorf("Expected pattern 'GAATTC', got '%s'", p)
		}
		if n, _ := got.Parameters.Int(ParamMismatches); n != 1 {
			t.Errorf("Expected mismatch_count 1, got %d", n)
		}
	})

	t.Run("mismatch words", func(t *testing.T) {
		got := parser.Intent("search for motif TATAAT allowing two mismatches")
		if n, _ := got.Parameters.Int(ParamMismatches); n != 2 {
			t.Errorf("Expected mismatch_count 2, got %d", n)
		}
		if p, _ := got.Parameters.String(ParamPattern); p != "TATAAT" {
			t.Errorf("Expected pattern 'TATAAT', got '%s'", p)
		}
	})

	t.Run("placeholder pattern", func(t *testing.T) {
		got := parser.Intent("find pattern [seq1] in [seq2]")
		if p, _ := got.Parameters.String(ParamPattern); p != "[seq1]" {
			t.Errorf("Expected placeholder pattern, got '%s'", p)
		}
	})

	t.Run("pattern default mismatches", func(t *testing.T) {
		got := parser.Intent("find pattern GAATTC in [seq1]")
		if n, ok := got.Parameters.Int(ParamMismatches); !ok || n != 0 {
			t.Errorf("Expected default mismatch_count 0, got %d (%v)", n, ok)
		}
	})

	t.Run("pattern missing", func(t *testing.T) {
		got := parser.Intent("find a pattern in [seq1]")
		if _, ok := got.Parameters.String(ParamPattern); ok {
			t.Errorf("Expected no pattern, got %v", got.Parameters)
		}
	})

	t.Run("orf length", func(t *testing.T) {
		got := parser.Intent("find ORFs with minimum length 30 in [seq1]")
		if n, _ := got.Parameters.Int(ParamMinORFLength); n != 30 {
			t.Errorf("Expected min_orf_length 30, got %d", n)
		}
	})

	t.Run("orf length in bp", func(t *testing.T) {
		got := parser.Intent("ORFs of 120 bp or more")
		if n, _ := got.Parameters.Int(ParamMinORFLength); n != 120 {
			t.Errorf("Expected min_orf_length 120, got %d", n)
		}
	})

	t.Run("orf default", func(t *testing.T) {
		got := parser.Intent("find ORFs in [seq1]")
		if n, _ := got.Parameters.Int(ParamMinORFLength); n != DefaultMinORFLength {
			t.Errorf("Expected default min_orf_length, got %d", n)
		}
	})

	t.Run("window", func(t *testing.T) {
		got := parser.Intent("GC content of [seq1] with window size 5")
		if n, _ := got.Parameters.Int(ParamWindowSize); n != 5 {
			t.Errorf("Expected window_size 5, got %d", n)
		}
	})

	t.Run("window default", func(t *testing.T) {
		got := parser.Intent("GC content of [seq1]")
		if n, _ := got.Parameters.Int(ParamWindowSize); n != DefaultWindowSize {
			t.Errorf("Expected default window_size, got %d", n)
		}
	})

	t.Run("frame", func(t *testing.T) {
		got := parser.Intent("translate [seq1] in frame -2")
		if n, _ := got.Parameters.Int(ParamFrame); n != -2 {
			t.Errorf("Expected frame -2, got %d", n)
		}
	})

	t.Run("enzymes", func(t *testing.T) {
		got := parser.Intent("restriction sites for ecori and BamHI")
		names, _ := got.Parameters.Strings(ParamEnzymes)
		if !reflect.DeepEqual(names, []string{"EcoRI", "BamHI"}) {
			t.Errorf("Expected [EcoRI BamHI], got %v", names)
		}
	})

	t.Run("unknown has no parameters", func(t *testing.T) {
		got := parser.Intent("hello there")
		if len(got.Parameters) != 0 {
			t.Errorf("Expected empty parameters, got %v", got.Parameters)
		}
	})

	t.Run("reference", func(t *testing.T) {
		got := parser.Intent("Translate the BRCA1 fragment")
		if got.Reference != "brca1_fragment" {
			t.Errorf("Expected reference brca1_fragment, got '%s'", got.Reference)
		}
	})
}

func TestFallbackParser_Parse(t *testing.T) {
	parser := NewFallbackParser()
	inputs := []string{"", "???", "translate", "\x00\xff", "find pattern", "mismatch mismatch 99999999999999999999"}
	for _, in := range inputs {
		intent, err := parser.Parse(context.Background(), in, nil)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", in, err)
		}
		if intent.Operation == "" {
			t.Errorf("Parse(%q) returned empty operation", in)
		}
	}
}
