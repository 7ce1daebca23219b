package bioquery

import (
	"testing"
)

func TestExtractor_Empty(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := Extractor{}.Extract("")
		if !got.Degenerate() {
			t.Errorf("Expected no sequences, got %d", len(got.Sequences))
		}
		if got.Residual != "" {
			t.Errorf("Expected empty residual, got '%s'", got.Residual)
		}
	})

	t.Run("no sequence", func(t *testing.T) {
		got := Extractor{}.Extract("hello there")
		if !got.Degenerate() {
			t.Errorf("Expected no sequences, got %d", len(got.Sequences))
		}
		if got.Residual != "hello there" {
			t.Errorf("Expected residual to be the input, got '%s'", got.Residual)
		}
	})

	t.Run("short words", func(t *testing.T) {
		got := Extractor{}.Extract("GATTACA is a film and CAT is a word")
		if !got.Degenerate() {
			t.Errorf("Expected short runs to stay residual, got %+v", got.Sequences)
		}
	})
}

func TestExtractor_Bare(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		raw := "Translate ATGGCGAATTACGTAGCT"
		got := Extractor{}.Extract(raw)
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		seq := got.Sequences[0]
		if seq.Residues != "ATGGCGAATTACGTAGCT" {
			t.Errorf("Expected residues 'ATGGCGAATTACGTAGCT', got '%s'", seq.Residues)
		}
		if seq.ID != "" {
			t.Errorf("Expected no identifier, got '%s'", seq.ID)
		}
		if seq.Kind != KindBare || seq.Alphabet != Nucleotide {
			t.Errorf("Expected bare nucleotide run, got %s/%s", seq.Kind, seq.Alphabet)
		}
		if raw[seq.Span.Start:seq.Span.End] != seq.Residues {
			t.Errorf("Span %v does not cover the run", seq.Span)
		}
		if got.Residual != "Translate [seq1]" {
			t.Errorf("Expected residual 'Translate [seq1]', got '%s'", got.Residual)
		}
	})

	t.Run("lower case", func(t *testing.T) {
		got := Extractor{}.Extract("gc content of atgcgcgcatatgcgc please")
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		if got.Sequences[0].Residues != "atgcgcgcatatgcgc" {
			t.Errorf("Expected case preserved, got '%s'", got.Sequences[0].Residues)
		}
		if got.Residual != "gc content of [seq1] please" {
			t.Errorf("Unexpected residual '%s'", got.Residual)
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		got := Extractor{}.Extract("reverse complement ATGGCGAATT\nACGTAGCTAG\nCTAG")
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		if got.Sequences[0].Residues != "ATGGCGAATTACGTAGCTAGCTAG" {
			t.Errorf("Expected whitespace stripped, got '%s'", got.Sequences[0].Residues)
		}
	})

	t.Run("mixed with words", func(t *testing.T) {
		got := Extractor{}.Extract("Find pattern GAATTC mismatch 1 in ATGAATTCAAAGAATCCTT")
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d: %+v", len(got.Sequences), got.Sequences)
		}
		if got.Sequences[0].Residues != "ATGAATTCAAAGAATCCTT" {
			t.Errorf("Unexpected residues '%s'", got.Sequences[0].Residues)
		}
		if got.Residual != "Find pattern GAATTC mismatch 1 in [seq1]" {
			t.Errorf("Unexpected residual '%s'", got.Residual)
		}
	})

	t.Run("min run length", func(t *testing.T) {
		got := Extractor{MinRunLength: 20}.Extract("Translate ATGGCGAATTACGTAGCT")
		if !got.Degenerate() {
			t.Errorf("Expected run below threshold to be residual, got %+v", got.Sequences)
		}
	})

	t.Run("multiple", func(t *testing.T) {
		got := Extractor{}.Extract("compare ATGGCGAATTACG and TTTTGGGGCCCCAAAA")
		if len(got.Sequences) != 2 {
			t.Fatalf("Expected 2 sequences, got %d", len(got.Sequences))
		}
		if got.Sequences[0].Residues != "ATGGCGAATTACG" || got.Sequences[1].Residues != "TTTTGGGGCCCCAAAA" {
			t.Errorf("Sequences out of order: %+v", got.Sequences)
		}
		if got.Residual != "compare [seq1] and [seq2]" {
			t.Errorf("Unexpected residual '%s'", got.Residual)
		}
	})

	t.Run("protein context", func(t *testing.T) {
		got := Extractor{}.Extract("summarize the protein MKTAYIAKQRQISFVKSHFSRQ")
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		if got.Sequences[0].Alphabet != Protein {
			t.Errorf("Expected protein alphabet, got %s", got.Sequences[0].Alphabet)
		}
	})

	t.Run("protein without context", func(t *testing.T) {
		got := Extractor{}.Extract("summarize MKTAYIAKQRQISFVKSHFSRQ")
		if !got.Degenerate() {
			t.Errorf("Expected no sequences without protein context, got %+v", got.Sequences)
		}
	})
}

func TestExtractor_FASTA(t *testing.T) {
	t.Run("single record", func(t *testing.T) {
		raw := "Translate this\n>seq1 test gene\nATGGCGAATT\nacgtagct\n"
		got := Extractor{}.Extract(raw)
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		seq := got.Sequences[0]
		if seq.ID != "seq1" {
			t.Errorf("Expected ID 'seq1', got '%s'", seq.ID)
		}
		if seq.Description != "test gene" {
			t.Errorf("Expected description 'test gene', got '%s'", seq.Description)
		}
		if seq.Residues != "ATGGCGAATTacgtagct" {
			t.Errorf("Expected exact residues, got '%s'", seq.Residues)
		}
		if seq.Kind != KindFASTA {
			t.Errorf("Expected FASTA kind, got %s", seq.Kind)
		}
		if got.Residual != "Translate this [seq1]" {
			t.Errorf("Unexpected residual '%s'", got.Residual)
		}
	})

	t.Run("multiple records", func(t *testing.T) {
		raw := ">a\nATGC\nATGC\n>b desc\nGGCC\n"
		got := Extractor{}.Extract(raw)
		if len(got.Sequences) != 2 {
			t.Fatalf("Expected 2 sequences, got %d", len(got.Sequences))
		}
		if got.Sequences[0].ID != "a" || got.Sequences[0].Residues != "ATGCATGC" {
			t.Errorf("Unexpected first record %+v", got.Sequences[0])
		}
		if got.Sequences[1].ID != "b" || got.Sequences[1].Residues != "GGCC" {
			t.Errorf("Unexpected second record %+v", got.Sequences[1])
		}
	})

	t.Run("short records", func(t *testing.T) {
		got := Extractor{}.Extract(">tiny\nACG")
		if len(got.Sequences) != 1 || got.Sequences[0].Residues != "ACG" {
			t.Errorf("Expected FASTA records to ignore the bare run threshold, got %+v", got.Sequences)
		}
	})

	t.Run("command on header line", func(t *testing.T) {
		raw := "find orfs >chr1 sample\nATGAAATAG"
		got := Extractor{}.Extract(raw)
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		if got.Sequences[0].ID != "chr1" {
			t.Errorf("Expected header recognized, got ID '%s'", got.Sequences[0].ID)
		}
		if got.Residual != "find orfs [seq1]" {
			t.Errorf("Expected command retained in residual, got '%s'", got.Residual)
		}
	})

	t.Run("inline body", func(t *testing.T) {
		got := Extractor{}.Extract("translate >s1 ATGGCGAATTACG")
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		if got.Sequences[0].ID != "s1" || got.Sequences[0].Residues != "ATGGCGAATTACG" {
			t.Errorf("Unexpected record %+v", got.Sequences[0])
		}
		if got.Sequences[0].Description != "" {
			t.Errorf("Expected no description, got '%s'", got.Sequences[0].Description)
		}
	})

	t.Run("header without body", func(t *testing.T) {
		got := Extractor{}.Extract(">nothing here\nplease translate")
		if !got.Degenerate() {
			t.Errorf("Expected a header without a body to be ignored, got %+v", got.Sequences)
		}
	})

	t.Run("body ends at instruction", func(t *testing.T) {
		got := Extractor{}.Extract(">x\nATGCATGC\nthen translate it")
		if len(got.Sequences) != 1 || got.Sequences[0].Residues != "ATGCATGC" {
			t.Fatalf("Unexpected sequences %+v", got.Sequences)
		}
		if got.Residual != "[seq1] then translate it" {
			t.Errorf("Unexpected residual '%s'", got.Residual)
		}
	})

	t.Run("comparison operator", func(t *testing.T) {
		got := Extractor{}.Extract("orfs > 100 in ATGGCGAATTACGTAG")
		if len(got.Sequences) != 1 || got.Sequences[0].Kind != KindBare {
			t.Errorf("Expected a bare run only, got %+v", got.Sequences)
		}
	})

	t.Run("mixed case run", func(t *testing.T) {
		got := Extractor{}.Extract("Translate ATGaaaCCCgggTTT")
		if len(got.Sequences) != 1 || got.Sequences[0].Residues != "ATGaaaCCCgggTTT" {
			t.Fatalf("Expected the soft-masked run with case preserved, got %+v", got.Sequences)
		}
		if got.Residual != "Translate [seq1]" {
			t.Errorf("Unexpected residual '%s'", got.Residual)
		}
	})

	t.Run("mixed case runs stay separate", func(t *testing.T) {
		got := Extractor{}.Extract("compare ATGaaaCCCgggTTT ACGTACGTACGT")
		if len(got.Sequences) != 2 {
			t.Fatalf("Expected 2 sequences, got %+v", got.Sequences)
		}
		if got.Sequences[0].Residues != "ATGaaaCCCgggTTT" || got.Sequences[1].Residues != "ACGTACGTACGT" {
			t.Errorf("Unexpected sequences %+v", got.Sequences)
		}
	})

	t.Run("short mixed case chunk", func(t *testing.T) {
		got := Extractor{}.Extract("the GaTtAcA movie")
		if !got.Degenerate() {
			t.Errorf("Expected no sequences, got %+v", got.Sequences)
		}
	})

	t.Run("protein record", func(t *testing.T) {
		got := Extractor{}.Extract(">p1\nMKTAYIAKQR\nQISFVK*")
		if len(got.Sequences) != 1 {
			t.Fatalf("Expected 1 sequence, got %d", len(got.Sequences))
		}
		if got.Sequences[0].Alphabet != Protein || got.Sequences[0].Residues != "MKTAYIAKQRQISFVK" {
			t.Errorf("Unexpected protein record %+v", got.Sequences[0])
		}
	})
}

func TestPlaceholderIndex(t *testing.T) {
	if i, ok := PlaceholderIndex("[seq2]"); !ok || i != 1 {
		t.Errorf("Expected index 1, got %d (%v)", i, ok)
	}
	if _, ok := PlaceholderIndex("seq2"); ok {
		t.Error("Expected bare word to be rejected")
	}
	if _, ok := PlaceholderIndex("[seq0]"); ok {
		t.Error("Expected [seq0] to be rejected")
	}
}
