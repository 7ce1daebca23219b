package native

import "github.com/zoobzio/bioquery"

// standardCode is NCBI translation table 1, indexed by codon.
var standardCode = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// translate converts complete codons of an upper-case DNA string from its
// first base. A trailing partial codon is dropped and unknown codons become X.
func translate(dna string) string {
	out := make([]byte, 0, len(dna)/3)
	for i := 0; i+3 <= len(dna); i += 3 {
		aa, ok := standardCode[dna[i:i+3]]
		if !ok {
			aa = 'X'
		}
		out = append(out, aa)
	}
	return string(out)
}

// offset returns the 0-based start of a reading frame on its strand.
func offset(frame int) int {
	if frame < 0 {
		frame = -frame
	}
	return frame - 1
}

// TranslateFrame translates seq in frame 1..3 (forward) or -1..-3 (reverse
// complement).
func TranslateFrame(seq string, frame int) string {
	strand := seq
	if frame < 0 {
		strand = bioquery.ReverseComplement(seq)
	}
	off := offset(frame)
	if off >= len(strand) {
		return ""
	}
	return translate(strand[off:])
}
