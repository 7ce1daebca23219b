package bioquery

import "strings"

var iupacMask [256]byte // bit0=A bit1=C bit2=G bit3=T

var complement [256]byte

func init() {
	set := func(c byte, bits byte) {
		iupacMask[c] = bits
		iupacMask[c|0x20] = bits // lower case
	}
	set('A', 1)       // 0001
	set('C', 2)       // 0010
	set('G', 4)       // 0100
	set('T', 8)       // 1000
	set('U', 8)       // RNA
	set('R', 1|4)     // A/G
	set('Y', 2|8)     // C/T
	set('S', 2|4)     // C/G
	set('W', 1|8)     // A/T
	set('K', 4|8)     // G/T
	set('M', 1|2)     // A/C
	set('B', 2|4|8)   // C/G/T
	set('D', 1|4|8)   // A/G/T
	set('H', 1|2|8)   // A/C/T
	set('V', 1|2|4)   // A/C/G
	set('N', 1|2|4|8) // any

	pairs := []string{"AT", "CG", "GC", "TA", "UA", "RY", "YR", "SS", "WW", "KM", "MK", "BV", "VB", "DH", "HD", "NN"}
	for _, p := range pairs {
		complement[p[0]] = p[1]
		complement[p[0]|0x20] = p[1] | 0x20
	}
}

// IsNucleotide reports whether c is an IUPAC nucleotide code (either case).
func IsNucleotide(c byte) bool {
	return iupacMask[c] != 0
}

// IsNucleotideString reports whether every byte of s is an IUPAC nucleotide code.
func IsNucleotideString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNucleotide(s[i]) {
			return false
		}
	}
	return true
}

// BaseMatch returns true if pattern base p can pair with sequence base g
// according to the IUPAC ambiguity codes and g is one of A, C, G, T.
// A sequence base of N (or anything else) is a hard mismatch so runs of N
// never produce spurious hits.
func BaseMatch(g, p byte) bool {
	if g != 'A' && g != 'C' && g != 'G' && g != 'T' {
		return false
	}
	return iupacMask[p]&iupacMask[g] != 0
}

// ReverseComplement returns the reverse complement of seq, preserving case
// and IUPAC ambiguity. Unknown characters become N.
func ReverseComplement(seq string) string {
	n := len(seq)
	if n == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// NormalizeNucleotides upper-cases seq, drops whitespace and maps U to T.
func NormalizeNucleotides(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			continue
		case c >= 'a' && c <= 'z':
			c -= 0x20
		}
		if c == 'U' {
			c = 'T'
		}
		b.WriteByte(c)
	}
	return b.String()
}
