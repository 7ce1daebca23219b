package bioquery

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultMinRunLength is the shortest bare run accepted as a sequence.
const DefaultMinRunLength = 10

// minChunkLength is the shortest whitespace-separated chunk joined into a run.
const minChunkLength = 3

var proteinContext = regexp.MustCompile(`(?i)\b(protein|peptide|polypeptide|amino[\s-]?acids?)\b`)

var aminoLetters = func() (set [256]bool) {
	for _, c := range []byte("ACDEFGHIKLMNPQRSTVWYX") {
		set[c] = true
	}
	return set
}()

// Extraction is the result of scanning a raw query.
type Extraction struct {
	Sequences []ExtractedSequence `json:"sequences"`
	Residual  string              `json:"residual"`
}

// Degenerate reports whether no sequence was found.
func (e Extraction) Degenerate() bool {
	return len(e.Sequences) == 0
}

// Extractor lifts FASTA records and bare sequence runs out of free text.
// The zero value uses DefaultMinRunLength.
type Extractor struct {
	MinRunLength int
}

// Placeholder returns the residual-text marker for the n-th (1-based) sequence.
func Placeholder(n int) string {
	return fmt.Sprintf("[seq%d]", n)
}

var placeholderPattern = regexp.MustCompile(`^\[seq(\d+)\]$`)

// PlaceholderIndex returns the 0-based sequence index referenced by s.
func PlaceholderIndex(s string) (int, bool) {
	m := placeholderPattern.FindStringSubmatch(strings.TrimSpace(strings.ToLower(s)))
	if m == nil {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// Extract scans raw and returns the sequences in order of appearance together
// with the residual instruction text. It never fails.
func (x Extractor) Extract(raw string) Extraction {
	if strings.TrimSpace(raw) == "" {
		return Extraction{Residual: raw}
	}
	minRun := x.MinRunLength
	if minRun <= 0 {
		minRun = DefaultMinRunLength
	}

	seqs := scanFASTA(raw)

	protein := proteinContext.MatchString(raw)
	start := 0
	var bare []ExtractedSequence
	for _, rec := range seqs {
		bare = append(bare, scanRuns(raw, start, rec.Span.Start, minRun, protein)...)
		start = rec.Span.End
	}
	bare = append(bare, scanRuns(raw, start, len(raw), minRun, protein)...)
	seqs = append(seqs, bare...)
	if len(seqs) == 0 {
		return Extraction{Residual: raw}
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i].Span.Start < seqs[j].Span.Start })

	return Extraction{Sequences: seqs, Residual: residual(raw, seqs)}
}

// residual replaces every span with its placeholder and collapses whitespace.
func residual(raw string, seqs []ExtractedSequence) string {
	var b strings.Builder
	pos := 0
	for i, s := range seqs {
		b.WriteString(raw[pos:s.Span.Start])
		b.WriteByte(' ')
		b.WriteString(Placeholder(i + 1))
		b.WriteByte(' ')
		pos = s.Span.End
	}
	b.WriteString(raw[pos:])
	return strings.Join(strings.Fields(b.String()), " ")
}

type line struct {
	start, end int // end excludes the line terminator
}

func splitLines(raw string) []line {
	var out []line
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\n' {
			end := i
			if end > start && raw[end-1] == '\r' {
				end--
			}
			out = append(out, line{start, end})
			start = i + 1
		}
	}
	end := len(raw)
	if end > start && raw[end-1] == '\r' {
		end--
	}
	return append(out, line{start, end})
}

// headerMarker returns the offset of a FASTA header marker in text, or -1.
// The marker opens the line or follows whitespace, and is immediately
// followed by an identifier character.
func headerMarker(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] != '>' {
			continue
		}
		if i > 0 && !isSpace(text[i-1]) {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) && text[i+1] != '>' {
			return i
		}
	}
	return -1
}

// scanFASTA finds every header line followed by at least one body line.
func scanFASTA(raw string) []ExtractedSequence {
	lines := splitLines(raw)
	var out []ExtractedSequence
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		text := raw[l.start:l.end]
		pos := headerMarker(text)
		if pos < 0 {
			continue
		}
		header := text[pos+1:]
		id, desc := header, ""
		if cut := strings.IndexAny(header, " \t"); cut >= 0 {
			id, desc = header[:cut], strings.TrimSpace(header[cut+1:])
		}

		var body strings.Builder
		alphabet := Alphabet("")
		end := -1

		// A header whose trailing text is pure nucleotide data carries the
		// first body line inline.
		if inline := stripSpace(desc); len(inline) >= DefaultMinRunLength && unambiguous(inline) {
			body.WriteString(inline)
			alphabet = Nucleotide
			desc = ""
			end = l.end
		}

		j := i + 1
		for ; j < len(lines); j++ {
			next := raw[lines[j].start:lines[j].end]
			if headerMarker(next) >= 0 {
				break
			}
			a, ok := bodyAlphabet(next)
			if !ok || (alphabet != "" && a != alphabet && !(alphabet == Protein && a == Nucleotide)) {
				break
			}
			if alphabet == "" {
				alphabet = a
			}
			body.WriteString(stripSpace(next))
			end = lines[j].end
		}
		if end < 0 {
			continue
		}
		out = append(out, ExtractedSequence{
			ID:          id,
			Description: desc,
			Residues:    trimTrailingStop(body.String(), alphabet),
			Span:        Span{Start: l.start + pos, End: end},
			Kind:        KindFASTA,
			Alphabet:    alphabet,
		})
		i = j - 1
	}
	return out
}

// bodyAlphabet classifies a FASTA body line. Nucleotide lines may be any
// case; protein lines must be upper case.
func bodyAlphabet(text string) (Alphabet, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsRune(text, '>') {
		return "", false
	}
	nucleotide, protein := true, true
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isSpace(c) {
			continue
		}
		if !IsNucleotide(c) {
			nucleotide = false
		}
		if !aminoLetters[c] && c != '*' {
			protein = false
		}
	}
	switch {
	case nucleotide:
		return Nucleotide, true
	case protein:
		return Protein, true
	default:
		return "", false
	}
}

func trimTrailingStop(residues string, a Alphabet) string {
	if a == Protein {
		return strings.TrimRight(residues, "*")
	}
	return residues
}

type token struct {
	start, end int
}

// scanRuns finds bare runs in raw[from:to].
func scanRuns(raw string, from, to, minRun int, protein bool) []ExtractedSequence {
	var tokens []token
	for i := from; i < to; {
		if !isWordChar(raw[i]) {
			i++
			continue
		}
		j := i
		for j < to && isWordChar(raw[j]) {
			j++
		}
		tokens = append(tokens, token{i, j})
		i = j
	}

	var out []ExtractedSequence
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		word := raw[t.start:t.end]
		if !isChunk(word, minRun) {
			if protein && len(word) >= minRun && isProteinWord(word) {
				out = append(out, ExtractedSequence{
					Residues: word,
					Span:     Span{Start: t.start, End: t.end},
					Kind:     KindBare,
					Alphabet: Protein,
				})
			}
			continue
		}

		// Join following chunks separated only by whitespace and sharing case.
		j := i + 1
		for ; j < len(tokens); j++ {
			prev, next := tokens[j-1], tokens[j]
			if !onlySpace(raw[prev.end:next.start]) {
				break
			}
			w := raw[next.start:next.end]
			if !isChunk(w, minRun) || !singleCase(word) || !singleCase(w) || upper(w) != upper(word) {
				break
			}
		}
		var b strings.Builder
		for k := i; k < j; k++ {
			b.WriteString(raw[tokens[k].start:tokens[k].end])
		}
		if b.Len() >= minRun {
			out = append(out, ExtractedSequence{
				Residues: b.String(),
				Span:     Span{Start: t.start, End: tokens[j-1].end},
				Kind:     KindBare,
				Alphabet: Nucleotide,
			})
		}
		i = j - 1
	}
	return out
}

// isChunk reports whether word can be part of a bare nucleotide run. A word
// of at least minRun bases counts in any case, so soft-masked pastes survive;
// shorter chunks need a single case and unambiguous bases.
func isChunk(word string, minRun int) bool {
	if len(word) < minChunkLength || !IsNucleotideString(word) {
		return false
	}
	if len(word) >= minRun {
		return true
	}
	return singleCase(word) && unambiguous(word)
}

func singleCase(word string) bool {
	return word == strings.ToUpper(word) || word == strings.ToLower(word)
}

// unambiguous reports whether s holds only A, C, G, T, U or N in either case.
func unambiguous(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] | 0x20 {
		case 'a', 'c', 'g', 't', 'u', 'n':
		default:
			return false
		}
	}
	return s != ""
}

func isProteinWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if !aminoLetters[word[i]] {
			return false
		}
	}
	return true
}

func upper(word string) bool {
	return word == strings.ToUpper(word)
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func onlySpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return false
		}
	}
	return true
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
