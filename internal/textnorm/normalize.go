// Package textnorm folds Portuguese free text into a comparable form.
//
// All matching in the lead engine (search, keyword rules, filters) goes
// through Normalize, so "São Paulo", "SAO PAULO" and "sao paulo" compare equal.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain builds a fresh accent-stripping transformer. Transformers carry
// state, so one is created per call instead of sharing a package var.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lowercases text, strips diacritics and trims surrounding
// whitespace. Empty input yields "". Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded, _, err := transform.String(foldChain(), strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	return strings.TrimSpace(folded)
}

// Words splits text into lowercase words, breaking on anything that is not
// a letter or digit. Accents are kept.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

// Tokens returns the normalized words of text that are longer than minLen.
func Tokens(text string, minLen int) []string {
	words := strings.FieldsFunc(Normalize(text), isSeparator)
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) > minLen {
			out = append(out, w)
		}
	}
	return out
}

// ContainsPhrase reports whether phrase occurs in text as a run of whole
// words, after normalizing both sides.
func ContainsPhrase(text, phrase string) bool {
	_, ok := FindPhrase(text, phrase)
	return ok
}

// FindPhrase locates phrase inside text on word boundaries, comparing in
// normalized form, and returns the matching words as they appear in the
// lowercased text (accents preserved).
func FindPhrase(text, phrase string) (string, bool) {
	needle := strings.FieldsFunc(Normalize(phrase), isSeparator)
	if len(needle) == 0 {
		return "", false
	}

	words := Words(text)
	folded := make([]string, len(words))
	for i, w := range words {
		folded[i] = Normalize(w)
	}

	for i := 0; i+len(needle) <= len(folded); i++ {
		match := true
		for j, n := range needle {
			if folded[i+j] != n {
				match = false
				break
			}
		}
		if match {
			return strings.Join(words[i:i+len(needle)], " "), true
		}
	}
	return "", false
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}
