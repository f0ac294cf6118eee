package importer

import "strings"

// Normalize prepares a title for comparison: lower-cased, everything but
// letters, digits and spaces stripped, and runs of whitespace collapsed
// to single spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// bigrams returns the set of character bigrams of the normalized string
// padded with one leading and trailing space, so single-character
// strings still produce tokens.
func bigrams(normalized string) map[string]struct{} {
	if normalized == "" {
		return nil
	}
	padded := " " + normalized + " "
	set := make(map[string]struct{}, len(padded))
	for i := 0; i+2 <= len(padded); i++ {
		set[padded[i:i+2]] = struct{}{}
	}
	return set
}

// Similarity computes the Dice coefficient over character bigrams of the
// normalized inputs: 2·|A∩B| / (|A|+|B|). It is symmetric, deterministic
// and ranges over [0,1], reaching 1.0 exactly when the normalized
// strings are identical and non-empty. Returns 0 if either bigram set is
// empty.
func Similarity(a, b string) float64 {
	setA := bigrams(Normalize(a))
	setB := bigrams(Normalize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(setA)+len(setB))
}
