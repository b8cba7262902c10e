package rules

import "unicode"

// textMapping is the searchable form of an input string. norm is lowercased,
// boundary-collapsed and padded with a space on each side so that automaton
// patterns of the form " term " only match on whole words. origIdx maps every
// normalized rune back to its rune index in the original input, which lets a
// match be reported as the literal excerpt the user typed.
type textMapping struct {
	norm    []rune
	origIdx []int
}

// normalizeText lowercases the input and replaces every separator run with a
// single space. In ascii mode only [a-z0-9] survive as word runes, which is
// the obfuscation-defeating profanity normalization; otherwise any Unicode
// letter or digit counts as part of a word.
func normalizeText(input string, ascii bool) textMapping {
	orig := []rune(input)
	norm := make([]rune, 0, len(orig)+2)
	idx := make([]int, 0, len(orig)+2)

	norm = append(norm, ' ')
	idx = append(idx, 0)

	for i, r := range orig {
		lower := unicode.ToLower(r)
		if isWordRune(lower, ascii) {
			norm = append(norm, lower)
			idx = append(idx, i)
			continue
		}
		if norm[len(norm)-1] != ' ' {
			norm = append(norm, ' ')
			idx = append(idx, i)
		}
	}

	if norm[len(norm)-1] != ' ' {
		norm = append(norm, ' ')
		idx = append(idx, len(orig)-1)
	}
	return textMapping{norm: norm, origIdx: idx}
}

func isWordRune(r rune, ascii bool) bool {
	if ascii {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// spacedVariant derives the letter-by-letter form of a single-token pattern:
// " fuck " becomes " f u c k ". After normalization, "f.u.c.k" and "f-u-c-k"
// read exactly like that, so matching the variant defeats punctuation-spaced
// spelling without loosening word boundaries.
func spacedVariant(pattern []rune) ([]rune, bool) {
	if len(pattern) < 4 {
		return nil, false
	}
	inner := pattern[1 : len(pattern)-1]
	for _, r := range inner {
		if r == ' ' {
			// multi-word terms keep their own spacing
			return nil, false
		}
	}
	out := make([]rune, 0, 2*len(inner)+1)
	out = append(out, ' ')
	for _, r := range inner {
		out = append(out, r, ' ')
	}
	return out, true
}
