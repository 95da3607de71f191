package diff

import (
	"math"
	"strings"
)

// tokenize lowercases and splits on non-letter/digit boundaries. Punctuation
// never contributes to similarity.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// Similarity computes cosine similarity over token frequency vectors.
// Properties relied on by the matcher: Similarity(a, a) == 1, the function
// is symmetric, and adding shared vocabulary can only raise the score.
func Similarity(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	fa := make(map[string]int, len(ta))
	for _, t := range ta {
		fa[t]++
	}
	fb := make(map[string]int, len(tb))
	for _, t := range tb {
		fb[t]++
	}

	var dot, na, nb float64
	for t, c := range fa {
		na += float64(c * c)
		if cb, ok := fb[t]; ok {
			dot += float64(c * cb)
		}
	}
	for _, c := range fb {
		nb += float64(c * c)
	}
	if dot == 0 {
		return 0.0
	}
	return dot / math.Sqrt(na*nb)
}
