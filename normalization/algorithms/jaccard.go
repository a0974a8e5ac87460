package algorithms

// TokenSet множество токенов
type TokenSet map[string]struct{}

// NewTokenSet строит множество из списка токенов
func NewTokenSet(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// intersection возвращает размер пересечения, обходя меньшее множество
func intersection(a, b TokenSet) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

// Jaccard вычисляет индекс Жаккара |A ∩ B| / |A ∪ B|
// Два пустых множества считаются идентичными
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := intersection(a, b)
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Dice вычисляет коэффициент Сёренсена-Дайса 2|A ∩ B| / (|A| + |B|)
func Dice(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	return 2 * float64(intersection(a, b)) / float64(len(a)+len(b))
}

// Overlap вычисляет долю общих токенов относительно меньшего множества
func Overlap(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	smaller := min(len(a), len(b))
	if smaller == 0 {
		return 0.0
	}
	return float64(intersection(a, b)) / float64(smaller)
}

// JaccardStrings вычисляет индекс Жаккара для списков строк
func JaccardStrings(a, b []string) float64 {
	return Jaccard(NewTokenSet(a), NewTokenSet(b))
}
