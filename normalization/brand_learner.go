package normalization

import (
	"sort"
	"unicode"
)

// DefaultBrandMinOccurrences минимальное число наименований, в которых
// кандидат должен встретиться, чтобы считаться маркой
const DefaultBrandMinOccurrences = 3

// BrandCandidate кандидат в марки с частотой по корпусу
type BrandCandidate struct {
	Token       string `json:"token"`
	Occurrences int    `json:"occurrences"`
}

// brandCandidate возвращает первый токен наименования, который может быть маркой:
// буквенный, длиной от трех символов, не товарное и не описательное слово.
// Если в наименовании уже есть известная марка, кандидата нет.
func (n *ProductNormalizer) brandCandidate(tokens []string) string {
	if _, brand := n.canonicalizeBrands(tokens); brand != "" {
		return ""
	}
	for _, tok := range tokens {
		if len(tok) < 3 || !isAlpha(tok) || IsGenericWord(tok) {
			continue
		}
		if _, isUnit := unitAliases[tok]; isUnit {
			continue
		}
		return tok
	}
	return ""
}

// DiscoverBrands считает кандидатов в марки по корпусу без изменения лексикона.
// Кандидаты отсортированы по убыванию частоты, затем по алфавиту.
func (n *ProductNormalizer) DiscoverBrands(corpus []string, minOccurrences int) []BrandCandidate {
	if minOccurrences <= 0 {
		minOccurrences = DefaultBrandMinOccurrences
	}

	counts := make(map[string]int)
	n.mu.RLock()
	for _, text := range corpus {
		tokens := baseTokens(text)
		if cand := n.brandCandidate(tokens); cand != "" {
			counts[cand]++
		}
	}
	n.mu.RUnlock()

	var out []BrandCandidate
	for tok, c := range counts {
		if c >= minOccurrences {
			out = append(out, BrandCandidate{Token: tok, Occurrences: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].Token < out[j].Token
	})
	return out
}

// LearnBrands добавляет в лексикон марки, найденные частотной эвристикой,
// и возвращает их список. Кэш сбрасывается, чтобы результат нормализации
// оставался функцией от входа и лексикона.
func (n *ProductNormalizer) LearnBrands(corpus []string, minOccurrences int) []string {
	candidates := n.DiscoverBrands(corpus, minOccurrences)
	if len(candidates) == 0 {
		return nil
	}

	learned := make([]string, 0, len(candidates))
	extra := make(map[string][]string, len(candidates))
	for _, c := range candidates {
		extra[c.Token] = []string{c.Token}
		learned = append(learned, c.Token)
	}

	n.mu.Lock()
	for _, b := range learned {
		n.learned[b] = struct{}{}
	}
	n.brands = mergeBrandVariants(n.brands, buildBrandVariants(extra, nil))
	n.cache.Purge()
	n.mu.Unlock()

	n.logger.Info("learned brands from corpus",
		"corpus_size", len(corpus),
		"learned", len(learned))
	return learned
}

// LearnedBrands возвращает отсортированный список выученных марок
func (n *ProductNormalizer) LearnedBrands() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.learned))
	for b := range n.learned {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
