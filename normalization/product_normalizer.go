package normalization

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCacheSize размер LRU-кэша нормализатора по умолчанию
const DefaultCacheSize = 10000

// NormalizedProduct результат нормализации товарного наименования
type NormalizedProduct struct {
	Original   string   `json:"original"`
	Text       string   `json:"text"`
	Tokens     []string `json:"tokens"`
	Brand      string   `json:"brand,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Empty      bool     `json:"empty"`
}

// NormalizerStats статистика кэша нормализатора
type NormalizerStats struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	CacheSize     int   `json:"cache_size"`
	LearnedBrands int   `json:"learned_brands"`
}

var (
	quantityGlued   = regexp.MustCompile(`^(\d+(?:\.\d+)?)([a-z]+)$`)
	multipackGlued  = regexp.MustCompile(`^(\d+)x(\d+(?:\.\d+)?)([a-z]+)$`)
	wordDigitGlued  = regexp.MustCompile(`^([a-z]{2,})(\d+)$`)
	numberToken     = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	diacriticRemove = runes.Remove(runes.In(unicode.Mn))
)

// ProductNormalizer приводит товарные наименования к каноническому виду.
// Результат - чистая функция от входа и текущего лексикона марок.
type ProductNormalizer struct {
	mu      sync.RWMutex
	brands  []brandVariant
	learned map[string]struct{}
	cache   *lru.Cache[string, NormalizedProduct]
	hits    atomic.Int64
	misses  atomic.Int64
	logger  *slog.Logger
}

// NewProductNormalizer создает нормализатор с кэшем заданного размера
func NewProductNormalizer(cacheSize int, logger *slog.Logger) *ProductNormalizer {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, _ := lru.New[string, NormalizedProduct](cacheSize)

	n := &ProductNormalizer{
		learned: make(map[string]struct{}),
		cache:   cache,
		logger:  logger,
	}
	n.brands = buildBrandVariants(curatedBrands, nil)
	return n
}

// Normalize нормализует одно наименование.
// Пустой или невалидный вход дает NormalizedProduct с Empty = true.
func (n *ProductNormalizer) Normalize(text string) NormalizedProduct {
	if cached, ok := n.cache.Get(text); ok {
		n.hits.Add(1)
		return cached
	}
	n.misses.Add(1)

	// Кэш пополняется под той же блокировкой, что и вычисление,
	// чтобы смена лексикона не оставила в нем устаревших результатов
	n.mu.RLock()
	result := n.normalize(text)
	n.cache.Add(text, result)
	n.mu.RUnlock()

	return result
}

// NormalizeBatch нормализует список наименований, сохраняя порядок
func (n *ProductNormalizer) NormalizeBatch(texts []string) []NormalizedProduct {
	out := make([]NormalizedProduct, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}

// Stats возвращает статистику кэша
func (n *ProductNormalizer) Stats() NormalizerStats {
	n.mu.RLock()
	learned := len(n.learned)
	n.mu.RUnlock()

	return NormalizerStats{
		CacheHits:     n.hits.Load(),
		CacheMisses:   n.misses.Load(),
		CacheSize:     n.cache.Len(),
		LearnedBrands: learned,
	}
}

// AddBrand добавляет марку в лексикон и сбрасывает кэш
func (n *ProductNormalizer) AddBrand(canonical string, variants ...string) {
	canonical = strings.ReplaceAll(foldText(canonical), " ", "-")
	if canonical == "" {
		return
	}
	if len(variants) == 0 {
		variants = []string{canonical}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	extra := map[string][]string{canonical: variants}
	n.brands = mergeBrandVariants(n.brands, buildBrandVariants(extra, nil))
	n.cache.Purge()
}

// normalize выполняет нормализацию без кэша; вызывается под RLock
func (n *ProductNormalizer) normalize(text string) NormalizedProduct {
	result := NormalizedProduct{Original: text}
	if !utf8.ValidString(text) || strings.TrimSpace(text) == "" {
		result.Empty = true
		return result
	}

	tokens := baseTokens(text)
	if len(tokens) == 0 {
		result.Empty = true
		return result
	}

	result.Categories = categoriesOf(tokens)
	tokens, result.Brand = n.canonicalizeBrands(tokens)
	result.Tokens = tokens
	result.Text = strings.Join(tokens, " ")
	return result
}

// baseTokens выполняет все шаги нормализации, кроме распознавания марок
func baseTokens(text string) []string {
	folded := foldText(text)
	raw := strings.Fields(folded)

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tokens = append(tokens, splitGlued(tok)...)
	}
	tokens = mergeQuantities(tokens)

	for i, tok := range tokens {
		if full, ok := abbreviations[tok]; ok {
			tokens[i] = full
		}
	}
	return tokens
}

// foldText приводит к нижнему регистру, убирает диакритику и пунктуацию.
// Запятая и точка между цифрами сохраняются как десятичная точка.
func foldText(text string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, diacriticRemove, norm.NFC), text)
	if err != nil {
		stripped = text
	}
	lower := []rune(strings.ToLower(stripped))

	var b strings.Builder
	b.Grow(len(lower))
	for i, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case (r == ',' || r == '.') && i > 0 && i+1 < len(lower) &&
			unicode.IsDigit(lower[i-1]) && unicode.IsDigit(lower[i+1]):
			b.WriteRune('.')
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// splitGlued разделяет склеенные токены: "350ml" остается количеством,
// "tipo1" превращается в "tipo 1", "2x200g" - в мультиупаковку
func splitGlued(tok string) []string {
	if m := multipackGlued.FindStringSubmatch(tok); m != nil {
		if unit, ok := unitAliases[m[3]]; ok {
			return []string{m[1] + "x" + m[2] + unit}
		}
	}
	if m := quantityGlued.FindStringSubmatch(tok); m != nil {
		if unit, ok := unitAliases[m[2]]; ok {
			return []string{m[1] + unit}
		}
		return []string{m[1], m[2]}
	}
	if m := wordDigitGlued.FindStringSubmatch(tok); m != nil {
		return []string{m[1], m[2]}
	}
	return []string{tok}
}

// mergeQuantities склеивает число и следующую за ним единицу: "350 ml" -> "350ml",
// "2 x 200g" -> "2x200g"
func mergeQuantities(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !numberToken.MatchString(tok) || i+1 >= len(tokens) {
			out = append(out, tok)
			continue
		}

		next := tokens[i+1]
		if unit, ok := unitAliases[next]; ok {
			out = append(out, tok+unit)
			i++
			continue
		}
		if next == "x" && i+2 < len(tokens) {
			after := tokens[i+2]
			if m := quantityGlued.FindStringSubmatch(after); m != nil {
				if _, ok := unitAliases[m[2]]; ok {
					out = append(out, tok+"x"+after)
					i += 2
					continue
				}
			}
		}
		out = append(out, tok)
	}
	return out
}

// categoriesOf возвращает отсортированный список категорий по ключевым словам
func categoriesOf(tokens []string) []string {
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		for _, c := range categoryIndex[tok] {
			seen[c] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// canonicalizeBrands заменяет все найденные написания марок каноническим именем.
// Маркой товара считается первая найденная в порядке токенов.
func (n *ProductNormalizer) canonicalizeBrands(tokens []string) ([]string, string) {
	out := make([]string, 0, len(tokens))
	brand := ""
	for i := 0; i < len(tokens); {
		matched := false
		for _, v := range n.brands {
			if !hasPrefixTokens(tokens[i:], v.tokens) {
				continue
			}
			out = append(out, v.canonical)
			if brand == "" {
				brand = v.canonical
			}
			i += len(v.tokens)
			matched = true
			break
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return out, brand
}

func hasPrefixTokens(tokens, prefix []string) bool {
	if len(prefix) == 0 || len(prefix) > len(tokens) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}

// buildBrandVariants строит список написаний, отсортированный по убыванию длины,
// чтобы "coca cola" находилось раньше "coca"
func buildBrandVariants(brands map[string][]string, into []brandVariant) []brandVariant {
	for canonical, variants := range brands {
		for _, v := range variants {
			toks := strings.Fields(foldText(v))
			if len(toks) == 0 {
				continue
			}
			into = append(into, brandVariant{tokens: toks, canonical: canonical})
		}
	}
	sortBrandVariants(into)
	return into
}

func mergeBrandVariants(a, b []brandVariant) []brandVariant {
	out := make([]brandVariant, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sortBrandVariants(out)
	return out
}

func sortBrandVariants(vs []brandVariant) {
	sort.SliceStable(vs, func(i, j int) bool {
		if len(vs[i].tokens) != len(vs[j].tokens) {
			return len(vs[i].tokens) > len(vs[j].tokens)
		}
		ki, kj := strings.Join(vs[i].tokens, " "), strings.Join(vs[j].tokens, " ")
		if ki != kj {
			return ki < kj
		}
		return vs[i].canonical < vs[j].canonical
	})
}
