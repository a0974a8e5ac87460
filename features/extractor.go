package features

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"productsim/normalization"
	"productsim/normalization/algorithms"
)

// FeatureVector структурированное представление товара для сравнения
type FeatureVector struct {
	Original   string              `json:"original"`
	Normalized string              `json:"normalized"`
	Tokens     []string            `json:"tokens"`
	TokenSet   algorithms.TokenSet `json:"-"`
	Quantity   *Quantity           `json:"quantity,omitempty"`
	Code       string              `json:"code,omitempty"`
	Brand      string              `json:"brand,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	CoreKey    string              `json:"core_key,omitempty"`
	VariantKey string              `json:"variant_key,omitempty"`
	Empty      bool                `json:"empty"`
}

// HasQuantity сообщает, распознано ли количество
func (fv *FeatureVector) HasQuantity() bool {
	return fv.Quantity != nil
}

// SameContent сообщает, совпадают ли все признаки, влияющие на схожесть
func (fv *FeatureVector) SameContent(other *FeatureVector) bool {
	if fv.Normalized != other.Normalized || fv.Code != other.Code || fv.Brand != other.Brand {
		return false
	}
	if (fv.Quantity == nil) != (other.Quantity == nil) {
		return false
	}
	if fv.Quantity != nil && *fv.Quantity != *other.Quantity {
		return false
	}
	if len(fv.Tokens) != len(other.Tokens) {
		return false
	}
	for i := range fv.Tokens {
		if fv.Tokens[i] != other.Tokens[i] {
			return false
		}
	}
	return true
}

// stopWords служебные слова, не участвующие в лексическом сравнении
var stopWords = map[string]struct{}{
	"com": {}, "sem": {}, "e": {}, "ou": {}, "do": {}, "da": {}, "de": {}, "dos": {},
	"das": {}, "no": {}, "na": {}, "em": {}, "para": {}, "por": {}, "ate": {},
	"tipo": {}, "marca": {}, "tamanho": {}, "o": {}, "a": {}, "x": {},
}

// variantWords слова, отличающие вариант одного и того же товара
var variantWords = map[string]struct{}{
	"zero": {}, "light": {}, "diet": {}, "integral": {}, "desnatado": {},
	"semidesnatado": {}, "original": {}, "tradicional": {},
	"morango": {}, "chocolate": {}, "baunilha": {}, "limao": {}, "uva": {},
	"laranja": {}, "cereja": {}, "menta": {}, "picante": {}, "defumado": {},
}

var codePattern = regexp.MustCompile(`^\d{8,14}$`)

// Extractor извлекает признаки из нормализованных наименований
type Extractor struct {
	normalizer *normalization.ProductNormalizer
	stemmer    algorithms.Stemmer
	logger     *slog.Logger
}

// ExtractorOption настраивает Extractor
type ExtractorOption func(*Extractor)

// WithStemming включает стемминг токенов (Snowball, португальский)
func WithStemming(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		if enabled {
			e.stemmer = algorithms.NewPortugueseStemmer()
		} else {
			e.stemmer = nil
		}
	}
}

// WithStemmer задает стеммер; nil отключает стемминг
func WithStemmer(stemmer algorithms.Stemmer) ExtractorOption {
	return func(e *Extractor) {
		e.stemmer = stemmer
	}
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor создает экстрактор; без нормализатора создается собственный
func NewExtractor(normalizer *normalization.ProductNormalizer, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		normalizer: normalizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		e.normalizer = normalization.NewProductNormalizer(0, e.logger)
	}
	return e
}

// Normalizer возвращает связанный нормализатор
func (e *Extractor) Normalizer() *normalization.ProductNormalizer {
	return e.normalizer
}

// Extract строит вектор признаков из нормализованного наименования
func (e *Extractor) Extract(np normalization.NormalizedProduct) FeatureVector {
	return e.ExtractWithCode(np, "")
}

// ExtractWithCode строит вектор признаков; непустой code имеет приоритет
// над кодом, найденным в тексте
func (e *Extractor) ExtractWithCode(np normalization.NormalizedProduct, code string) FeatureVector {
	fv := FeatureVector{
		Original:   np.Original,
		Normalized: np.Text,
		Brand:      np.Brand,
		Categories: np.Categories,
		Code:       strings.TrimSpace(code),
		Empty:      np.Empty,
	}

	var tokens, core, variant []string
	for _, tok := range np.Tokens {
		if q, ok := ParseQuantity(tok); ok {
			if fv.Quantity == nil {
				qq := q
				fv.Quantity = &qq
			}
			continue
		}
		if codePattern.MatchString(tok) {
			if fv.Code == "" {
				fv.Code = tok
			}
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if normalization.IsProductTypeWord(tok) {
			core = append(core, tok)
		}
		if _, ok := variantWords[tok]; ok {
			variant = append(variant, tok)
		}
		if e.stemmer != nil && tok != np.Brand && !isNumeric(tok) {
			tok = e.stemmer.Stem(tok)
		}
		tokens = append(tokens, tok)
	}

	fv.Tokens = sortedUnique(tokens)
	fv.TokenSet = algorithms.NewTokenSet(fv.Tokens)
	fv.CoreKey = strings.Join(sortedUnique(core), " ")
	fv.VariantKey = strings.Join(sortedUnique(variant), " ")
	return fv
}

// FromText нормализует текст и извлекает признаки
func (e *Extractor) FromText(text, code string) FeatureVector {
	return e.ExtractWithCode(e.normalizer.Normalize(text), code)
}

// ExtractBatch извлекает признаки для списка; одна плохая запись не прерывает пакет
func (e *Extractor) ExtractBatch(items []normalization.NormalizedProduct) []FeatureVector {
	out := make([]FeatureVector, len(items))
	for i, np := range items {
		if np.Empty {
			e.logger.Debug("empty product description in batch", "index", i)
		}
		out[i] = e.Extract(np)
	}
	return out
}

func sortedUnique(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, len(tokens))
	copy(out, tokens)
	sort.Strings(out)
	j := 0
	for i := 1; i < len(out); i++ {
		if out[i] != out[j] {
			j++
			out[j] = out[i]
		}
	}
	return out[:j+1]
}

func isNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return s != ""
}
