package algorithms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/portuguese"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/french"
	"github.com/kljensen/snowball/spanish"
)

// DefaultStemmerLanguage язык стемминга по умолчанию
const DefaultStemmerLanguage = "portuguese"

const defaultStemCacheSize = 10000

// Stemmer приводит слово к основе
type Stemmer interface {
	Stem(word string) string
	StemTokens(tokens []string) []string
}

type stemFunc func(word string) string

// Португальский берется из snowballstem (в kljensen/snowball его нет),
// остальные языки каталогов - из kljensen/snowball
var stemFuncs = map[string]stemFunc{
	"portuguese": func(word string) string {
		env := snowballstem.NewEnv(word)
		portuguese.Stem(env)
		return env.Current()
	},
	"spanish": func(word string) string { return spanish.Stem(word, true) },
	"english": func(word string) string { return english.Stem(word, true) },
	"french":  func(word string) string { return french.Stem(word, true) },
}

// StemmerLanguages возвращает поддерживаемые языки
func StemmerLanguages() []string {
	langs := make([]string, 0, len(stemFuncs))
	for lang := range stemFuncs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// SnowballStemmer стеммер Snowball с ограниченным LRU-кэшем основ
type SnowballStemmer struct {
	language string
	stem     stemFunc
	cache    *lru.Cache[string, string]
}

// NewStemmer создает стеммер для языка. Неизвестный язык - ошибка CONFIGURATION.
// cacheSize <= 0 означает размер по умолчанию.
func NewStemmer(language string, cacheSize int) (*SnowballStemmer, error) {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = DefaultStemmerLanguage
	}
	fn, ok := stemFuncs[lang]
	if !ok {
		return nil, NewSimilarityError(ErrCodeConfiguration,
			fmt.Sprintf("unsupported stemmer language %q (valid: %s)", language, strings.Join(StemmerLanguages(), ", ")), nil).
			WithDetail("language", language)
	}
	if cacheSize <= 0 {
		cacheSize = defaultStemCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, NewSimilarityError(ErrCodeConfiguration, "failed to create stem cache", err)
	}
	return &SnowballStemmer{language: lang, stem: fn, cache: cache}, nil
}

// NewPortugueseStemmer создает португальский стеммер с кэшем по умолчанию
func NewPortugueseStemmer() *SnowballStemmer {
	s, err := NewStemmer(DefaultStemmerLanguage, defaultStemCacheSize)
	if err != nil {
		panic(err)
	}
	return s
}

// Language возвращает язык стеммера
func (s *SnowballStemmer) Language() string {
	return s.language
}

// Stem возвращает основу слова: "biscoitos" -> "biscoit"
func (s *SnowballStemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}
	if cached, ok := s.cache.Get(normalized); ok {
		return cached
	}

	stemmed := s.stem(normalized)
	if stemmed == "" {
		stemmed = normalized
	}
	s.cache.Add(normalized, stemmed)
	return stemmed
}

// StemTokens возвращает основы всех токенов
func (s *SnowballStemmer) StemTokens(tokens []string) []string {
	stemmed := make([]string, len(tokens))
	for i, token := range tokens {
		stemmed[i] = s.Stem(token)
	}
	return stemmed
}

// CacheSize возвращает число закэшированных основ
func (s *SnowballStemmer) CacheSize() int {
	return s.cache.Len()
}
