package algorithms

import (
	"strings"
)

// NGramGenerator генерирует символьные N-граммы из текста
type NGramGenerator struct {
	n int // размер граммы (2 для биграмм, 3 для триграмм)
}

// NewNGramGenerator создает новый генератор N-грамм
func NewNGramGenerator(n int) *NGramGenerator {
	if n < 1 {
		n = 3
	}
	return &NGramGenerator{n: n}
}

// Size возвращает размер граммы
func (ng *NGramGenerator) Size() int {
	return ng.n
}

// Generate создает N-граммы из текста
// Каждое слово дополняется символами '_' по краям, граммы внутри слов
func (ng *NGramGenerator) Generate(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}

	pad := strings.Repeat("_", ng.n-1)
	var ngrams []string
	for _, w := range words {
		runes := []rune(pad + w + pad)
		for i := 0; i+ng.n <= len(runes); i++ {
			gram := string(runes[i : i+ng.n])
			if strings.Trim(gram, "_") != "" {
				ngrams = append(ngrams, gram)
			}
		}
	}
	return ngrams
}
