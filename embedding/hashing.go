package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"productsim/normalization/algorithms"
)

// DefaultHashingDimension размерность локального бэкенда по умолчанию
const DefaultHashingDimension = 256

// HashingBackend локальный детерминированный бэкенд: символьные триграммы
// и слова проецируются в вектор фиксированной размерности (feature hashing).
// Не требует сети и всегда доступен.
type HashingBackend struct {
	dim    int
	ngrams *algorithms.NGramGenerator
}

// NewHashingBackend создает локальный бэкенд
func NewHashingBackend(dim int) *HashingBackend {
	if dim <= 0 {
		dim = DefaultHashingDimension
	}
	return &HashingBackend{
		dim:    dim,
		ngrams: algorithms.NewNGramGenerator(3),
	}
}

// Name возвращает идентификатор бэкенда
func (h *HashingBackend) Name() string {
	return fmt.Sprintf("%s:%d", KindHashing, h.dim)
}

// Load ничего не загружает
func (h *HashingBackend) Load(ctx context.Context) error {
	return ctx.Err()
}

// Embed возвращает L2-нормированные векторы
func (h *HashingBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashingBackend) vector(text string) []float64 {
	v := make([]float64, h.dim)
	for _, gram := range h.ngrams.Generate(text) {
		h.add(v, "g:"+gram, 1.0)
	}
	// Целые слова весят больше отдельных триграмм
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h.add(v, "w:"+word, 2.0)
	}
	return algorithms.Normalize(v)
}

// add добавляет признак со знаком из старшего бита хэша, чтобы коллизии
// в среднем гасили друг друга
func (h *HashingBackend) add(v []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}
