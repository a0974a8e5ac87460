package matching

import (
	"sort"
	"strings"

	"productsim/features"
)

// Pair пара кандидатов (I < J) для сравнения
type Pair struct {
	I int `json:"i"`
	J int `json:"j"`
}

// blockingKeys ключи корзин записи: первое слово, марка, код.
// Пустые записи ни в одну корзину не попадают.
func blockingKeys(fv *features.FeatureVector) []string {
	if fv.Empty {
		return nil
	}
	var keys []string
	if fields := strings.Fields(fv.Normalized); len(fields) > 0 {
		keys = append(keys, "t:"+fields[0])
	}
	if fv.Brand != "" {
		keys = append(keys, "b:"+fv.Brand)
	}
	if fv.Code != "" {
		keys = append(keys, "c:"+fv.Code)
	}
	return keys
}

// buildBuckets раскладывает записи по корзинам
func buildBuckets(fvs []features.FeatureVector) map[string][]int {
	buckets := make(map[string][]int)
	for i := range fvs {
		for _, key := range blockingKeys(&fvs[i]) {
			buckets[key] = append(buckets[key], i)
		}
	}
	return buckets
}

// candidatePairs объединение пар внутри корзин без повторов, отсортированное по (I, J).
// Корзина больше maxBucket сравнивается методом скользящего окна по
// отсортированному нормализованному тексту, чтобы стоимость оставалась линейной.
func candidatePairs(fvs []features.FeatureVector, maxBucket int) ([]Pair, int) {
	buckets := buildBuckets(fvs)
	seen := make(map[Pair]struct{})

	add := func(a, b int) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		seen[Pair{I: a, J: b}] = struct{}{}
	}

	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		if maxBucket > 1 && len(members) > maxBucket {
			sorted := append([]int(nil), members...)
			sort.SliceStable(sorted, func(x, y int) bool {
				return fvs[sorted[x]].Normalized < fvs[sorted[y]].Normalized
			})
			for x := range sorted {
				for y := x + 1; y < len(sorted) && y < x+maxBucket; y++ {
					add(sorted[x], sorted[y])
				}
			}
			continue
		}
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				add(members[x], members[y])
			}
		}
	}

	pairs := make([]Pair, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
	return pairs, len(buckets)
}
