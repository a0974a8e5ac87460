package matching

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"productsim/features"
	"productsim/normalization/algorithms"
	"productsim/similarity"
)

// Neighbor запись, похожая на искомый товар
type Neighbor struct {
	Index  int                        `json:"index"`
	Record ProductRecord              `json:"record"`
	Score  similarity.SimilarityScore `json:"score"`
}

// FindSimilar ищет записи, похожие на target, с оценкой не ниже similarity_threshold.
// Сравнивает со всеми записями без блокировки. limit <= 0 означает без ограничения.
func (m *Matcher) FindSimilar(ctx context.Context, target string, records []ProductRecord, limit int) ([]Neighbor, error) {
	extractor := m.scorer.Extractor()
	tv := extractor.FromText(target, "")
	if tv.Empty {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"target description is empty", nil)
	}

	scores := make([]similarity.SimilarityScore, len(records))
	ok := make([]bool, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)
	for i, r := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fv := extractor.FromText(r.Description, r.Code)
			if fv.Empty {
				return nil
			}
			s, err := m.scorer.Score(gctx, &tv, &fv)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				m.logger.Warn("similarity search failed for record",
					"index", i,
					"description", r.Description,
					"error", err)
				return nil
			}
			scores[i] = s
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Neighbor
	for i := range records {
		if ok[i] && scores[i].Final >= m.cfg.SimilarityThreshold {
			out = append(out, Neighbor{Index: i, Record: records[i], Score: scores[i]})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score.Final > out[b].Score.Final
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CandidatePair пара кандидатов с признаками, например для активного обучения
type CandidatePair struct {
	Pair
	Left          ProductRecord          `json:"left"`
	Right         ProductRecord          `json:"right"`
	LeftFeatures  features.FeatureVector `json:"left_features"`
	RightFeatures features.FeatureVector `json:"right_features"`
}

// CandidatePairs возвращает пары, которые Match сравнил бы после блокировки
func (m *Matcher) CandidatePairs(records []ProductRecord) []CandidatePair {
	extractor := m.scorer.Extractor()
	fvs := make([]features.FeatureVector, len(records))
	for i, r := range records {
		fvs[i] = extractor.FromText(r.Description, r.Code)
	}
	pairs, _ := candidatePairs(fvs, m.cfg.MaxBucketSize)

	out := make([]CandidatePair, len(pairs))
	for i, p := range pairs {
		out[i] = CandidatePair{
			Pair:          p,
			Left:          records[p.I],
			Right:         records[p.J],
			LeftFeatures:  fvs[p.I],
			RightFeatures: fvs[p.J],
		}
	}
	return out
}
