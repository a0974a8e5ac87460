package matching

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"productsim/normalization/algorithms"
)

// GroupKind тип группы
type GroupKind string

const (
	KindDuplicate GroupKind = "duplicate"
	KindSimilar   GroupKind = "similar"
	KindSingleton GroupKind = "singleton"
)

// Group группа записей, относящихся к одному или близким товарам
type Group struct {
	ID               string          `json:"id"`
	Kind             GroupKind       `json:"kind"`
	Representative   string          `json:"representative"`
	Members          []string        `json:"members"`
	Records          []ProductRecord `json:"records"`
	Size             int             `json:"size"`
	TotalFrequency   int             `json:"total_frequency"`
	AvgSimilarity    float64         `json:"avg_similarity"`
	SimilarityScores []float64       `json:"similarity_scores"`

	indices []int
}

// Thresholds пороги, с которыми выполнялся прогон
type Thresholds struct {
	Duplicate float64 `json:"duplicate"`
	Similar   float64 `json:"similar"`
}

// RunStats статистика прогона
type RunStats struct {
	CandidatePairs int   `json:"candidate_pairs"`
	FailedPairs    int   `json:"failed_pairs"`
	InvalidRecords int   `json:"invalid_records"`
	Buckets        int   `json:"buckets"`
	EmbeddingsUsed bool  `json:"embeddings_used"`
	ModelUsed      bool  `json:"model_used"`
	DurationMs     int64 `json:"duration_ms"`
}

// MatchingResult результат сопоставления
type MatchingResult struct {
	RunID              string     `json:"run_id"`
	CreatedAt          time.Time  `json:"created_at"`
	Thresholds         Thresholds `json:"thresholds"`
	TotalProducts      int        `json:"total_products"`
	TotalGroups        int        `json:"total_groups"`
	DuplicateGroups    []Group    `json:"duplicate_groups"`
	SimilarGroups      []Group    `json:"similar_groups"`
	SingletonProducts  []string   `json:"singleton_products"`
	DeduplicationRatio float64    `json:"deduplication_ratio"`
	AvgGroupSize       float64    `json:"avg_group_size"`
	LargestGroupSize   int        `json:"largest_group_size"`
	Stats              RunStats   `json:"stats"`
}

// Assignments возвращает для каждой входной записи ID ее группы;
// одиночные записи получают пустую строку
func (r *MatchingResult) Assignments() []string {
	out := make([]string, r.TotalProducts)
	for _, groups := range [][]Group{r.DuplicateGroups, r.SimilarGroups} {
		for _, g := range groups {
			for _, idx := range g.indices {
				out[idx] = g.ID
			}
		}
	}
	return out
}

// Recommendations рекомендации по итогам дедупликации
func Recommendations(r *MatchingResult) []string {
	var recs []string
	if r == nil || r.TotalProducts == 0 {
		return []string{"No products to analyze"}
	}

	reduction := r.DeduplicationRatio * 100
	switch {
	case reduction > 50:
		recs = append(recs, fmt.Sprintf("Excellent deduplication achieved: %.1f%% reduction in product count", reduction))
	case reduction > 20:
		recs = append(recs, fmt.Sprintf("Good deduplication achieved: %.1f%% reduction in product count", reduction))
	default:
		recs = append(recs, fmt.Sprintf("Limited deduplication: %.1f%% reduction. Consider reviewing similarity thresholds", reduction))
	}

	if n := len(r.SimilarGroups); n > 0 {
		recs = append(recs, fmt.Sprintf("Review %d similar groups manually before consolidating them", n))
	}

	var lowConfidence int
	for _, g := range r.DuplicateGroups {
		if g.AvgSimilarity < (r.Thresholds.Duplicate+1)/2 {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		recs = append(recs, fmt.Sprintf("Review %d low-confidence consolidations manually", lowConfidence))
	}

	if r.Stats.FailedPairs > 0 {
		recs = append(recs, fmt.Sprintf("%d pairs failed to score and were treated as unrelated; check the logs", r.Stats.FailedPairs))
	}
	if r.Stats.InvalidRecords > 0 {
		recs = append(recs, fmt.Sprintf("%d records had empty or invalid descriptions", r.Stats.InvalidRecords))
	}
	if singletons := float64(len(r.SingletonProducts)) / float64(r.TotalProducts); singletons > 0.9 && r.TotalProducts >= 10 {
		recs = append(recs, "Most products are unique; consider lowering the similar threshold or training a model")
	}
	return recs
}

// ExportXLSX сохраняет группы результата в Excel
func ExportXLSX(r *MatchingResult, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Groups"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return exportError("failed to create sheet", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return exportError("failed to create header style", err)
	}

	headers := []string{"Group", "Kind", "Representative", "Description", "Code", "Context", "Frequency", "Avg Similarity"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 2
	writeGroup := func(g Group) {
		for _, rec := range g.Records {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), g.ID)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(g.Kind))
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), g.Representative)
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), rec.Description)
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), rec.Code)
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), rec.ContextID)
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), rec.EffectiveFrequency())
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), g.AvgSimilarity)
			row++
		}
	}
	for _, g := range r.DuplicateGroups {
		writeGroup(g)
	}
	for _, g := range r.SimilarGroups {
		writeGroup(g)
	}
	for _, desc := range r.SingletonProducts {
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(KindSingleton))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), desc)
		row++
	}

	widths := []float64{10, 12, 40, 40, 16, 16, 10, 14}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}

	summary := "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return exportError("failed to create summary sheet", err)
	}
	rows := [][]interface{}{
		{"Run ID", r.RunID},
		{"Total products", r.TotalProducts},
		{"Total groups", r.TotalGroups},
		{"Duplicate groups", len(r.DuplicateGroups)},
		{"Similar groups", len(r.SimilarGroups)},
		{"Singletons", len(r.SingletonProducts)},
		{"Deduplication ratio", r.DeduplicationRatio},
		{"Avg group size", r.AvgGroupSize},
		{"Largest group size", r.LargestGroupSize},
	}
	for i, kv := range rows {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+1), kv[0])
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+1), kv[1])
	}
	f.SetColWidth(summary, "A", "A", 22)
	f.SetColWidth(summary, "B", "B", 40)

	f.SetActiveSheet(0)

	if err := f.SaveAs(filename); err != nil {
		return exportError("failed to save Excel file", err)
	}
	return nil
}

func exportError(msg string, err error) error {
	return algorithms.NewSimilarityError(algorithms.ErrCodeExportFailed, msg, err)
}
