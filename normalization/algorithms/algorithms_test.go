package algorithms

import (
	"math"
	"testing"
)

func TestJaccardAndDice(t *testing.T) {
	a := NewTokenSet([]string{"coca", "cola", "lata"})
	b := NewTokenSet([]string{"coca", "cola", "refrigerante", "lata"})

	if got := Jaccard(a, b); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected Jaccard 0.75, got %f", got)
	}
	if got := Dice(a, b); math.Abs(got-6.0/7.0) > 1e-9 {
		t.Errorf("Expected Dice %f, got %f", 6.0/7.0, got)
	}
	if got := Overlap(a, b); got != 1.0 {
		t.Errorf("Expected Overlap 1.0, got %f", got)
	}
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("Jaccard must be symmetric")
	}
}

func TestJaccardEmpty(t *testing.T) {
	empty := NewTokenSet(nil)
	other := NewTokenSet([]string{"arroz"})

	if Jaccard(empty, empty) != 1.0 {
		t.Error("two empty sets are identical")
	}
	if Jaccard(empty, other) != 0.0 {
		t.Error("empty vs non-empty should be 0")
	}
	if JaccardStrings([]string{"a", "", "a"}, []string{"a"}) != 1.0 {
		t.Error("duplicates and empty tokens are ignored")
	}
}

func TestDamerauLevenshtein(t *testing.T) {
	dl := NewDamerauLevenshtein()

	tests := []struct {
		s1, s2   string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"arroz", "arroz", 0},
		{"arroz", "aroz", 1},
		{"leite", "liete", 1}, // транспозиция
		{"cafe", "café", 1},
		{"5kg", "5000g", 3},
	}

	for _, tt := range tests {
		if got := dl.Distance(tt.s1, tt.s2); got != tt.expected {
			t.Errorf("Distance(%q, %q) = %d, expected %d", tt.s1, tt.s2, got, tt.expected)
		}
		if dl.Distance(tt.s1, tt.s2) != dl.Distance(tt.s2, tt.s1) {
			t.Errorf("Distance(%q, %q) must be symmetric", tt.s1, tt.s2)
		}
	}

	if dl.Similarity("omo", "omo") != 1.0 {
		t.Error("identical strings must have similarity 1.0")
	}
	if got := dl.Similarity("abcd", "wxyz"); got != 0.0 {
		t.Errorf("Expected 0.0 for disjoint strings, got %f", got)
	}
}

func TestCosineVectors(t *testing.T) {
	if got := CosineVectors([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected 1.0, got %f", got)
	}
	if got := ClampedCosine([]float64{1, 0}, []float64{-1, 0}); got != 0.0 {
		t.Errorf("Negative cosine must clamp to 0, got %f", got)
	}
	if got := CosineVectors([]float64{1, 2}, []float64{1}); got != 0.0 {
		t.Errorf("Dimension mismatch must yield 0, got %f", got)
	}
	if got := CosineVectors([]float64{0, 0}, []float64{1, 1}); got != 0.0 {
		t.Errorf("Zero vector must yield 0, got %f", got)
	}

	n := Normalize([]float64{3, 4})
	if math.Abs(n[0]-0.6) > 1e-12 || math.Abs(n[1]-0.8) > 1e-12 {
		t.Errorf("Unexpected normalized vector %v", n)
	}
	if Clamp01(math.NaN()) != 0 || Clamp01(1.5) != 1 || Clamp01(-2) != 0 {
		t.Error("Clamp01 bounds violated")
	}
}

func TestNGramGenerator(t *testing.T) {
	ng := NewNGramGenerator(3)
	grams := ng.Generate("omo")
	expected := []string{"__o", "_om", "omo", "mo_", "o__"}
	if len(grams) != len(expected) {
		t.Fatalf("Expected %d grams, got %d: %v", len(expected), len(grams), grams)
	}
	for i := range expected {
		if grams[i] != expected[i] {
			t.Errorf("gram %d: expected %q, got %q", i, expected[i], grams[i])
		}
	}
	if ng.Generate("   ") != nil {
		t.Error("blank text has no grams")
	}
}

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(6)
	uf.Union(4, 1)
	uf.Union(1, 3)
	uf.Union(5, 2)

	if !uf.Connected(3, 4) {
		t.Error("3 and 4 should be connected")
	}
	if uf.Connected(0, 1) {
		t.Error("0 should stay alone")
	}
	if uf.Size(4) != 3 {
		t.Errorf("Expected size 3, got %d", uf.Size(4))
	}
	if uf.Union(3, 1) {
		t.Error("union of connected elements should report false")
	}

	comps := uf.Components()
	expected := [][]int{{0}, {1, 3, 4}, {2, 5}}
	if len(comps) != len(expected) {
		t.Fatalf("Expected %d components, got %v", len(expected), comps)
	}
	for i := range expected {
		for j := range expected[i] {
			if comps[i][j] != expected[i][j] {
				t.Errorf("component %d: expected %v, got %v", i, expected[i], comps[i])
			}
		}
	}
}

func TestEvaluationMetrics(t *testing.T) {
	em := NewEvaluationMetrics()
	em.AddResult(true, true)
	em.AddResult(true, true)
	em.AddResult(true, false)
	em.AddResult(false, true)
	em.AddResult(false, false)

	if em.Total() != 5 {
		t.Errorf("Expected 5 results, got %d", em.Total())
	}
	if math.Abs(em.Precision()-2.0/3.0) > 1e-9 {
		t.Errorf("Expected precision 0.667, got %f", em.Precision())
	}
	if math.Abs(em.Recall()-2.0/3.0) > 1e-9 {
		t.Errorf("Expected recall 0.667, got %f", em.Recall())
	}
	if math.Abs(em.Accuracy()-0.6) > 1e-9 {
		t.Errorf("Expected accuracy 0.6, got %f", em.Accuracy())
	}
	cm := em.ConfusionMatrix()
	if cm != [2][2]int{{1, 1}, {1, 2}} {
		t.Errorf("Unexpected confusion matrix %v", cm)
	}
}

func TestAUC(t *testing.T) {
	labels := []bool{false, false, true, true}

	if got := AUC([]float64{0.1, 0.2, 0.8, 0.9}, labels); got != 1.0 {
		t.Errorf("Perfect ranking should give AUC 1.0, got %f", got)
	}
	if got := AUC([]float64{0.9, 0.8, 0.2, 0.1}, labels); got != 0.0 {
		t.Errorf("Inverted ranking should give AUC 0.0, got %f", got)
	}
	if got := AUC([]float64{0.5, 0.5, 0.5, 0.5}, labels); got != 0.5 {
		t.Errorf("Ties should give AUC 0.5, got %f", got)
	}
	if got := AUC([]float64{0.3, 0.4}, []bool{true, true}); got != 0.5 {
		t.Errorf("Single class should give AUC 0.5, got %f", got)
	}
}

func TestBestF1Threshold(t *testing.T) {
	scores := []float64{0.1, 0.3, 0.62, 0.7, 0.9}
	labels := []bool{false, false, true, true, true}

	best := BestF1Threshold(scores, labels, ThresholdGrid(0.05, 0.95, 0.05))
	if best.Metrics.F1Score() != 1.0 {
		t.Errorf("Expected perfect F1, got %f", best.Metrics.F1Score())
	}
	// Наименьший порог с F1 = 1 лежит сразу над 0.3
	if best.Threshold != 0.35 {
		t.Errorf("Expected threshold 0.35, got %f", best.Threshold)
	}

	grid := ThresholdGrid(0.05, 0.95, 0.05)
	if len(grid) != 19 || grid[0] != 0.05 || grid[18] != 0.95 {
		t.Errorf("Unexpected grid %v", grid)
	}
}

func TestPortugueseStemmer(t *testing.T) {
	s := NewPortugueseStemmer()
	if got := s.Stem("biscoitos"); got != "biscoit" {
		t.Errorf("Expected stem biscoit, got %q", got)
	}

	pairs := [][2]string{
		{"biscoitos", "biscoito"},
		{"refrigerantes", "refrigerante"},
		{"chocolates", "chocolate"},
	}
	for _, p := range pairs {
		if s.Stem(p[0]) != s.Stem(p[1]) {
			t.Errorf("plural and singular should share a stem: %q vs %q", s.Stem(p[0]), s.Stem(p[1]))
		}
		if s.Stem(p[0]) == p[0] {
			t.Errorf("Expected %q to be stemmed", p[0])
		}
	}

	if s.Stem("  ") != "" {
		t.Error("blank word stems to empty string")
	}
	if s.Language() != DefaultStemmerLanguage {
		t.Errorf("Expected language %s, got %s", DefaultStemmerLanguage, s.Language())
	}
}

func TestStemmerLanguages(t *testing.T) {
	es, err := NewStemmer("Spanish", 0)
	if err != nil {
		t.Fatalf("spanish stemmer: %v", err)
	}
	if es.Stem("galletas") != es.Stem("galleta") {
		t.Errorf("spanish plural should share a stem: %q vs %q", es.Stem("galletas"), es.Stem("galleta"))
	}

	def, err := NewStemmer("", 0)
	if err != nil || def.Language() != DefaultStemmerLanguage {
		t.Errorf("empty language should fall back to %s, got %v", DefaultStemmerLanguage, err)
	}

	_, err = NewStemmer("klingon", 0)
	if err == nil {
		t.Fatal("Expected error for unsupported language")
	}
	if CodeOf(err) != ErrCodeConfiguration {
		t.Errorf("Expected CONFIGURATION error, got %s", CodeOf(err))
	}
}

func TestStemmerCacheIsBounded(t *testing.T) {
	s, err := NewStemmer(DefaultStemmerLanguage, 2)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.StemTokens([]string{"arroz", "feijao", "macarrao", "farinha"})
	if s.CacheSize() != 2 {
		t.Errorf("Expected cache size 2, got %d", s.CacheSize())
	}
	if got := s.Stem("farinha"); got == "" {
		t.Error("Expected cached stem")
	}
}
