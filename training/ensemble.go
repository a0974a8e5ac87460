package training

import (
	"math"
	"math/rand"
)

// RandomForest лес деревьев на бутстрэп-выборках со случайными подмножествами признаков
type RandomForest struct {
	Trees    int
	MaxDepth int
	MinLeaf  int

	seed  int64
	trees []*treeNode
}

// NewRandomForest создает лес с параметрами по умолчанию
func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{
		Trees:    60,
		MaxDepth: 8,
		MinLeaf:  1,
		seed:     seed,
	}
}

func (rf *RandomForest) Kind() ModelKind { return KindRandomForest }

func (rf *RandomForest) Fit(x [][]float64, y []float64, w []float64) error {
	if err := checkTrainingSet(x, y, w); err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(rf.seed))
	maxFeatures := int(math.Ceil(math.Sqrt(float64(len(x[0])))))

	b := &treeBuilder{x: x, target: y, w: w}
	b.params = treeParams{
		maxDepth:    rf.MaxDepth,
		minLeaf:     rf.MinLeaf,
		maxFeatures: maxFeatures,
		rng:         rng,
		leafValue: func(idx []int) float64 {
			return weightedMean(y, w, idx)
		},
	}

	rf.trees = make([]*treeNode, 0, rf.Trees)
	n := len(x)
	for t := 0; t < rf.Trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		rf.trees = append(rf.trees, b.build(sample, 0))
	}
	return nil
}

func (rf *RandomForest) PredictProba(x []float64) float64 {
	if len(rf.trees) == 0 {
		return 0.5
	}
	var sum float64
	for _, t := range rf.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(rf.trees))
}

// GradientBoosting градиентный бустинг неглубоких деревьев с логистической функцией потерь
type GradientBoosting struct {
	Estimators   int
	LearningRate float64
	MaxDepth     int
	MinLeaf      int

	init  float64
	trees []*treeNode
}

// NewGradientBoosting создает бустинг с параметрами по умолчанию
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		Estimators:   80,
		LearningRate: 0.1,
		MaxDepth:     3,
		MinLeaf:      1,
	}
}

func (gb *GradientBoosting) Kind() ModelKind { return KindGradientBoosting }

func (gb *GradientBoosting) Fit(x [][]float64, y []float64, w []float64) error {
	if err := checkTrainingSet(x, y, w); err != nil {
		return err
	}
	n := len(x)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	p0 := math.Min(math.Max(weightedMean(y, w, all), 1e-6), 1-1e-6)
	gb.init = math.Log(p0 / (1 - p0))

	raw := make([]float64, n)
	prob := make([]float64, n)
	residual := make([]float64, n)
	for i := range raw {
		raw[i] = gb.init
	}

	b := &treeBuilder{x: x, target: residual, w: w}
	b.params = treeParams{
		maxDepth: gb.MaxDepth,
		minLeaf:  gb.MinLeaf,
		// Шаг Ньютона для логистической функции потерь
		leafValue: func(idx []int) float64 {
			var num, den float64
			for _, i := range idx {
				num += w[i] * residual[i]
				den += w[i] * prob[i] * (1 - prob[i])
			}
			if den < 1e-12 {
				return 0
			}
			return num / den
		},
	}

	gb.trees = make([]*treeNode, 0, gb.Estimators)
	for m := 0; m < gb.Estimators; m++ {
		for i := range raw {
			prob[i] = sigmoid(raw[i])
			residual[i] = y[i] - prob[i]
		}
		tree := b.build(all, 0)
		gb.trees = append(gb.trees, tree)
		for i, row := range x {
			raw[i] += gb.LearningRate * tree.predict(row)
		}
	}
	return nil
}

func (gb *GradientBoosting) PredictProba(x []float64) float64 {
	z := gb.init
	for _, t := range gb.trees {
		z += gb.LearningRate * t.predict(x)
	}
	return sigmoid(z)
}
