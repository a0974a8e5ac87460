package training

import (
	"math/rand"
	"sort"
)

// treeNode узел регрессионного дерева
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// treeParams параметры построения дерева
type treeParams struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int // 0 - все признаки
	rng         *rand.Rand
	// leafValue значение листа по индексам попавших в него примеров
	leafValue func(idx []int) float64
}

// treeBuilder строит CART по взвешенной дисперсии цели.
// Для меток 0/1 взвешенная дисперсия равна p(1-p), то есть половине
// индекса Джини, поэтому для классификации выбираются те же разбиения.
type treeBuilder struct {
	x      [][]float64
	target []float64
	w      []float64
	params treeParams
}

func (b *treeBuilder) build(idx []int, depth int) *treeNode {
	if depth >= b.params.maxDepth || len(idx) < 2*b.params.minLeaf || b.pure(idx) {
		return &treeNode{leaf: true, value: b.params.leafValue(idx)}
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return &treeNode{leaf: true, value: b.params.leafValue(idx)}
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) pure(idx []int) bool {
	first := b.target[idx[0]]
	for _, i := range idx[1:] {
		if b.target[i] != first {
			return false
		}
	}
	return true
}

func (b *treeBuilder) candidateFeatures() []int {
	d := len(b.x[0])
	all := make([]int, d)
	for j := range all {
		all[j] = j
	}
	k := b.params.maxFeatures
	if k <= 0 || k >= d || b.params.rng == nil {
		return all
	}
	b.params.rng.Shuffle(d, func(i, j int) { all[i], all[j] = all[j], all[i] })
	chosen := all[:k]
	sort.Ints(chosen)
	return chosen
}

// bestSplit ищет разбиение с максимальным снижением взвешенной суммы квадратов
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	var totalW, totalWY, totalWYY float64
	for _, i := range idx {
		wi, yi := b.w[i], b.target[i]
		totalW += wi
		totalWY += wi * yi
		totalWYY += wi * yi * yi
	}
	if totalW == 0 {
		return 0, 0, false
	}
	parentSSE := totalWYY - totalWY*totalWY/totalW

	bestGain := 1e-12
	bestFeature, bestThreshold := -1, 0.0
	sorted := make([]int, len(idx))

	for _, f := range b.candidateFeatures() {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		var lw, lwy, lwyy float64
		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			wi, yi := b.w[i], b.target[i]
			lw += wi
			lwy += wi * yi
			lwyy += wi * yi * yi

			cur, next := b.x[i][f], b.x[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			nLeft := pos + 1
			if nLeft < b.params.minLeaf || len(sorted)-nLeft < b.params.minLeaf {
				continue
			}
			rw := totalW - lw
			if lw == 0 || rw == 0 {
				continue
			}
			rwy := totalWY - lwy
			rwyy := totalWYY - lwyy
			sse := (lwyy - lwy*lwy/lw) + (rwyy - rwy*rwy/rw)
			if gain := parentSSE - sse; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// weightedMean взвешенное среднее цели
func weightedMean(target, w []float64, idx []int) float64 {
	var sw, swy float64
	for _, i := range idx {
		sw += w[i]
		swy += w[i] * target[i]
	}
	if sw == 0 {
		return 0
	}
	return swy / sw
}
