package algorithms

// UnionFind система непересекающихся множеств над индексами 0..n-1
// Сжатие путей и объединение по рангу; корнем компоненты становится
// элемент с меньшим индексом при равных рангах, поэтому результат
// не зависит от порядка обработки ребер при одинаковом наборе ребер.
type UnionFind struct {
	parent []int
	rank   []int
	size   []int
}

// NewUnionFind создает систему из n одиночных множеств
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Len возвращает количество элементов
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

// Find возвращает корень множества, содержащего x
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Union объединяет множества x и y, возвращает true если они были разными
func (uf *UnionFind) Union(x, y int) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] || (uf.rank[rx] == uf.rank[ry] && ry < rx) {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Connected проверяет, находятся ли x и y в одном множестве
func (uf *UnionFind) Connected(x, y int) bool {
	return uf.Find(x) == uf.Find(y)
}

// Size возвращает размер множества, содержащего x
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// Components возвращает компоненты в виде списков индексов.
// Компоненты упорядочены по наименьшему индексу, индексы внутри по возрастанию.
func (uf *UnionFind) Components() [][]int {
	byRoot := make(map[int]int)
	var comps [][]int
	for i := range uf.parent {
		root := uf.Find(i)
		pos, ok := byRoot[root]
		if !ok {
			pos = len(comps)
			byRoot[root] = pos
			comps = append(comps, nil)
		}
		comps[pos] = append(comps[pos], i)
	}
	return comps
}
