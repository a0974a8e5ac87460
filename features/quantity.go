package features

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"productsim/normalization"
)

// UnitFamily семейство единиц измерения
type UnitFamily string

const (
	FamilyMass   UnitFamily = "mass"
	FamilyVolume UnitFamily = "volume"
	FamilyCount  UnitFamily = "count"
	FamilyLength UnitFamily = "length"
)

// Quantity количество, приведенное к базовой единице семейства
// (g для массы, ml для объема, un для штук, m для длины)
type Quantity struct {
	Value  float64    `json:"value"`
	Unit   string     `json:"unit"`
	Family UnitFamily `json:"family"`
}

// String возвращает представление вида "350ml"
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'f', -1, 64) + q.Unit
}

// unitFactor переводит каноническую единицу в базовую единицу семейства
type unitFactor struct {
	base   string
	family UnitFamily
	factor float64
}

var unitFactors = map[string]unitFactor{
	"mg": {"g", FamilyMass, 0.001},
	"g":  {"g", FamilyMass, 1},
	"kg": {"g", FamilyMass, 1000},
	"ml": {"ml", FamilyVolume, 1},
	"l":  {"ml", FamilyVolume, 1000},
	"un": {"un", FamilyCount, 1},
	"mm": {"m", FamilyLength, 0.001},
	"cm": {"m", FamilyLength, 0.01},
	"m":  {"m", FamilyLength, 1},
}

var (
	quantityPattern  = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*([a-z]+)$`)
	multipackPattern = regexp.MustCompile(`^(\d+)\s*x\s*(\d+(?:[.,]\d+)?)\s*([a-z]+)$`)
)

// ParseQuantity разбирает количество в любой из записей "350ml", "350 ml",
// "0,35l", "1.5 L", "2x200g". Возвращает ok = false, если запись не распознана.
func ParseQuantity(s string) (Quantity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Quantity{}, false
	}

	if m := multipackPattern.FindStringSubmatch(s); m != nil {
		count, err := strconv.ParseFloat(m[1], 64)
		if err != nil || count <= 0 {
			return Quantity{}, false
		}
		q, ok := convert(m[2], m[3])
		if !ok {
			return Quantity{}, false
		}
		q.Value = round(q.Value * count)
		return q, true
	}

	if m := quantityPattern.FindStringSubmatch(s); m != nil {
		return convert(m[1], m[2])
	}
	return Quantity{}, false
}

func convert(number, unit string) (Quantity, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", "."), 64)
	if err != nil {
		return Quantity{}, false
	}
	canonical, ok := normalization.UnitAlias(unit)
	if !ok {
		return Quantity{}, false
	}
	f, ok := unitFactors[canonical]
	if !ok {
		return Quantity{}, false
	}
	return Quantity{Value: round(value * f.factor), Unit: f.base, Family: f.family}, true
}

// round убирает погрешность умножения на коэффициент единицы
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Agreement сравнивает два количества: 1.0 при совпадении с допуском 1%,
// отношение меньшего к большему внутри одного семейства, 0 для разных семейств.
// ok = false, если хотя бы одно количество отсутствует.
func Agreement(a, b *Quantity) (score float64, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if a.Family != b.Family {
		return 0, true
	}
	lo, hi := math.Min(a.Value, b.Value), math.Max(a.Value, b.Value)
	if hi == 0 {
		return 1, true
	}
	ratio := lo / hi
	if ratio >= 0.99 {
		return 1, true
	}
	return ratio, true
}
