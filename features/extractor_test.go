package features

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productsim/normalization"
	"productsim/normalization/algorithms"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input  string
		value  float64
		unit   string
		family UnitFamily
	}{
		{"350ml", 350, "ml", FamilyVolume},
		{"350 ml", 350, "ml", FamilyVolume},
		{"350ML", 350, "ml", FamilyVolume},
		{"0,35l", 350, "ml", FamilyVolume},
		{"0.35 L", 350, "ml", FamilyVolume},
		{"2lt", 2000, "ml", FamilyVolume},
		{"5kg", 5000, "g", FamilyMass},
		{"5000g", 5000, "g", FamilyMass},
		{"500gr", 500, "g", FamilyMass},
		{"2x200g", 400, "g", FamilyMass},
		{"12un", 12, "un", FamilyCount},
		{"30m", 30, "m", FamilyLength},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, ok := ParseQuantity(tt.input)
			require.True(t, ok, "ParseQuantity(%q) should succeed", tt.input)
			assert.InDelta(t, tt.value, q.Value, 1e-9)
			assert.Equal(t, tt.unit, q.Unit)
			assert.Equal(t, tt.family, q.Family)
		})
	}

	for _, bad := range []string{"", "arroz", "350", "350xyz", "ml"} {
		if _, ok := ParseQuantity(bad); ok {
			t.Errorf("ParseQuantity(%q) should fail", bad)
		}
	}
}

func TestAgreement(t *testing.T) {
	ml350, _ := ParseQuantity("350ml")
	l035, _ := ParseQuantity("0,35l")
	l2, _ := ParseQuantity("2l")
	kg1, _ := ParseQuantity("1kg")

	score, ok := Agreement(&ml350, &l035)
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)

	score, ok = Agreement(&ml350, &l2)
	assert.True(t, ok)
	assert.InDelta(t, 0.175, score, 1e-9)

	score, ok = Agreement(&ml350, &kg1)
	assert.True(t, ok)
	assert.Equal(t, 0.0, score)

	_, ok = Agreement(&ml350, nil)
	assert.False(t, ok, "missing quantity must not be treated as zero")
}

func TestExtract(t *testing.T) {
	e := NewExtractor(nil)

	fv := e.FromText("COCA-COLA REFRIGERANTE LATA 350ML", "")
	assert.Equal(t, []string{"coca-cola", "lata", "refrigerante"}, fv.Tokens)
	require.NotNil(t, fv.Quantity)
	assert.Equal(t, Quantity{Value: 350, Unit: "ml", Family: FamilyVolume}, *fv.Quantity)
	assert.Equal(t, "coca-cola", fv.Brand)
	assert.Equal(t, []string{"bebidas"}, fv.Categories)
	assert.Equal(t, "refrigerante", fv.CoreKey)
	assert.Len(t, fv.TokenSet, 3)

	rice := e.FromText("ARROZ CAMIL TIPO 1 5KG", "")
	assert.Equal(t, []string{"1", "arroz", "camil"}, rice.Tokens)
	require.NotNil(t, rice.Quantity)
	assert.Equal(t, 5000.0, rice.Quantity.Value)
	assert.Equal(t, "g", rice.Quantity.Unit)
}

func TestExtractMissingQuantityAndCode(t *testing.T) {
	e := NewExtractor(nil)

	fv := e.FromText("BANANA PRATA", "")
	assert.Nil(t, fv.Quantity, "absence of quantity is distinguishable from zero")
	assert.False(t, fv.HasQuantity())
	assert.Empty(t, fv.Code)

	zero := e.FromText("AGUA 0ML", "")
	require.NotNil(t, zero.Quantity)
	assert.Equal(t, 0.0, zero.Quantity.Value)

	withEAN := e.FromText("LEITE ITALAC 1L 7898080640017", "")
	assert.Equal(t, "7898080640017", withEAN.Code)
	assert.NotContains(t, withEAN.Tokens, "7898080640017")

	explicit := e.FromText("LEITE ITALAC 1L 7898080640017", "SKU-42")
	assert.Equal(t, "SKU-42", explicit.Code)
}

func TestExtractEmpty(t *testing.T) {
	e := NewExtractor(nil)
	fv := e.FromText("   ", "")
	assert.True(t, fv.Empty)
	assert.Empty(t, fv.Tokens)
	assert.Nil(t, fv.Quantity)
}

func TestExtractWithStemming(t *testing.T) {
	e := NewExtractor(nil, WithStemming(true))
	a := e.FromText("BISCOITOS MARILAN", "")
	b := e.FromText("BISCOITO MARILAN", "")
	if !reflect.DeepEqual(a.Tokens, b.Tokens) {
		t.Errorf("stemmed tokens should match: %v vs %v", a.Tokens, b.Tokens)
	}
	assert.Contains(t, a.Tokens, "marilan", "brand tokens are not stemmed")
	assert.Contains(t, a.Tokens, "biscoit")
	assert.NotContains(t, a.Tokens, "biscoitos")
}

func TestExtractWithStemmerLanguage(t *testing.T) {
	es, err := algorithms.NewStemmer("spanish", 16)
	require.NoError(t, err)

	e := NewExtractor(nil, WithStemmer(es))
	a := e.FromText("GALLETAS MARIA 200G", "")
	b := e.FromText("GALLETA MARIA 200G", "")
	assert.Equal(t, a.Tokens, b.Tokens)

	plain := NewExtractor(nil, WithStemmer(nil)).FromText("GALLETAS MARIA 200G", "")
	assert.Contains(t, plain.Tokens, "galletas")
}

func TestExtractBatch(t *testing.T) {
	n := normalization.NewProductNormalizer(10, nil)
	e := NewExtractor(n)

	batch := n.NormalizeBatch([]string{"OMO 1KG", "", "YPE DETERGENTE 500ML"})
	out := e.ExtractBatch(batch)
	require.Len(t, out, 3)
	assert.Equal(t, "omo", out[0].Brand)
	assert.True(t, out[1].Empty)
	assert.Equal(t, "ype", out[2].Brand)
}

func TestSameContent(t *testing.T) {
	e := NewExtractor(nil)
	a := e.FromText("OMO 1KG", "")
	b := e.FromText("omo 1 kg", "")
	c := e.FromText("OMO 2KG", "")

	assert.True(t, a.SameContent(&b))
	assert.False(t, a.SameContent(&c))
}
