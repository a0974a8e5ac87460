package normalization

import (
	"reflect"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

func TestNormalize(t *testing.T) {
	n := NewProductNormalizer(100, nil)

	tests := []struct {
		name       string
		input      string
		text       string
		brand      string
		categories []string
	}{
		{
			name:       "brand with spaces",
			input:      "COCA COLA LATA 350ML",
			text:       "coca-cola lata 350ml",
			brand:      "coca-cola",
			categories: nil,
		},
		{
			name:       "hyphenated brand and category",
			input:      "COCA-COLA REFRIGERANTE LATA 350ML",
			text:       "coca-cola refrigerante lata 350ml",
			brand:      "coca-cola",
			categories: []string{"bebidas"},
		},
		{
			name:       "glued type number",
			input:      "ARROZ CAMIL AGULHINHA TIPO1 5000G",
			text:       "arroz camil agulhinha tipo 1 5000g",
			brand:      "camil",
			categories: []string{"alimentos"},
		},
		{
			name:       "spaced unit and decimal comma",
			input:      "Refri Guaraná 0,35 L",
			text:       "refrigerante guarana 0.35l",
			brand:      "",
			categories: []string{"bebidas"},
		},
		{
			name:       "diacritics and abbreviation",
			input:      "SABÃO EM PÓ OMO 1KG",
			text:       "sabao em po omo 1kg",
			brand:      "omo",
			categories: []string{"limpeza"},
		},
		{
			name:       "standalone lt expands to lata",
			input:      "CERVEJA SKOL LT 350 ML",
			text:       "cerveja skol lata 350ml",
			brand:      "skol",
			categories: []string{"bebidas"},
		},
		{
			name:       "multipack",
			input:      "BISC TRAKINAS 2 X 200G",
			text:       "biscoito trakinas 2x200g",
			brand:      "",
			categories: []string{"alimentos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			if got.Empty {
				t.Fatalf("Normalize(%q) unexpectedly empty", tt.input)
			}
			if got.Text != tt.text {
				t.Errorf("Normalize(%q).Text = %q, expected %q", tt.input, got.Text, tt.text)
			}
			if got.Brand != tt.brand {
				t.Errorf("Normalize(%q).Brand = %q, expected %q", tt.input, got.Brand, tt.brand)
			}
			if !reflect.DeepEqual(got.Categories, tt.categories) {
				t.Errorf("Normalize(%q).Categories = %v, expected %v", tt.input, got.Categories, tt.categories)
			}
			if got.Original != tt.input {
				t.Errorf("Original must be preserved, got %q", got.Original)
			}
		})
	}
}

func TestNormalizeEmptyAndInvalid(t *testing.T) {
	n := NewProductNormalizer(10, nil)

	for _, input := range []string{"", "   ", "\t\n", "---", string([]byte{0xff, 0xfe})} {
		got := n.Normalize(input)
		if !got.Empty {
			t.Errorf("Normalize(%q) should be empty, got %+v", input, got)
		}
		if got.Text != "" || len(got.Tokens) != 0 {
			t.Errorf("Empty result must have no text, got %+v", got)
		}
	}
}

func TestNormalizeDeterministicAndCached(t *testing.T) {
	n := NewProductNormalizer(10, nil)

	first := n.Normalize("LEITE PIRACANJUBA INTEGRAL 1L")
	second := n.Normalize("LEITE PIRACANJUBA INTEGRAL 1L")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize must be deterministic: %+v vs %+v", first, second)
	}

	stats := n.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}

	fresh := NewProductNormalizer(10, nil)
	if !reflect.DeepEqual(fresh.Normalize("LEITE PIRACANJUBA INTEGRAL 1L"), first) {
		t.Error("Fresh normalizer must produce the same result")
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	faker := gofakeit.New(7)
	inputs := make([]string, 50)
	for i := range inputs {
		inputs[i] = faker.RandomString([]string{"ARROZ", "Feijão", "LEITE", "Café"}) + " " +
			faker.RandomString([]string{"CAMIL", "Pilão", "ITALAC", "Marca Própria"}) + " " +
			faker.Numerify("###") + faker.RandomString([]string{"G", " KG", "ml", ""})
	}

	n := NewProductNormalizer(16, nil)
	expected := NewProductNormalizer(0, nil).NormalizeBatch(inputs)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				if got := n.Normalize(in); !reflect.DeepEqual(got, expected[i]) {
					t.Errorf("concurrent Normalize(%q) = %+v, expected %+v", in, got, expected[i])
				}
			}
		}()
	}
	wg.Wait()
}

func TestAddBrand(t *testing.T) {
	n := NewProductNormalizer(10, nil)
	before := n.Normalize("BISCOITO TRAKINAS CHOCOLATE")
	if before.Brand != "" {
		t.Fatalf("Expected no brand before AddBrand, got %q", before.Brand)
	}

	n.AddBrand("Trakinas")
	after := n.Normalize("BISCOITO TRAKINAS CHOCOLATE")
	if after.Brand != "trakinas" {
		t.Errorf("Expected brand trakinas after AddBrand, got %q", after.Brand)
	}
}

func TestLearnBrands(t *testing.T) {
	n := NewProductNormalizer(10, nil)
	corpus := []string{
		"ARROZ BROTO LEGAL TIPO 1 5KG",
		"FEIJAO BROTO CARIOCA 1KG",
		"ACUCAR BROTO REFINADO 1KG",
		"FEIJAO PRETO KICALDO 1KG",
		"MACARRAO RENATA ESPAGUETE 500G",
		"ARROZ CAMIL TIPO 1 5KG",
	}

	candidates := n.DiscoverBrands(corpus, 3)
	if len(candidates) != 1 || candidates[0].Token != "broto" || candidates[0].Occurrences != 3 {
		t.Fatalf("Expected broto x3, got %+v", candidates)
	}

	learned := n.LearnBrands(corpus, 3)
	if !reflect.DeepEqual(learned, []string{"broto"}) {
		t.Errorf("Expected [broto], got %v", learned)
	}
	if got := n.Normalize("FEIJAO BROTO CARIOCA 1KG").Brand; got != "broto" {
		t.Errorf("Expected learned brand broto, got %q", got)
	}
	if !reflect.DeepEqual(n.LearnedBrands(), []string{"broto"}) {
		t.Errorf("Unexpected learned brands %v", n.LearnedBrands())
	}
	if n.Stats().LearnedBrands != 1 {
		t.Errorf("Expected 1 learned brand in stats, got %d", n.Stats().LearnedBrands)
	}
}
