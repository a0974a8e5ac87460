package normalization

// Лексиконы для бразильских товарных наименований (чеки NF-e / NFC-e).
// Все ключи уже приведены к нижнему регистру и очищены от диакритики.

// unitAliases сопоставляет написания единиц каноническому сокращению
var unitAliases = map[string]string{
	"g":   "g", "gr": "g", "grs": "g", "grama": "g", "gramas": "g",
	"kg":  "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "quilo": "kg", "quilos": "kg",
	"mg":  "mg",
	"ml":  "ml", "mls": "ml",
	"l":   "l", "lt": "l", "lts": "l", "litro": "l", "litros": "l",
	"un":  "un", "und": "un", "unid": "un", "unids": "un", "unidade": "un", "unidades": "un",
	"pct": "un", "pcts": "un", "cx": "un",
	"m":   "m", "mt": "m", "mts": "m", "metro": "m", "metros": "m",
	"cm":  "cm", "mm": "mm",
}

// UnitAlias возвращает каноническую единицу для написания
func UnitAlias(token string) (string, bool) {
	u, ok := unitAliases[token]
	return u, ok
}

// abbreviations раскрытие типовых сокращений кассовых чеков
var abbreviations = map[string]string{
	"refri":   "refrigerante",
	"refrig":  "refrigerante",
	"ref":     "refrigerante",
	"bisc":    "biscoito",
	"bisct":   "biscoito",
	"choc":    "chocolate",
	"achoc":   "achocolatado",
	"sabon":   "sabonete",
	"sab":     "sabao",
	"deterg":  "detergente",
	"det":     "detergente",
	"amac":    "amaciante",
	"desinf":  "desinfetante",
	"desod":   "desodorante",
	"cr":      "creme",
	"dent":    "dental",
	"integ":   "integral",
	"trad":    "tradicional",
	"frgo":    "frango",
	"cong":    "congelado",
	"marg":    "margarina",
	"macarr":  "macarrao",
	"mac":     "macarrao",
	"requeij": "requeijao",
	"iog":     "iogurte",
	"qjo":     "queijo",
	"pres":    "presunto",
	"mort":    "mortadela",
	"farin":   "farinha",
	"feij":    "feijao",
	"az":      "azeite",
	"lt":      "lata",
	"lta":     "lata",
	"pct":     "pacote",
	"pc":      "pacote",
	"cx":      "caixa",
	"gf":      "garrafa",
	"garr":    "garrafa",
	"c":       "com",
	"pap":     "papel",
	"hig":     "higienico",
}

// brandVariant написание марки (последовательность токенов) и каноническое имя
type brandVariant struct {
	tokens    []string
	canonical string
}

// curatedBrands канонические марки и их написания в чеках
var curatedBrands = map[string][]string{
	"coca-cola":   {"coca cola", "cocacola", "coca"},
	"pepsi":       {"pepsi"},
	"antarctica":  {"guarana antarctica", "antarctica"},
	"fanta":       {"fanta"},
	"sprite":      {"sprite"},
	"kuat":        {"kuat"},
	"skol":        {"skol"},
	"brahma":      {"brahma"},
	"heineken":    {"heineken"},
	"itaipava":    {"itaipava"},
	"nestle":      {"nestle"},
	"ninho":       {"ninho"},
	"nescau":      {"nescau"},
	"toddy":       {"toddy"},
	"sadia":       {"sadia"},
	"perdigao":    {"perdigao"},
	"seara":       {"seara"},
	"aurora":      {"aurora"},
	"friboi":      {"friboi"},
	"camil":       {"camil"},
	"tio-joao":    {"tio joao"},
	"kicaldo":     {"kicaldo"},
	"uniao":       {"uniao"},
	"pilao":       {"pilao"},
	"melitta":     {"melitta"},
	"3-coracoes":  {"3 coracoes", "tres coracoes"},
	"piracanjuba": {"piracanjuba"},
	"italac":      {"italac"},
	"parmalat":    {"parmalat"},
	"itambe":      {"itambe"},
	"danone":      {"danone"},
	"vigor":       {"vigor"},
	"qualy":       {"qualy"},
	"bauducco":    {"bauducco"},
	"marilan":     {"marilan"},
	"piraque":     {"piraque"},
	"vitarella":   {"vitarella"},
	"lacta":       {"lacta"},
	"garoto":      {"garoto"},
	"heinz":       {"heinz"},
	"hellmanns":   {"hellmanns", "hellmann"},
	"quero":       {"quero"},
	"pomarola":    {"pomarola"},
	"liza":        {"liza"},
	"soya":        {"soya"},
	"maggi":       {"maggi"},
	"knorr":       {"knorr"},
	"omo":         {"omo"},
	"ype":         {"ype"},
	"brilhante":   {"brilhante"},
	"comfort":     {"comfort"},
	"downy":       {"downy"},
	"veja":        {"veja"},
	"pinho-sol":   {"pinho sol"},
	"bombril":     {"bombril"},
	"colgate":     {"colgate"},
	"oral-b":      {"oral b"},
	"dove":        {"dove"},
	"nivea":       {"nivea"},
	"rexona":      {"rexona"},
	"neve":        {"neve"},
	"personal":    {"personal"},
}

// categoryKeywords ключевые слова категорий
var categoryKeywords = map[string][]string{
	"bebidas": {
		"refrigerante", "suco", "agua", "cerveja", "vinho", "cha", "energetico",
		"isotonico", "refresco", "bebida", "nectar", "guarana", "vodka", "cachaca",
	},
	"laticinios": {
		"leite", "queijo", "iogurte", "manteiga", "requeijao", "nata", "margarina",
		"coalhada", "mussarela", "creme",
	},
	"carnes": {
		"carne", "frango", "bovina", "suina", "linguica", "salsicha", "presunto",
		"mortadela", "bacon", "peixe", "file", "picanha", "costela", "patinho", "acem",
	},
	"alimentos": {
		"arroz", "feijao", "acucar", "sal", "oleo", "farinha", "macarrao", "biscoito",
		"bolacha", "cafe", "molho", "fuba", "aveia", "granola", "achocolatado",
		"chocolate", "pao", "azeite", "tempero", "extrato", "maionese", "ketchup",
	},
	"hortifruti": {
		"banana", "maca", "laranja", "tomate", "batata", "cebola", "alho", "cenoura",
		"alface", "limao", "mamao", "abacaxi", "uva", "melancia",
	},
	"limpeza": {
		"sabao", "detergente", "amaciante", "desinfetante", "sanitaria", "alvejante",
		"limpador", "esponja", "multiuso", "lustra", "inseticida",
	},
	"higiene": {
		"sabonete", "shampoo", "condicionador", "dental", "desodorante", "higienico",
		"escova", "absorvente", "fralda", "cotonete",
	},
}

// descriptorWords слова, которые описывают вариант или упаковку, а не марку
var descriptorWords = []string{
	"lata", "garrafa", "pacote", "caixa", "pet", "sache", "pote", "frasco", "refil",
	"tipo", "integral", "light", "zero", "diet", "tradicional", "original", "natural",
	"sabor", "fatiado", "ralado", "moido", "po", "liquido", "grao", "agulhinha",
	"parboilizado", "carioca", "preto", "branco", "refinado", "cristal", "extra",
	"especial", "premium", "desnatado", "semidesnatado", "congelado", "resfriado",
	"kit", "leve", "pague", "gratis", "promocao", "com", "sem", "de", "da", "do",
	"em", "para", "e", "ou", "no", "na", "por", "ate", "marca", "tamanho", "un",
}

// categoryIndex обратный индекс ключевое слово -> категории
var categoryIndex = func() map[string][]string {
	idx := make(map[string][]string)
	for category, words := range categoryKeywords {
		for _, w := range words {
			idx[w] = append(idx[w], category)
		}
	}
	return idx
}()

// genericWords слова, которые не могут быть маркой при эвристическом поиске
var genericWords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for w := range categoryIndex {
		set[w] = struct{}{}
	}
	for _, w := range abbreviations {
		set[w] = struct{}{}
	}
	for _, w := range descriptorWords {
		set[w] = struct{}{}
	}
	return set
}()

// IsGenericWord проверяет, является ли слово товарным или описательным
func IsGenericWord(token string) bool {
	_, ok := genericWords[token]
	return ok
}

// Categories возвращает список известных категорий
func Categories() []string {
	out := make([]string, 0, len(categoryKeywords))
	for c := range categoryKeywords {
		out = append(out, c)
	}
	return out
}

// IsProductTypeWord проверяет, обозначает ли слово тип товара (ключевое слово категории)
func IsProductTypeWord(token string) bool {
	_, ok := categoryIndex[token]
	return ok
}
