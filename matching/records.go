package matching

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"productsim/normalization/algorithms"
)

// ProductRecord описание товара из внешнего источника
type ProductRecord struct {
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
	ContextID   string `json:"context_id"`
	Frequency   int    `json:"frequency"`
}

// EffectiveFrequency частота записи; значения меньше 1 считаются за 1
func (r ProductRecord) EffectiveFrequency() int {
	if r.Frequency < 1 {
		return 1
	}
	return r.Frequency
}

// SelectRecords отбрасывает записи с частотой ниже minFrequency и ограничивает
// выборку sampleSize записями (самые частые первыми, при равенстве в порядке входа).
// sampleSize <= 0 означает без ограничения. Порядок результата совпадает с порядком входа.
func SelectRecords(records []ProductRecord, minFrequency, sampleSize int) []ProductRecord {
	type indexed struct {
		idx int
		rec ProductRecord
	}

	kept := make([]indexed, 0, len(records))
	for i, r := range records {
		if r.EffectiveFrequency() < minFrequency {
			continue
		}
		kept = append(kept, indexed{idx: i, rec: r})
	}

	if sampleSize > 0 && len(kept) > sampleSize {
		sort.SliceStable(kept, func(a, b int) bool {
			return kept[a].rec.EffectiveFrequency() > kept[b].rec.EffectiveFrequency()
		})
		kept = kept[:sampleSize]
		sort.Slice(kept, func(a, b int) bool { return kept[a].idx < kept[b].idx })
	}

	out := make([]ProductRecord, len(kept))
	for i, k := range kept {
		out[i] = k.rec
	}
	return out
}

// RecordFormat формат входного файла записей
type RecordFormat string

const (
	RecordsJSON RecordFormat = "json"
	RecordsCSV  RecordFormat = "csv"
)

// ReadRecords читает записи из JSON-массива или CSV с заголовком
// description,code,context_id,frequency (code, context_id и frequency необязательны)
func ReadRecords(r io.Reader, format RecordFormat) ([]ProductRecord, error) {
	switch format {
	case RecordsJSON:
		var records []ProductRecord
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
				"failed to decode JSON records", err)
		}
		return records, nil
	case RecordsCSV:
		return readCSV(r)
	default:
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			fmt.Sprintf("unsupported record format %q", format), nil)
	}
}

func readCSV(r io.Reader) ([]ProductRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"failed to read CSV header", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	descCol, ok := columns["description"]
	if !ok {
		return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			"CSV header must contain a description column", nil).
			WithDetail("header", header)
	}

	field := func(row []string, name string) string {
		if i, ok := columns[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var records []ProductRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
				"failed to read CSV row", err).WithDetail("line", line)
		}
		if descCol >= len(row) {
			continue
		}

		rec := ProductRecord{
			Description: row[descCol],
			Code:        field(row, "code"),
			ContextID:   field(row, "context_id"),
			Frequency:   1,
		}
		if f := field(row, "frequency"); f != "" {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
					"invalid frequency", err).
					WithDetail("line", line).
					WithDetail("value", f)
			}
			rec.Frequency = n
		}
		records = append(records, rec)
	}
	return records, nil
}
