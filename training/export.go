package training

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"productsim/normalization/algorithms"
)

// ExportFormat формат выгрузки корпуса
type ExportFormat string

const (
	FormatJSONL ExportFormat = "jsonl"
	FormatCSV   ExportFormat = "csv"
	FormatXLSX  ExportFormat = "xlsx"
)

// ParseExportFormat разбирает имя формата
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSONL, FormatCSV, FormatXLSX:
		return f, nil
	case "json", "ndjson":
		return FormatJSONL, nil
	default:
		return "", algorithms.NewSimilarityError(algorithms.ErrCodeInputValidation,
			fmt.Sprintf("unsupported export format %q", s), nil)
	}
}

var csvHeader = []string{
	"id", "text1", "text2", "user_says_similar", "confidence",
	"lexical", "edit", "structural", "embedding", "heuristic", "final",
	"session_id", "created_at",
}

func exportError(msg string, err error) error {
	return algorithms.NewSimilarityError(algorithms.ErrCodeExportFailed, msg, err)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Export записывает корпус примеров в JSON Lines или CSV
func (t *Trainer) Export(w io.Writer, format ExportFormat) error {
	examples := t.Examples()
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for i := range examples {
			if err := enc.Encode(&examples[i]); err != nil {
				return exportError("failed to write JSONL", err)
			}
		}
		return nil

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return exportError("failed to write CSV header", err)
		}
		for _, ex := range examples {
			row := []string{
				ex.ID,
				ex.Text1,
				ex.Text2,
				strconv.FormatBool(ex.UserSaysSimilar),
				formatFloat(ex.Confidence),
				formatFloat(ex.Scores.Lexical),
				formatFloat(ex.Scores.Edit),
				formatFloat(ex.Scores.Structural),
				formatFloat(ex.Scores.Embedding),
				formatFloat(ex.Scores.Heuristic),
				formatFloat(ex.Scores.Final),
				ex.SessionID,
				ex.CreatedAt.Format(time.RFC3339),
			}
			if err := cw.Write(row); err != nil {
				return exportError("failed to write CSV row", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return exportError("failed to flush CSV", err)
		}
		return nil

	default:
		return exportError(fmt.Sprintf("format %q is not supported for streaming export", format), nil)
	}
}

// ExportXLSX сохраняет корпус и историю моделей в Excel
func (t *Trainer) ExportXLSX(filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Examples"
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

	writeHeader := func(sheet string, headers []string) {
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, header)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	writeHeader(sheetName, csvHeader)
	for i, ex := range t.Examples() {
		row := i + 2
		values := []interface{}{
			ex.ID, ex.Text1, ex.Text2, ex.UserSaysSimilar, ex.Confidence,
			ex.Scores.Lexical, ex.Scores.Edit, ex.Scores.Structural, ex.Scores.Embedding,
			ex.Scores.Heuristic, ex.Scores.Final, ex.SessionID, ex.CreatedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}
	for i := range csvHeader {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 12.0
		if i == 1 || i == 2 {
			width = 40
		}
		f.SetColWidth(sheetName, col, col, width)
	}

	models := "Models"
	if _, err := f.NewSheet(models); err != nil {
		return exportError("failed to create models sheet", err)
	}
	writeHeader(models, []string{"Version", "Type", "Accuracy", "Precision", "Recall", "F1", "AUC", "CV F1", "Train", "Validation", "Trained At"})
	for i, r := range t.History() {
		row := i + 2
		values := []interface{}{
			r.ModelVersion, string(r.ModelType), r.Accuracy, r.Precision, r.Recall, r.F1, r.AUC,
			r.MeanCVF1, r.TrainingExamples, r.ValidationExamples, r.Timestamp,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(models, cell, v)
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return exportError("failed to save file", err)
	}
	t.logger.Info("training corpus exported", "file", filename, "examples", t.ExampleCount())
	return nil
}

// ImportJSONL читает примеры в формате JSON Lines и добавляет их в корпус
func (t *Trainer) ImportJSONL(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var examples []TrainingExample
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var ex TrainingExample
		if err := json.Unmarshal([]byte(text), &ex); err != nil {
			return 0, algorithms.NewSimilarityError(algorithms.ErrCodeImportFailed,
				"failed to decode training example", err).
				WithDetail("line", line)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return 0, algorithms.NewSimilarityError(algorithms.ErrCodeImportFailed,
			"failed to read training examples", err)
	}

	added, err := t.AddExamples(examples)
	if err != nil {
		return added, algorithms.NewSimilarityError(algorithms.ErrCodeImportFailed,
			"failed to import training examples", err)
	}
	t.logger.Info("training examples imported", "read", len(examples), "added", added)
	return added, nil
}
