// Package questionbank reads question bank spreadsheets (.csv or .xlsx)
// into question entities.
package questionbank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// questionNamespace seeds the deterministic UUIDs of rows without one
var questionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://explicolivais.pt/questions"))

// column aliases, lower case
var aliases = map[string]string{
	"uuid":               "uuid",
	"question_number":    "question_number",
	"numero":             "question_number",
	"ano":                "ano",
	"year":               "ano",
	"num_tema":           "num_tema",
	"theme_number":       "num_tema",
	"nome_tema":          "nome_tema",
	"theme_name":         "nome_tema",
	"num_aula":           "num_aula",
	"lesson_number":      "num_aula",
	"aula_title":         "aula_title",
	"lesson_title":       "aula_title",
	"imagem":             "imagem",
	"image":              "imagem",
	"titulo":             "titulo",
	"title":              "titulo",
	"nota":               "nota",
	"note":               "nota",
	"formatting":         "formatting",
	"type_of_problem":    "type_of_problem",
	"is_multiple_choice": "is_multiple_choice",
	"multiple_choice":    "is_multiple_choice",
	"is_composed":        "is_composed",
	"composed_ordinal":   "composed_ordinal",
	"possible_answers":   "possible_answers",
	"options":            "possible_answers",
	"scoring_system":     "scoring_system",
	"scoring":            "scoring_system",
}

var required = []string{"question_number", "ano", "possible_answers", "scoring_system"}

// RowError points at a bad line of an input file
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadFile reads a .csv or .xlsx question bank
func ReadFile(path string) ([]entity.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported question bank format: %s", path)
	}
}

// ReadCSV reads a comma separated question bank with a header row
func ReadCSV(r io.Reader) ([]entity.Question, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return fromRecords(records)
}

// ReadXLSX reads the first sheet of a workbook with a header row
func ReadXLSX(r io.Reader) ([]entity.Question, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) ([]entity.Question, error) {
	if len(records) == 0 {
		return nil, nil
	}

	index := map[string]int{}
	for i, name := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := aliases[key]; ok {
			index[canonical] = i
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	out := make([]entity.Question, 0, len(records)-1)
	for n, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		q, err := fromRecord(index, rec)
		if err != nil {
			// header is row 1
			return nil, &RowError{Row: n + 2, Err: err}
		}
		out = append(out, q)
	}
	return out, nil
}

func fromRecord(index map[string]int, rec []string) (entity.Question, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	number, err := strconv.Atoi(get("question_number"))
	if err != nil || number <= 0 {
		return entity.Question{}, fmt.Errorf("invalid question_number %q", get("question_number"))
	}
	year, err := strconv.Atoi(get("ano"))
	if err != nil || year <= 0 {
		return entity.Question{}, fmt.Errorf("invalid ano %q", get("ano"))
	}
	options, scoring := get("possible_answers"), get("scoring_system")
	if options == "" || scoring == "" {
		return entity.Question{}, fmt.Errorf("question %d has no options or scoring", number)
	}

	q := entity.Question{
		UUID:            get("uuid"),
		Number:          number,
		Year:            year,
		ThemeNumber:     atoiOrZero(get("num_tema")),
		ThemeName:       get("nome_tema"),
		LessonNumber:    atoiOrZero(get("num_aula")),
		LessonTitle:     get("aula_title"),
		Image:           get("imagem"),
		Title:           get("titulo"),
		Note:            get("nota"),
		Formatting:      strings.ToLower(get("formatting")),
		TypeOfProblem:   get("type_of_problem"),
		MultipleChoice:  truthy(get("is_multiple_choice")),
		Composed:        truthy(get("is_composed")),
		ComposedOrdinal: atoiOrZero(get("composed_ordinal")),
		PossibleAnswers: options,
		ScoringSystem:   scoring,
	}
	if q.UUID == "" {
		q.UUID = uuid.NewSHA1(questionNamespace, []byte(strconv.Itoa(number))).String()
	}
	if q.Formatting != entity.FormattingLatex {
		q.Formatting = entity.FormattingText
	}
	return q, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "sim", "y", "s":
		return true
	}
	return false
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
