package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Question text formats
const (
	FormattingText  = "text"
	FormattingLatex = "latex"
)

// AnswerMap maps a question key to the selected option-index strings.
// It is stored as a JSON column.
type AnswerMap map[string][]string

// Scan implements sql.Scanner for AnswerMap
func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnswerMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to unmarshal JSON answers: expected []byte or string")
	}

	if len(data) == 0 {
		*m = AnswerMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Value implements driver.Valuer for AnswerMap
func (m AnswerMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Question is one exercise of the question bank.
// PossibleAnswers and ScoringSystem hold the raw comma-delimited columns.
type Question struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UUID            string    `gorm:"size:36;not null;uniqueIndex" json:"uuid"`
	Number          int       `gorm:"column:question_number;not null;uniqueIndex" json:"question_number"`
	Year            int       `gorm:"column:ano;not null;index" json:"year"`
	ThemeNumber     int       `gorm:"column:num_tema;not null;default:0" json:"theme_number"`
	ThemeName       string    `gorm:"column:nome_tema;size:255;not null;default:''" json:"theme_name"`
	LessonNumber    int       `gorm:"column:num_aula;not null;default:0" json:"lesson_number"`
	LessonTitle     string    `gorm:"column:aula_title;size:255;not null;default:''" json:"lesson_title"`
	Image           string    `gorm:"column:imagem;size:255;not null;default:''" json:"image"`
	Title           string    `gorm:"column:titulo;size:500;not null;default:''" json:"title"`
	Note            string    `gorm:"column:nota;size:1000;not null;default:''" json:"note"`
	Formatting      string    `gorm:"size:10;not null;default:'text'" json:"formatting"`
	TypeOfProblem   string    `gorm:"size:50;not null;default:''" json:"type_of_problem"`
	MultipleChoice  bool      `gorm:"column:is_multiple_choice;not null;default:false" json:"is_multiple_choice"`
	Composed        bool      `gorm:"column:is_composed;not null;default:false" json:"is_composed"`
	ComposedOrdinal int       `gorm:"column:composed_ordinal;not null;default:0" json:"composed_ordinal"`
	PossibleAnswers string    `gorm:"type:text;not null" json:"-"`
	ScoringSystem   string    `gorm:"size:500;not null" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the GORM table name
func (Question) TableName() string {
	return "questions"
}

// ImageRelPath maps the stored image name to its path under the asset root,
// e.g. "ano5/aula106/e1.jpg" -> "anos/ano5/tema1/aula106/e1.png".
func (q *Question) ImageRelPath() string {
	if q.Image == "" {
		return ""
	}
	rel := strings.Replace(q.Image, "ano", "anos/ano", 1)
	rel = strings.Replace(rel, "aula", fmt.Sprintf("tema%d/aula", q.ThemeNumber), 1)
	return strings.Replace(rel, ".jpg", ".png", 1)
}

// Path returns the human readable location of the question in the curriculum
func (q *Question) Path() string {
	return fmt.Sprintf("%d/%s/%s / aula%d / %s", q.Year, q.ThemeName, q.LessonTitle, q.LessonNumber, q.UUID)
}
