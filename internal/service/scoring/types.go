package scoring

import (
	"strings"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

// Result type tags used in QuestionResult.ResultType
const (
	ResultCorrect = "correct"
	ResultWrong   = "wrong"
	ResultSkipped = "skipped"
)

// SkipMarker is the option index meaning "I don't know"
const SkipMarker = "0"

// Answers maps a 0-based presentation index (as a string) to the selected
// option-index strings. An empty list or ["0"] means the question was skipped.
type Answers map[string][]string

// Question is the parsed, read-only view of a stored question used for scoring
type Question struct {
	ID         uint     `json:"id"`
	Number     int      `json:"number"`
	Year       int      `json:"year"`
	Title      string   `json:"title"`
	Note       string   `json:"note,omitempty"`
	ImagePath  string   `json:"image_path,omitempty"`
	Formatting string   `json:"formatting"`
	Multiple   bool     `json:"multiple_choice"`
	Options    []string `json:"options"`
	Scoring    []string `json:"scoring"`

	// Composed questions are parts of a multi-part exercise; ComposedOrdinal
	// is the part's position in it.
	Composed        bool `json:"is_composed"`
	ComposedOrdinal int  `json:"composed_ordinal"`
}

// NewQuestion parses the delimited option and scoring fields of a stored question
func NewQuestion(q *entity.Question) Question {
	options := ParseOptions(q.PossibleAnswers)
	if strings.EqualFold(q.Formatting, entity.FormattingLatex) {
		for i, opt := range options {
			options[i] = strings.ReplaceAll(opt, `\\`, `\`)
		}
	}
	return Question{
		ID:         q.ID,
		Number:     q.Number,
		Year:       q.Year,
		Title:      q.Title,
		Note:       q.Note,
		ImagePath:  q.ImageRelPath(),
		Formatting: q.Formatting,
		Multiple:   q.MultipleChoice,
		Options:    options,
		Scoring:    ParseScoring(q.ScoringSystem),

		Composed:        q.Composed,
		ComposedOrdinal: q.ComposedOrdinal,
	}
}

// QuestionResult is the per-question scoring breakdown
type QuestionResult struct {
	Question   Question `json:"question"`
	UserAnswer []string `json:"user_answer"`
	Points     float64  `json:"points"`
	ResultType string   `json:"result_type"`
}

// Result is the outcome of scoring one quiz attempt
type Result struct {
	TotalPoints       float64          `json:"total_points"`
	Percentage        float64          `json:"percentage"`
	NCorrect          int              `json:"n_correct"`
	NWrong            int              `json:"n_wrong"`
	NSkip             int              `json:"n_skip"`
	TotalQuestions    int              `json:"total_questions"`
	MaxPossiblePoints float64          `json:"max_possible_points"`
	QuestionResults   []QuestionResult `json:"question_results"`
}

// Counts returns the correct, wrong and skipped tallies
func (r *Result) Counts() (correct, wrong, skip int) {
	return r.NCorrect, r.NWrong, r.NSkip
}

// PointsTotal returns the rounded total points
func (r *Result) PointsTotal() float64 {
	return r.TotalPoints
}

// IsSkip reports whether a selection counts as "not answered"
func IsSkip(selected []string) bool {
	return len(selected) == 0 || (len(selected) == 1 && selected[0] == SkipMarker)
}
