package entity

import "time"

// QuizHistory is a scored quiz attempt kept on a user's profile.
// Answers are keyed by question row id.
type QuizHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        string    `gorm:"column:q_uuid;size:36;not null;uniqueIndex" json:"uuid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Score       float64   `gorm:"column:q_score;not null;default:0" json:"score"`
	Percentage  float64   `gorm:"column:q_percentage;not null;default:0" json:"percentage"`
	Year        int       `gorm:"column:q_year;not null" json:"year"`
	YearPercent int       `gorm:"column:q_percent;not null" json:"current_year_percent"`
	Answers     AnswerMap `gorm:"column:q_resp;type:text;not null" json:"answers"`
	NCorrect    int       `gorm:"not null;default:0" json:"n_correct"`
	NWrong      int       `gorm:"not null;default:0" json:"n_wrong"`
	NSkip       int       `gorm:"not null;default:0" json:"n_skip"`
	StartedAt   time.Time `gorm:"column:start_ts;not null" json:"started_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName sets the GORM table name
func (QuizHistory) TableName() string {
	return "quiz_history"
}

// TotalQuestions is the number of questions in the attempt
func (h *QuizHistory) TotalQuestions() int {
	return h.NCorrect + h.NWrong + h.NSkip
}
