package service

// QuizConfig describes how the question set of an attempt was drawn
type QuizConfig struct {
	Year               int `json:"year"`
	NumExercises       int `json:"num_exercises"`
	CurrentYearPercent int `json:"current_year_percent"`
}
