package dto

// StartQuizRequest selects the academic year of a new attempt.
// Year 0 uses the configured default.
type StartQuizRequest struct {
	Year int `json:"year" binding:"omitempty,min=1,max=12"`
}

// StartQuizResponse describes the attempt just drawn
type StartQuizResponse struct {
	TotalQuestions int `json:"total_questions"`
	Year           int `json:"year"`
	Next           int `json:"next"`
}

// SubmitAnswerRequest stores the selected option indices of one question
type SubmitAnswerRequest struct {
	Index    *int     `json:"index" binding:"required,min=0"`
	Selected []string `json:"selected"`
}

// NavigateRequest moves through the attempt. Selected, when present, is
// saved for Current before moving.
type NavigateRequest struct {
	Action   string   `json:"action" binding:"required,oneof=next previous finish"`
	Current  int      `json:"current" binding:"min=0"`
	Selected []string `json:"selected"`
}
