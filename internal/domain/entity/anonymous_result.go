package entity

import "time"

// AnonymousTimestampLayout is the second-precision local time format of stored results
const AnonymousTimestampLayout = "2006-01-02 15:04:05"

// AnonymousResult is a quiz attempt taken without signing in.
// Answers are keyed by question number, not by presentation index.
type AnonymousResult struct {
	ID        string    `json:"quiz_uuid"`
	CreatedAt time.Time `json:"timestamp"`
	Answers   AnswerMap `json:"answers"`
}

// AnonymousResultSummary is the id/timestamp pair returned by listings
type AnonymousResultSummary struct {
	ID        string `json:"quiz_uuid"`
	Timestamp string `json:"timestamp"`
}
