package scoring

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Scorer grades quiz attempts. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a Scorer. A nil logger disables diagnostics.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Score grades answers against questions in presentation order.
// Malformed answers and scoring values are dropped, never returned as errors.
func (s *Scorer) Score(questions []Question, answers Answers) *Result {
	res := &Result{
		TotalQuestions:  len(questions),
		QuestionResults: make([]QuestionResult, 0, len(questions)),
	}

	var total, maxPoints float64
	for i, q := range questions {
		ua := answers[strconv.Itoa(i)]
		qr := QuestionResult{Question: q, UserAnswer: ua}
		if qr.UserAnswer == nil {
			qr.UserAnswer = []string{}
		}

		values, consistent := s.scoringValues(q)
		if consistent {
			maxPoints += positiveSum(values)
		}

		if IsSkip(ua) {
			qr.ResultType = ResultSkipped
			res.NSkip++
			res.QuestionResults = append(res.QuestionResults, qr)
			continue
		}

		var points float64
		if consistent {
			points = s.selectedPoints(q, values, ua)
		}
		if points > 0 {
			qr.ResultType = ResultCorrect
			res.NCorrect++
		} else {
			qr.ResultType = ResultWrong
			res.NWrong++
		}
		qr.Points = round1(points)
		total += points
		res.QuestionResults = append(res.QuestionResults, qr)
	}

	res.TotalPoints = round1(total)
	res.MaxPossiblePoints = round1(maxPoints)
	if maxPoints > 0 {
		res.Percentage = round1(total / maxPoints * 100)
	}
	return res
}

// scoringValues converts the scoring column to numbers. The second return is
// false when options and scoring are not parallel; such a question scores 0.
func (s *Scorer) scoringValues(q Question) ([]float64, bool) {
	if len(q.Options) != len(q.Scoring) {
		s.logger.Warn("Question options and scoring length differ",
			zap.Int("question_number", q.Number),
			zap.Int("options", len(q.Options)),
			zap.Int("scoring", len(q.Scoring)),
		)
		return nil, false
	}
	values := make([]float64, len(q.Scoring))
	for i, raw := range q.Scoring {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			s.logger.Debug("Unparsable scoring value counted as 0",
				zap.Int("question_number", q.Number),
				zap.String("value", raw),
			)
			continue
		}
		values[i] = v
	}
	return values, true
}

func (s *Scorer) selectedPoints(q Question, values []float64, selected []string) float64 {
	var points float64
	for _, tok := range selected {
		idx, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || idx < 0 || idx >= len(values) {
			s.logger.Debug("Dropping invalid answer index",
				zap.Int("question_number", q.Number),
				zap.String("index", tok),
			)
			continue
		}
		points += values[idx]
	}
	return points
}

func positiveSum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	return sum
}

// round1 rounds to one decimal from the exact binary value, ties to even,
// so 6.25 gives 6.2 and 0.15 (stored as 0.1499...) gives 0.1.
func round1(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if v == 0 {
		return 0
	}
	return v
}
