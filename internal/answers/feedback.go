package answers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/storage"
)

// Report is everything a user answered in one interview.
type Report struct {
	InterviewID string               `json:"interviewId"`
	Answers     []model.AnswerRecord `json:"answers"`
	// Overall is the mean rating with one decimal, "0.0" when nothing was answered.
	Overall string `json:"overall"`
}

// Feedback loads the user's answers for an interview.
func Feedback(ctx context.Context, store storage.AnswerStore, userID, interviewID string) (Report, error) {
	records, err := store.FindAnswers(ctx, storage.AnswerFilter{UserID: userID, MockIDRef: interviewID})
	if err != nil {
		return Report{}, fmt.Errorf("find answers: %w", err)
	}

	return Report{
		InterviewID: interviewID,
		Answers:     records,
		Overall:     OverallRating(records),
	}, nil
}

// OverallRating averages the ratings of records.
func OverallRating(records []model.AnswerRecord) string {
	if len(records) == 0 {
		return "0.0"
	}

	var total float64
	for _, rec := range records {
		total += rec.Rating
	}
	return strconv.FormatFloat(total/float64(len(records)), 'f', 1, 64)
}
