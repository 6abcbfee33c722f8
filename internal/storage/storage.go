// Package storage persists interviews and answer records. The workflow only
// needs equality-filtered reads and single-document inserts for answers.
package storage

import (
	"context"
	"errors"

	"github.com/spigell/mockwise/internal/model"
)

const (
	answersCollection    = "userAnswers"
	interviewsCollection = "interviews"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by backends that enforce (userId, question)
	// uniqueness at write time.
	ErrDuplicate = errors.New("duplicate answer")
)

// AnswerFilter selects answer records by exact match. Empty fields are ignored.
type AnswerFilter struct {
	UserID    string
	Question  string
	MockIDRef string
}

func (f AnswerFilter) matches(rec *model.AnswerRecord) bool {
	if f.UserID != "" && rec.UserID != f.UserID {
		return false
	}
	if f.Question != "" && rec.Question != f.Question {
		return false
	}
	if f.MockIDRef != "" && rec.MockIDRef != f.MockIDRef {
		return false
	}
	return true
}

type AnswerStore interface {
	FindAnswers(ctx context.Context, filter AnswerFilter) ([]model.AnswerRecord, error)
	// InsertAnswer stores rec with a store-assigned id and creation time.
	InsertAnswer(ctx context.Context, rec model.AnswerRecord) (model.AnswerRecord, error)
}

type InterviewStore interface {
	CreateInterview(ctx context.Context, in model.Interview) (model.Interview, error)
	GetInterview(ctx context.Context, id string) (model.Interview, error)
	UpdateInterview(ctx context.Context, in model.Interview) (model.Interview, error)
	DeleteInterview(ctx context.Context, id string) error
	ListInterviews(ctx context.Context, userID string) ([]model.Interview, error)
}

// Store is everything a backend provides.
type Store interface {
	AnswerStore
	InterviewStore
	Close() error
}
