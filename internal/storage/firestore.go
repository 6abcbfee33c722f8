package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spigell/mockwise/internal/model"
)

// Firestore stores documents in the same collections the web client uses.
type Firestore struct {
	client *firestore.Client
}

type FirestoreConfig struct {
	ProjectID       string
	Database        string
	CredentialsFile string
}

func NewFirestore(ctx context.Context, cfg FirestoreConfig) (*Firestore, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	var (
		client *firestore.Client
		err    error
	)
	if db := strings.TrimSpace(cfg.Database); db != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, db, opts...)
	} else {
		client, err = firestore.NewClient(ctx, projectID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Firestore{client: client}, nil
}

func decodeDocument(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

func (f *Firestore) FindAnswers(ctx context.Context, filter AnswerFilter) ([]model.AnswerRecord, error) {
	q := f.client.Collection(answersCollection).Query
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	if filter.Question != "" {
		q = q.Where("question", "==", filter.Question)
	}
	if filter.MockIDRef != "" {
		q = q.Where("mockIdRef", "==", filter.MockIDRef)
	}

	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", answersCollection, err)
	}

	out := make([]model.AnswerRecord, 0, len(docs))
	for _, doc := range docs {
		var rec model.AnswerRecord
		if err := decodeDocument(doc.Data(), &rec); err != nil {
			return nil, fmt.Errorf("decode answer %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		out = append(out, rec)
	}
	return out, nil
}

func (f *Firestore) InsertAnswer(ctx context.Context, rec model.AnswerRecord) (model.AnswerRecord, error) {
	ref, wr, err := f.client.Collection(answersCollection).Add(ctx, map[string]any{
		"mockIdRef":   rec.MockIDRef,
		"question":    rec.Question,
		"correct_ans": rec.CorrectAns,
		"user_ans":    rec.UserAns,
		"feedback":    rec.Feedback,
		"rating":      rec.Rating,
		"userId":      rec.UserID,
		"createdAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return model.AnswerRecord{}, fmt.Errorf("add to %s: %w", answersCollection, err)
	}

	rec.ID = ref.ID
	rec.CreatedAt = wr.UpdateTime
	return rec, nil
}

func questionsData(questions []model.Question) []map[string]any {
	out := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		out = append(out, map[string]any{"id": q.ID, "question": q.Question, "answer": q.Answer})
	}
	return out
}

func (f *Firestore) CreateInterview(ctx context.Context, in model.Interview) (model.Interview, error) {
	ref, wr, err := f.client.Collection(interviewsCollection).Add(ctx, map[string]any{
		"userId":      in.UserID,
		"position":    in.Position,
		"description": in.Description,
		"experience":  in.Experience,
		"techStack":   in.TechStack,
		"questions":   questionsData(in.Questions),
		"createdAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return model.Interview{}, fmt.Errorf("add to %s: %w", interviewsCollection, err)
	}

	in.ID = ref.ID
	in.CreatedAt = wr.UpdateTime
	in.UpdatedAt = time.Time{}
	return in, nil
}

func (f *Firestore) GetInterview(ctx context.Context, id string) (model.Interview, error) {
	doc, err := f.client.Collection(interviewsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.Interview{}, fmt.Errorf("interview %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("get interview: %w", err)
	}

	var in model.Interview
	if err := decodeDocument(doc.Data(), &in); err != nil {
		return model.Interview{}, fmt.Errorf("decode interview %s: %w", id, err)
	}
	in.ID = doc.Ref.ID
	return in, nil
}

func (f *Firestore) UpdateInterview(ctx context.Context, in model.Interview) (model.Interview, error) {
	_, err := f.client.Collection(interviewsCollection).Doc(in.ID).Update(ctx, []firestore.Update{
		{Path: "position", Value: in.Position},
		{Path: "description", Value: in.Description},
		{Path: "experience", Value: in.Experience},
		{Path: "techStack", Value: in.TechStack},
		{Path: "questions", Value: questionsData(in.Questions)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return model.Interview{}, fmt.Errorf("interview %q: %w", in.ID, ErrNotFound)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("update interview: %w", err)
	}

	return f.GetInterview(ctx, in.ID)
}

func (f *Firestore) DeleteInterview(ctx context.Context, id string) error {
	_, err := f.client.Collection(interviewsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("interview %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	return nil
}

func (f *Firestore) ListInterviews(ctx context.Context, userID string) ([]model.Interview, error) {
	docs, err := f.client.Collection(interviewsCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", interviewsCollection, err)
	}

	out := make([]model.Interview, 0, len(docs))
	for _, doc := range docs {
		var in model.Interview
		if err := decodeDocument(doc.Data(), &in); err != nil {
			return nil, fmt.Errorf("decode interview %s: %w", doc.Ref.ID, err)
		}
		in.ID = doc.Ref.ID
		out = append(out, in)
	}
	return out, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
