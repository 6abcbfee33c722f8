package model

import "time"

// Question is a single generated interview question with its model answer.
type Question struct {
	ID       string `json:"id" mapstructure:"id" yaml:"id"`
	Question string `json:"question" mapstructure:"question" yaml:"question"`
	Answer   string `json:"answer" mapstructure:"answer" yaml:"answer"`
}

// ScoringResult is the generative service's grade of one answer.
// Ratings is expected in 0..10 but the range is not enforced.
type ScoringResult struct {
	Ratings  float64 `json:"ratings"`
	Feedback string  `json:"feedback"`
}

// JobProfile describes the position questions are generated for.
type JobProfile struct {
	Position    string `json:"position" mapstructure:"position" yaml:"position"`
	Description string `json:"description" mapstructure:"description" yaml:"description"`
	Experience  int    `json:"experience" mapstructure:"experience" yaml:"experience"`
	TechStack   string `json:"techStack" mapstructure:"techStack" yaml:"tech-stack"`
}

// Interview is a stored mock interview owned by a user.
type Interview struct {
	ID          string     `json:"id" mapstructure:"-" yaml:"id"`
	UserID      string     `json:"userId" mapstructure:"userId" yaml:"user-id"`
	Position    string     `json:"position" mapstructure:"position" yaml:"position"`
	Description string     `json:"description" mapstructure:"description" yaml:"description"`
	Experience  int        `json:"experience" mapstructure:"experience" yaml:"experience"`
	TechStack   string     `json:"techStack" mapstructure:"techStack" yaml:"tech-stack"`
	Questions   []Question `json:"questions" mapstructure:"questions" yaml:"questions"`
	CreatedAt   time.Time  `json:"createdAt" mapstructure:"createdAt" yaml:"-"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty" mapstructure:"updatedAt" yaml:"-"`
}

// Profile returns the job profile the interview was generated from.
func (i *Interview) Profile() JobProfile {
	return JobProfile{
		Position:    i.Position,
		Description: i.Description,
		Experience:  i.Experience,
		TechStack:   i.TechStack,
	}
}

// AnswerRecord is the persisted, one-per-(user, question) result of an answer.
// Field names follow the stored document layout.
type AnswerRecord struct {
	ID         string    `json:"id" mapstructure:"-"`
	MockIDRef  string    `json:"mockIdRef" mapstructure:"mockIdRef"`
	Question   string    `json:"question" mapstructure:"question"`
	CorrectAns string    `json:"correct_ans" mapstructure:"correct_ans"`
	UserAns    string    `json:"user_ans" mapstructure:"user_ans"`
	Feedback   string    `json:"feedback" mapstructure:"feedback"`
	Rating     float64   `json:"rating" mapstructure:"rating"`
	UserID     string    `json:"userId" mapstructure:"userId"`
	CreatedAt  time.Time `json:"createdAt" mapstructure:"createdAt"`
}
