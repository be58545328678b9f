package models

import (
	"time"
)

// FeedbackChoice identifies one of the canned feedback options.
type FeedbackChoice string

const (
	FeedbackLike          FeedbackChoice = "like"
	FeedbackBetterQuality FeedbackChoice = "better_quality"
	FeedbackNoQuotes      FeedbackChoice = "no_quotes"
)

// ValidFeedbackChoice reports whether the choice is one of the known options.
func ValidFeedbackChoice(c FeedbackChoice) bool {
	switch c {
	case FeedbackLike, FeedbackBetterQuality, FeedbackNoQuotes:
		return true
	}
	return false
}

// Feedback captures a user's rating of a single AI reply. Feedback rows
// are written to the durable store and never read back by the client.
type Feedback struct {
	// ID is a client-generated identifier for the submission.
	ID string `json:"id"`

	// Response is the full AI message being rated.
	Response Message `json:"response"`

	// Choice is the selected feedback option.
	Choice FeedbackChoice `json:"feedback"`

	// CreatedAt is the submission time.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the feedback submission is well-formed.
func (f *Feedback) Validate() error {
	validation := &ValidationErrors{}
	if !ValidFeedbackChoice(f.Choice) {
		validation.Add("feedback", ErrInvalidFeedbackChoice)
	}
	if !f.Response.IsAI {
		validation.AddMessage("response", "feedback targets AI responses only")
	}
	return validation.Err()
}
