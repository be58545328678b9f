// Package models defines the core data types for the HUMINT client.
package models

import (
	"strings"
)

// Confidence grades how well-supported an AI reply is.
type Confidence string

const (
	ConfidenceNone   Confidence = ""
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence normalizes a wire-level confidence value.
// Unknown values map to ConfidenceNone rather than failing, because the
// backend contract does not guarantee the field.
func ParseConfidence(raw string) Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return ConfidenceLow
	case "medium", "med":
		return ConfidenceMedium
	case "high":
		return ConfidenceHigh
	default:
		return ConfidenceNone
	}
}

// ReferenceType classifies the background of a cited expert.
type ReferenceType string

const (
	ReferenceTypeIntern       ReferenceType = "intern"
	ReferenceTypeProfessional ReferenceType = "professional"
	ReferenceTypeOther        ReferenceType = "other"
)

// Reference is an expert citation attached to an AI reply.
// References are read-only and sourced entirely from backend responses.
type Reference struct {
	// Quote is the cited passage.
	Quote string `json:"quote"`

	// Source names where the quote came from.
	Source string `json:"source"`

	// Role is the expert's role at the time of the quote.
	Role string `json:"role"`

	// Company is the expert's employer, if known.
	Company string `json:"company,omitempty"`

	// University is the expert's school, if known.
	University string `json:"university,omitempty"`

	// Type classifies the expert (intern, professional, other).
	Type ReferenceType `json:"type"`

	// LinkedInProfile is an optional profile URL.
	LinkedInProfile string `json:"linkedinProfile,omitempty"`

	// WSOLink is an optional Wall Street Oasis thread URL.
	WSOLink string `json:"wsoLink,omitempty"`
}

// Message is a single transcript entry. Messages are immutable once
// appended; the transcript is an append-only, chronologically ordered slice.
type Message struct {
	// Text is the message body.
	Text string `json:"text"`

	// IsAI is true for backend-authored entries.
	IsAI bool `json:"isAI"`

	// IsError marks a synthetic error entry appended in place of a reply.
	IsError bool `json:"isError,omitempty"`

	// Confidence grades an AI reply (empty for user messages).
	Confidence Confidence `json:"confidence,omitempty"`

	// References are the expert citations supporting an AI reply.
	References []Reference `json:"references,omitempty"`

	// ReferencesCount is the backend-reported citation count, which may
	// exceed len(References) when the backend truncates the list.
	ReferencesCount int `json:"referencesCount,omitempty"`

	// TargetPersona echoes the targeting context the reply was shaped for.
	TargetPersona string `json:"targetPersona,omitempty"`

	// FollowupRecs are suggested follow-up questions.
	FollowupRecs []string `json:"followupRecs,omitempty"`
}

// UserMessage builds a user-authored transcript entry.
func UserMessage(text string) Message {
	return Message{Text: text, IsAI: false}
}

// ErrorMessage builds the synthetic AI entry shown when a send or a
// history load fails. The session stays interactive afterwards.
func ErrorMessage(text string) Message {
	return Message{Text: text, IsAI: true, IsError: true}
}

// Validate checks that the message is well-formed.
func (m *Message) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(m.Text) == "" {
		validation.Add("text", ErrEmptyMessageText)
	}
	if !m.IsAI && m.IsError {
		validation.AddMessage("is_error", "only AI messages can be error entries")
	}
	return validation.Err()
}
