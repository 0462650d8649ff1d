// Package validation holds the pure request predicates that run before
// any storage operation. Every function either accepts (nil) or rejects
// with an *Error carrying the rejection kind; nothing here touches the
// database or the gin context.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxAnswerLength is the longest accepted answer content, in characters.
// Length 300 is accepted, 301 is not.
const MaxAnswerLength = 300

// Rejection kinds.
const (
	KindMissingField     = "missing_field"
	KindInvalidDirection = "invalid_direction"
	KindEmptyField       = "empty_field"
	KindTooLong          = "too_long"
	KindUnknownParam     = "unknown_param"
)

type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// VotePayload is the explicit schema of a vote-cast body. Direction is a
// pointer so an absent field and a wrong value reject differently.
type VotePayload struct {
	Direction *string `json:"direction"`
}

// Direction accepts a vote body only when its direction field is present
// and confirms the endpoint's own direction: "1" for upvote endpoints,
// "-1" for downvote endpoints. The payload never chooses the sign.
func Direction(p VotePayload, want int) error {
	if p.Direction == nil {
		return &Error{Kind: KindMissingField, Message: "direction is required"}
	}

	expect := "1"
	if want < 0 {
		expect = "-1"
	}
	if *p.Direction != expect {
		return &Error{
			Kind:    KindInvalidDirection,
			Message: fmt.Sprintf("direction must be %q for this endpoint", expect),
		}
	}
	return nil
}

// QuestionPayload accepts a question submission only when every text
// field carries non-blank content.
func QuestionPayload(title, description, category string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return &Error{Kind: KindEmptyField, Message: "title is required"}
	case strings.TrimSpace(description) == "":
		return &Error{Kind: KindEmptyField, Message: "description is required"}
	case strings.TrimSpace(category) == "":
		return &Error{Kind: KindEmptyField, Message: "category is required"}
	}
	return nil
}

// AnswerContent accepts answer text that is non-blank and at most
// MaxAnswerLength characters long.
func AnswerContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &Error{Kind: KindEmptyField, Message: "content is required"}
	}
	if utf8.RuneCountInString(content) > MaxAnswerLength {
		return &Error{
			Kind:    KindTooLong,
			Message: fmt.Sprintf("content must be at most %d characters", MaxAnswerLength),
		}
	}
	return nil
}

// questionListParams is the allow-list for the question listing filter.
var questionListParams = map[string]bool{
	"title":    true,
	"category": true,
}

// QuestionListQuery rejects a question-list query that carries any
// parameter outside the allow-list, so unsupported filters fail loudly
// instead of being silently ignored.
func QuestionListQuery(query url.Values) error {
	for name := range query {
		if !questionListParams[name] {
			return &Error{
				Kind:    KindUnknownParam,
				Message: fmt.Sprintf("unsupported query parameter %q", name),
			}
		}
	}
	return nil
}
