// Package feedback collects product feedback (rating and free-form
// suggestion) from logged-in users.
package feedback

import (
	"strings"
	"time"
)

// Feedback is one stored feedback entry. The collection is write-only
// from the product's point of view.
type Feedback struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	Whatsapp   string    `json:"whatsapp,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Submission is the request payload for a new feedback entry. A zero
// rating means the user did not rate.
type Submission struct {
	Suggestion string `json:"suggestion"`
	Rating     int    `json:"rating"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Whatsapp   string `json:"whatsapp"`
}

// Validate rejects submissions that carry neither a rating nor a
// non-blank suggestion, and ratings outside 1..5.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Suggestion) == "" && s.Rating == 0 {
		return ErrEmptySubmission
	}
	if s.Rating < 0 || s.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
