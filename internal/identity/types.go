package identity

import "time"

// User is the identity-service account as the application sees it. The
// metadata bag is owned by the identity service; callers only read it and
// request updates through UpdateProfile.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Name returns the display name, accepting the shapes the identity service
// has emitted over time (name, full_name, fullName).
func (u *User) Name() string {
	for _, key := range []string{"name", "full_name", "fullName"} {
		if v, ok := u.Metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Whatsapp returns the user's WhatsApp number from metadata, if set.
func (u *User) Whatsapp() string {
	if v, ok := u.Metadata["whatsapp"].(string); ok {
		return v
	}
	return ""
}

// Plan returns the subscription plan ("free" when unset).
func (u *User) Plan() string {
	if v, ok := u.Metadata["plan"].(string); ok && v != "" {
		return v
	}
	return "free"
}

// IsValidated reports whether an administrator has approved the account.
// Anything other than an explicit true means not validated.
func (u *User) IsValidated() bool {
	v, ok := u.Metadata["is_validated"].(bool)
	return ok && v
}

// Session is an authenticated identity-service session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	User         User      `json:"user"`
}

// EventType identifies a session lifecycle change.
type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
	EventRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is delivered to session-change subscribers.
type Event struct {
	Type    EventType
	Session *Session
}
