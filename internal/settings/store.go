package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// feedbackPromptWindow gates the feedback nudge to at most once per
// rolling week per user.
const feedbackPromptWindow = 7 * 24 * time.Hour

// Store persists user settings in redis.
type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("prospecta:settings:%s", userID)
}

func (s *Store) promptKey(userID string) string {
	return fmt.Sprintf("prospecta:feedback:prompted:%s", userID)
}

// Get retrieves a user's settings, returning defaults when none exist.
// Stored records are normalized on the way out, so callers always see
// all four column titles.
func (s *Store) Get(ctx context.Context, userID string) (UserSettings, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return Defaults(), nil
	}
	if err != nil {
		return UserSettings{}, fmt.Errorf("settings: get: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return UserSettings{}, fmt.Errorf("settings: unmarshal: %w", err)
	}
	return settings.Normalize(), nil
}

// Set saves a user's settings.
func (s *Store) Set(ctx context.Context, userID string, settings UserSettings) error {
	data, err := json.Marshal(settings.Normalize())
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("settings: set: %w", err)
	}
	return nil
}

// Update applies a partial edit and returns the stored result.
func (s *Store) Update(ctx context.Context, userID string, update Update) (UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return UserSettings{}, err
	}
	next := update.Apply(current)
	if err := s.Set(ctx, userID, next); err != nil {
		return UserSettings{}, err
	}
	return next, nil
}

// KanbanColumnTitles returns the user's column titles keyed by status.
func (s *Store) KanbanColumnTitles(ctx context.Context, userID string) (map[string]string, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return settings.KanbanColumnTitles, nil
}

// MessageTemplate returns the user's outreach template.
func (s *Store) MessageTemplate(ctx context.Context, userID string) (string, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return settings.MessageTemplate, nil
}

// ShouldPromptFeedback reports whether the feedback nudge may be shown
// to the user right now.
func (s *Store) ShouldPromptFeedback(ctx context.Context, userID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.promptKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("settings: feedback prompt check: %w", err)
	}
	return n == 0, nil
}

// MarkFeedbackPrompted records that the nudge was shown, silencing it
// for the rolling week.
func (s *Store) MarkFeedbackPrompted(ctx context.Context, userID string) error {
	if err := s.redis.Set(ctx, s.promptKey(userID), "1", feedbackPromptWindow).Err(); err != nil {
		return fmt.Errorf("settings: mark feedback prompted: %w", err)
	}
	return nil
}
