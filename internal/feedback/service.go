package feedback

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prospecta/prospecta-platform/internal/baas"
	"github.com/prospecta/prospecta-platform/internal/identity"
	"github.com/prospecta/prospecta-platform/internal/notify"
	"github.com/prospecta/prospecta-platform/pkg/logging"
)

// Backends throttle feedback writes per user. Their error copy varies,
// so matching stays loose.
var throttlePattern = regexp.MustCompile(`(?i)(limite|rate)`)

const notifyTimeout = 15 * time.Second

// ServiceConfig wires the feedback service.
type ServiceConfig struct {
	Repo Repository
	// Sender and NotifyAddress are optional. When both are set, every
	// stored entry is forwarded to the product owner by email.
	Sender        notify.EmailSender
	NotifyAddress string
	Logger        *logging.Logger
}

// Service validates and stores feedback submissions.
type Service struct {
	repo       Repository
	sender     notify.EmailSender
	notifyAddr string
	logger     *logging.Logger
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Repo == nil {
		panic("feedback: repository required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       cfg.Repo,
		sender:     cfg.Sender,
		notifyAddr: cfg.NotifyAddress,
		logger:     logger.Named("feedback"),
	}
}

// Submit validates the submission and stores one entry for the user.
// Delivery of the owner notification happens in the background and never
// affects the result.
func (s *Service) Submit(ctx context.Context, user identity.UserInfo, sub Submission) (*Feedback, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	entry := Feedback{
		UserID:     user.ID,
		Email:      strings.TrimSpace(sub.Email),
		Name:       strings.TrimSpace(sub.Name),
		Whatsapp:   strings.TrimSpace(sub.Whatsapp),
		Suggestion: strings.TrimSpace(sub.Suggestion),
		Rating:     sub.Rating,
	}
	if entry.Email == "" {
		entry.Email = user.Email
	}

	stored, err := s.repo.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.logger.Info("feedback stored", "user_id", user.ID, "rating", stored.Rating)

	if s.sender != nil && s.notifyAddr != "" {
		go s.notifyOwner(*stored)
	}
	return stored, nil
}

func (s *Service) notifyOwner(entry Feedback) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var body strings.Builder
	fmt.Fprintf(&body, "Novo feedback recebido.\n\n")
	if entry.Rating > 0 {
		fmt.Fprintf(&body, "Avaliação: %d/5\n", entry.Rating)
	}
	if entry.Suggestion != "" {
		fmt.Fprintf(&body, "Comentário: %s\n", entry.Suggestion)
	}
	fmt.Fprintf(&body, "\nUsuário: %s", entry.UserID)
	if entry.Name != "" {
		fmt.Fprintf(&body, "\nNome: %s", entry.Name)
	}
	if entry.Email != "" {
		fmt.Fprintf(&body, "\nEmail: %s", entry.Email)
	}
	if entry.Whatsapp != "" {
		fmt.Fprintf(&body, "\nWhatsApp: %s", entry.Whatsapp)
	}

	err := s.sender.Send(ctx, notify.EmailMessage{
		To:      s.notifyAddr,
		Subject: "Novo feedback na Prospecta",
		Body:    body.String(),
	})
	if err != nil {
		s.logger.Warn("feedback notification failed", "error", err)
	}
}

// IsThrottled reports whether err looks like a backend rate limit.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	return baas.IsRateLimited(err) || throttlePattern.MatchString(err.Error())
}
