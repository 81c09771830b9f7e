package notify

import (
	"context"
	"testing"
)

func TestNewSendGridSenderNilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "ops@example.com"}, nil)
	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSenderDefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "ops@example.com",
	}, nil)
	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Prospecta" {
		t.Errorf("expected default from name, got %q", sender.fromName)
	}
}

func TestSendGridSenderSendNilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), EmailMessage{To: "ops@example.com", Subject: "x", Body: "y"})
	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSenderSend(t *testing.T) {
	sender := NewStubEmailSender(nil)
	err := sender.Send(context.Background(), EmailMessage{To: "ops@example.com", Subject: "x", Body: "y"})
	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}
