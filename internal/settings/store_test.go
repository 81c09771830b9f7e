package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client), mr
}

func TestGetReturnsDefaultsForNewUser(t *testing.T) {
	store, _ := newTestStore(t)

	settings, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for _, status := range []string{"new", "contacted", "negotiating", "won"} {
		if settings.KanbanColumnTitles[status] == "" {
			t.Errorf("missing column title for %s", status)
		}
	}
	if settings.KanbanColumnTitles["won"] != "Contrato fechado" {
		t.Errorf("unexpected won title %q", settings.KanbanColumnTitles["won"])
	}
	if settings.MessageTemplate == "" {
		t.Error("expected a default message template")
	}
}

func TestUpdateMergesColumnTitles(t *testing.T) {
	store, _ := newTestStore(t)

	updated, err := store.Update(context.Background(), "user-1", Update{
		KanbanColumnTitles: map[string]string{"won": "Fechados 🎉"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.KanbanColumnTitles["won"] != "Fechados 🎉" {
		t.Errorf("rename not applied: %q", updated.KanbanColumnTitles["won"])
	}
	if updated.KanbanColumnTitles["new"] != "Novos" {
		t.Errorf("other columns must keep their titles, got %q", updated.KanbanColumnTitles["new"])
	}

	reloaded, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.KanbanColumnTitles["won"] != "Fechados 🎉" {
		t.Errorf("rename not persisted: %q", reloaded.KanbanColumnTitles["won"])
	}
}

func TestGetRepairsIncompleteRecord(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Set("prospecta:settings:user-1", `{"messageTemplate": "", "kanbanColumnTitles": {"new": "Entrada"}}`)

	settings, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if settings.KanbanColumnTitles["new"] != "Entrada" {
		t.Errorf("custom title lost: %q", settings.KanbanColumnTitles["new"])
	}
	if settings.KanbanColumnTitles["won"] != "Contrato fechado" {
		t.Errorf("missing won column not repaired: %q", settings.KanbanColumnTitles["won"])
	}
	if settings.MessageTemplate == "" {
		t.Error("empty template not repaired")
	}
}

func TestUpdateMessageTemplate(t *testing.T) {
	store, _ := newTestStore(t)

	template := "Sou especialista em tráfego pago."
	updated, err := store.Update(context.Background(), "user-1", Update{MessageTemplate: &template})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.MessageTemplate != template {
		t.Errorf("template not applied: %q", updated.MessageTemplate)
	}
}

func TestFeedbackPromptGate(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	show, err := store.ShouldPromptFeedback(ctx, "user-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !show {
		t.Fatal("new user should be promptable")
	}

	if err := store.MarkFeedbackPrompted(ctx, "user-1"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	show, err = store.ShouldPromptFeedback(ctx, "user-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if show {
		t.Fatal("prompt must be silenced inside the rolling week")
	}

	mr.FastForward(7*24*time.Hour + time.Minute)
	show, err = store.ShouldPromptFeedback(ctx, "user-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !show {
		t.Fatal("prompt should rearm after the window expires")
	}
}
