package notifier

import (
	"strings"
	"testing"

	"github.com/edusphere/edusphere-api/internal/badges"
	"github.com/edusphere/edusphere-api/internal/logger"
)

func TestFormatBadgeMessage(t *testing.T) {
	b, err := badges.Default().Lookup(badges.KeyStreak7)
	if err != nil {
		t.Fatal(err)
	}

	msg := FormatBadgeMessage("u1", "Ada", b)
	for _, want := range []string{"Ada", "Week Warrior", "+50 pts"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected message to contain %q, got %q", want, msg)
		}
	}

	anon := FormatBadgeMessage("u1", "", b)
	if !strings.Contains(anon, "A learner") {
		t.Errorf("expected anonymous fallback, got %q", anon)
	}
}

func TestNewDiscordNotifier_RequiresConfig(t *testing.T) {
	if _, err := NewDiscordNotifier("", "chan", logger.Nop()); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := NewDiscordNotifier("token", "", logger.Nop()); err == nil {
		t.Error("expected error for empty channel")
	}
}

func TestDiscordNotifier_NilSession(t *testing.T) {
	n := newDiscordNotifier(nil, "chan", logger.Nop())
	if err := n.NotifyBadge("u1", "Ada", badges.Badge{Key: "x"}); err == nil {
		t.Error("expected error for nil session")
	}
}
