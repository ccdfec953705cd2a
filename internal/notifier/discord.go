package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/edusphere/edusphere-api/internal/badges"
	"github.com/edusphere/edusphere-api/internal/logger"
)

type Notifier interface {
	NotifyBadge(userID, displayName string, badge badges.Badge) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	log       *logger.Logger
}

// NewDiscordNotifier opens a bot session. It fails when no token or channel is
// configured; callers fall back to NopNotifier.
func NewDiscordNotifier(token, channelID string, baseLog *logger.Logger) (*DiscordNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return newDiscordNotifier(session, channelID, baseLog), nil
}

func newDiscordNotifier(session *discordgo.Session, channelID string, baseLog *logger.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		log:       baseLog.With("service", "DiscordNotifier"),
	}
}

func (n *DiscordNotifier) NotifyBadge(userID, displayName string, badge badges.Badge) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, FormatBadgeMessage(userID, displayName, badge))
	if err != nil {
		n.log.Warn("failed to send discord message", "badge", badge.Key, "user_id", userID, "error", err)
		return err
	}
	return nil
}

func FormatBadgeMessage(userID, displayName string, badge badges.Badge) string {
	who := displayName
	if who == "" {
		who = "A learner"
	}
	return fmt.Sprintf("%s **Badge Unlocked**\n**Learner:** %s\n**Badge:** %s (+%d pts)\n%s",
		badge.Icon,
		who,
		badge.Name,
		badge.Points,
		badge.Description,
	)
}

// NopNotifier is used when Discord is not configured.
type NopNotifier struct{}

func (NopNotifier) NotifyBadge(string, string, badges.Badge) error { return nil }
