package notify

import (
	"context"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

// ConsoleChannel writes alerts to the structured log. It is the default
// channel when no external transport is configured, so a bare deployment
// still surfaces discrepancies.
type ConsoleChannel struct {
	logger *logging.Logger
}

func NewConsoleChannel(logger *logging.Logger) *ConsoleChannel {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConsoleChannel{logger: logger.With("channel", "console")}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Send(ctx context.Context, a alert.Alert) error {
	c.logger.InfoContext(ctx, a.Message,
		"alert_key", a.Key.String(),
		"classification", a.Classification,
		"urgency", a.Urgency,
		"player", a.Player.Name,
		"team", a.Player.TeamName,
		"match_id", a.Match.ID,
		"kickoff_at", a.Match.KickoffAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	)
	return nil
}
