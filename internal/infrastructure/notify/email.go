package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
)

var errEmailRecipientsRequired = stderrors.New("email recipients are required")

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// EmailChannel delivers alerts over SMTP. It is meant as an escalation
// transport for urgent benchings, not a chat feed.
type EmailChannel struct {
	addr string
	auth smtp.Auth
	from string
	to   []string

	// sendMail is swapped in tests.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailChannel(cfg EmailConfig) (*EmailChannel, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, stderrors.New("smtp host is required")
	}
	if len(cfg.To) == 0 {
		return nil, errEmailRecipientsRequired
	}
	port := cfg.Port
	if port <= 0 {
		port = 587
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = cfg.Username
	}

	return &EmailChannel{
		addr:     net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		auth:     auth,
		from:     from,
		to:       append([]string(nil), cfg.To...),
		sendMail: smtp.SendMail,
	}, nil
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, a alert.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sendMail(c.addr, c.auth, c.from, c.to, emailMessage(c.from, c.to, a)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

func emailMessage(from string, to []string, a alert.Alert) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", emailSubject(a))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(a.Message)
	b.WriteString("\r\n")
	if a.Match.HomeTeam.Name != "" {
		b.WriteString("\r\n")
		fmt.Fprintf(&b, "Match: %s vs %s\r\n", a.Match.HomeTeam.Name, a.Match.AwayTeam.Name)
		fmt.Fprintf(&b, "Kick-off: %s\r\n", a.Match.KickoffAt.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return []byte(b.String())
}

func emailSubject(a alert.Alert) string {
	switch a.Classification {
	case alert.ClassUnexpectedBenching:
		return fmt.Sprintf("[URGENT] %s benched for %s vs %s", a.Player.Name, a.Match.HomeTeam.Name, a.Match.AwayTeam.Name)
	case alert.ClassUnexpectedStarting:
		return fmt.Sprintf("%s starting for %s vs %s", a.Player.Name, a.Match.HomeTeam.Name, a.Match.AwayTeam.Name)
	case alert.ClassAsExpected:
		return fmt.Sprintf("Lineup confirmed: %s vs %s", a.Match.HomeTeam.Name, a.Match.AwayTeam.Name)
	default:
		return "Lineup tracker notice"
	}
}
