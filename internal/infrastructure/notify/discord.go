package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/lineupwatch/lineup-tracker/internal/domain/alert"
)

const (
	defaultDiscordTimeout = 10 * time.Second
	discordUsername       = "lineup-tracker"
)

var errDiscordWebhookURLRequired = stderrors.New("discord webhook url is required")

type DiscordConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// DiscordChannel posts alerts to a Discord webhook.
type DiscordChannel struct {
	client     *fasthttp.Client
	webhookURL string
	timeout    time.Duration
}

type discordPayload struct {
	Content  string `json:"content"`
	Username string `json:"username"`
}

func NewDiscordChannel(cfg DiscordConfig) (*DiscordChannel, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errDiscordWebhookURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDiscordTimeout
	}

	return &DiscordChannel{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		webhookURL: webhookURL,
		timeout:    timeout,
	}, nil
}

func (c *DiscordChannel) Name() string { return "discord" }

func (c *DiscordChannel) Send(ctx context.Context, a alert.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := sonic.Marshal(discordPayload{
		Content:  discordContent(a),
		Username: discordUsername,
	})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return fmt.Errorf("post discord webhook: %w", err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return fmt.Errorf("discord webhook returned status %d", status)
	}
	return nil
}

// discordContent renders the alert as a webhook message. Urgent benchings
// get the loud prefix so they stand out in a busy channel.
func discordContent(a alert.Alert) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	switch a.Classification {
	case alert.ClassUnexpectedBenching:
		buf.WriteString(":rotating_light: **Unexpected benching**\n")
	case alert.ClassUnexpectedStarting:
		buf.WriteString(":zap: **Unexpected starter**\n")
	case alert.ClassAsExpected:
		buf.WriteString(":white_check_mark: Lineup confirmed\n")
	default:
		buf.WriteString(":information_source: ")
	}
	buf.WriteString(a.Message)
	if a.Match.HomeTeam.Name != "" {
		buf.WriteString("\n")
		fmt.Fprintf(buf, "_%s vs %s, kickoff %s_",
			a.Match.HomeTeam.Name,
			a.Match.AwayTeam.Name,
			a.Match.KickoffAt.UTC().Format("2006-01-02 15:04 UTC"))
	}

	return buf.String()
}
