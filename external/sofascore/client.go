// Package sofascore implements the fixture and lineup sources against the
// public Sofascore football API.
package sofascore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lineupwatch/lineup-tracker/internal/domain/lineup"
	"github.com/lineupwatch/lineup-tracker/internal/domain/match"
	"github.com/lineupwatch/lineup-tracker/internal/platform/cache"
	"github.com/lineupwatch/lineup-tracker/internal/platform/limiter"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
	"github.com/lineupwatch/lineup-tracker/internal/platform/resilience"
	"github.com/lineupwatch/lineup-tracker/internal/usecase"
)

const (
	defaultBaseURL      = "https://api.sofascore.com/api/v1"
	defaultTournamentID = 17 // Premier League
	defaultFixturesTTL  = 10 * time.Minute
	defaultLineupsTTL   = 30 * time.Second
	maxResponseBytes    = 6 << 20
)

var errSofascoreTransient = crerr.New("sofascore transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	TournamentID   int64
	FixturesTTL    time.Duration
	LineupsTTL     time.Duration
	Logger         *logging.Logger
	Limiter        *limiter.Limiter
	CircuitBreaker resilience.CircuitBreakerConfig
}

type lineupResult struct {
	lineups lineup.MatchLineups
	found   bool
}

// Client talks to Sofascore. It implements match.FixtureSource and
// lineup.Source. All requests share one circuit breaker, one in-flight
// deduplicator, and the injected concurrency limiter.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tournamentID   int64
	maxRetries     int
	logger         *logging.Logger
	limiter        *limiter.Limiter
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]byte]

	fixtureCache *cache.Store[[]match.Match]
	lineupCache  *cache.Store[lineupResult]
	eventCache   *cache.Store[match.Match]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	tournamentID := cfg.TournamentID
	if tournamentID == 0 {
		tournamentID = defaultTournamentID
	}

	fixturesTTL := cfg.FixturesTTL
	if fixturesTTL <= 0 {
		fixturesTTL = defaultFixturesTTL
	}
	lineupsTTL := cfg.LineupsTTL
	if lineupsTTL <= 0 {
		lineupsTTL = defaultLineupsTTL
	}

	breakerCfg := cfg.CircuitBreaker

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		tournamentID:   tournamentID,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		limiter:        cfg.Limiter,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		fixtureCache:   cache.NewStore[[]match.Match](fixturesTTL),
		lineupCache:    cache.NewStore[lineupResult](lineupsTTL),
		eventCache:     cache.NewStore[match.Match](fixturesTTL),
	}
}

// Fixtures lists tournament fixtures whose kickoff falls inside
// [from, from+window). The provider exposes one endpoint per calendar day.
func (c *Client) Fixtures(ctx context.Context, from time.Time, window time.Duration) ([]match.Match, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: look-ahead window must be positive", usecase.ErrInvalidInput)
	}

	from = from.UTC()
	until := from.Add(window)
	cacheKey := fmt.Sprintf("fixtures:%d:%d", from.Unix(), until.Unix())

	return c.fixtureCache.GetOrLoad(ctx, cacheKey, func(ctx context.Context) ([]match.Match, error) {
		seen := make(map[string]struct{})
		var out []match.Match

		for day := from.Truncate(24 * time.Hour); !day.After(until); day = day.Add(24 * time.Hour) {
			path := "/sport/football/scheduled-events/" + day.Format("2006-01-02")

			var envelope scheduledEventsEnvelope
			if err := c.doJSON(ctx, path, &envelope); err != nil {
				return nil, fmt.Errorf("fetch scheduled events for %s: %w", day.Format("2006-01-02"), err)
			}

			for _, event := range envelope.Events {
				if !event.inTournament(c.tournamentID) {
					continue
				}

				m := event.toMatch()
				if m.KickoffAt.Before(from) || !m.KickoffAt.Before(until) {
					continue
				}
				if _, dup := seen[m.ID]; dup {
					continue
				}
				seen[m.ID] = struct{}{}
				c.eventCache.Set(ctx, "event:"+m.ID, m)
				out = append(out, m)
			}
		}

		c.logger.DebugContext(ctx, "fixtures fetched", "from", from, "window", window, "matches", len(out))
		return out, nil
	})
}

// InvalidateFixtures drops every cached fixture window so the next Fixtures
// call hits the provider. The schedule manager calls this on manual refresh.
func (c *Client) InvalidateFixtures(ctx context.Context) {
	c.fixtureCache.DeletePrefix(ctx, "fixtures:")
}

// Lineups fetches the announced lineups for a match. A provider 404 means
// the lineup is not announced yet and is reported as found=false, nil error.
func (c *Client) Lineups(ctx context.Context, matchID string) (lineup.MatchLineups, bool, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return lineup.MatchLineups{}, false, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	result, err := c.lineupCache.GetOrLoad(ctx, "lineups:"+matchID, func(ctx context.Context) (lineupResult, error) {
		var envelope lineupsEnvelope
		if err := c.doJSON(ctx, "/event/"+matchID+"/lineups", &envelope); err != nil {
			if stderrors.Is(err, usecase.ErrNotFound) {
				return lineupResult{}, nil
			}
			return lineupResult{}, err
		}

		m, err := c.eventDetails(ctx, matchID)
		if err != nil {
			return lineupResult{}, err
		}

		return lineupResult{
			lineups: envelope.toMatchLineups(matchID, m.HomeTeam.Name, m.AwayTeam.Name),
			found:   true,
		}, nil
	})
	if err != nil {
		return lineup.MatchLineups{}, false, err
	}

	return result.lineups, result.found, nil
}

// eventDetails resolves team names for a match; the lineups endpoint does
// not carry them.
func (c *Client) eventDetails(ctx context.Context, matchID string) (match.Match, error) {
	return c.eventCache.GetOrLoad(ctx, "event:"+matchID, func(ctx context.Context) (match.Match, error) {
		var envelope eventEnvelope
		if err := c.doJSON(ctx, "/event/"+matchID, &envelope); err != nil {
			return match.Match{}, fmt.Errorf("fetch event %s: %w", matchID, err)
		}
		return envelope.Event.toMatch(), nil
	})
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sofascore circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: lineup data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	raw, err, _ := c.flight.Do(path, func() ([]byte, error) {
		body, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if IsTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return body, reqErr
	})
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if c.limiter == nil {
		return c.attemptRequest(ctx, fullURL)
	}

	var raw []byte
	err := c.limiter.Do(ctx, func(ctx context.Context) error {
		var reqErr error
		raw, reqErr = c.attemptRequest(ctx, fullURL)
		return reqErr
	})
	return raw, err
}

func (c *Client) attemptRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", "lineup-tracker/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSofascoreTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSofascoreTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: provider status=404", usecase.ErrNotFound)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSofascoreTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sofascore request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// IsTransient reports whether err is a retryable provider failure rather
// than a permanent one.
func IsTransient(err error) bool {
	return stderrors.Is(err, errSofascoreTransient)
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 200
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type scheduledEventsEnvelope struct {
	Events []eventPayload `json:"events"`
}

type eventEnvelope struct {
	Event eventPayload `json:"event"`
}

type eventPayload struct {
	ID             int64             `json:"id"`
	Tournament     tournamentPayload `json:"tournament"`
	HomeTeam       teamPayload       `json:"homeTeam"`
	AwayTeam       teamPayload       `json:"awayTeam"`
	StartTimestamp int64             `json:"startTimestamp"`
	Status         statusPayload     `json:"status"`
}

type tournamentPayload struct {
	ID               int64 `json:"id"`
	UniqueTournament *struct {
		ID int64 `json:"id"`
	} `json:"uniqueTournament"`
}

type teamPayload struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	NameCode  string `json:"nameCode"`
}

type statusPayload struct {
	Code int    `json:"code"`
	Type string `json:"type"`
}

type lineupsEnvelope struct {
	Confirmed bool              `json:"confirmed"`
	Home      sideLineupPayload `json:"home"`
	Away      sideLineupPayload `json:"away"`
}

type sideLineupPayload struct {
	Formation string                `json:"formation"`
	Players   []lineupPlayerPayload `json:"players"`
}

type lineupPlayerPayload struct {
	Player struct {
		Name string `json:"name"`
	} `json:"player"`
	Substitute bool `json:"substitute"`
}

func (e eventPayload) inTournament(tournamentID int64) bool {
	if tournamentID <= 0 {
		return true
	}
	if e.Tournament.UniqueTournament != nil && e.Tournament.UniqueTournament.ID == tournamentID {
		return true
	}
	return e.Tournament.ID == tournamentID
}

func (e eventPayload) toMatch() match.Match {
	return match.Match{
		ID: strconv.FormatInt(e.ID, 10),
		HomeTeam: match.Team{
			Name:         e.HomeTeam.Name,
			Abbreviation: firstNonEmpty(e.HomeTeam.NameCode, e.HomeTeam.ShortName),
		},
		AwayTeam: match.Team{
			Name:         e.AwayTeam.Name,
			Abbreviation: firstNonEmpty(e.AwayTeam.NameCode, e.AwayTeam.ShortName),
		},
		KickoffAt: time.Unix(e.StartTimestamp, 0).UTC(),
		Status:    e.Status.toDomain(),
	}
}

func (s statusPayload) toDomain() string {
	switch strings.ToLower(s.Type) {
	case "inprogress":
		return match.StatusLive
	case "finished":
		return match.StatusFinished
	case "postponed":
		return match.StatusPostponed
	case "canceled", "cancelled":
		return match.StatusCancelled
	case "notstarted":
		return match.StatusNotStarted
	}

	// Older payloads carry only the numeric code.
	switch s.Code {
	case 1, 2, 6, 7:
		return match.StatusLive
	case 3:
		return match.StatusFinished
	default:
		return match.StatusNotStarted
	}
}

func (e lineupsEnvelope) toMatchLineups(matchID, homeName, awayName string) lineup.MatchLineups {
	return lineup.MatchLineups{
		MatchID: matchID,
		Home:    e.Home.toTeamLineup(homeName),
		Away:    e.Away.toTeamLineup(awayName),
	}
}

func (s sideLineupPayload) toTeamLineup(teamName string) *lineup.TeamLineup {
	if len(s.Players) == 0 {
		return nil
	}

	out := &lineup.TeamLineup{
		TeamName:  teamName,
		Formation: s.Formation,
	}
	for _, p := range s.Players {
		if p.Player.Name == "" {
			continue
		}
		if p.Substitute {
			out.Substitutes = append(out.Substitutes, p.Player.Name)
		} else {
			out.StartingXI = append(out.StartingXI, p.Player.Name)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
