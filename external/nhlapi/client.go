package nhlapi

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
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/resilience"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://api-web.nhle.com/v1"
	defaultMaxRetries   = 3
	defaultRetryBackoff = 2 * time.Second
	maxBodyBytes        = 6 << 20
)

var errNHLTransient = crerr.New("nhl api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	RateLimitRPS   float64
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client reads the public NHL web API. It needs no credentials.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	backoff        time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		backoff:        backoff,
		limiter:        limiter,
		logger:         logger,
		breaker:        resilience.NewBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// FetchScores returns the regular season and playoff games of date.
func (c *Client) FetchScores(ctx context.Context, date time.Time) ([]usecase.ExternalGame, error) {
	day := date.Format("2006-01-02")
	var payload scoreEnvelope
	if err := c.doJSON(ctx, "scores", "/score/"+day, &payload); err != nil {
		return nil, err
	}
	games, err := payload.games()
	if err != nil {
		return nil, &usecase.FatalFetchError{Entity: "scores", Err: fmt.Errorf("score %s: %w", day, err)}
	}
	return games, nil
}

func (c *Client) FetchBoxscore(ctx context.Context, gameID int64) (usecase.ExternalBoxscore, error) {
	if gameID <= 0 {
		return usecase.ExternalBoxscore{}, fmt.Errorf("%w: game id must be greater than zero", usecase.ErrInvalidInput)
	}
	var payload boxscoreEnvelope
	if err := c.doJSON(ctx, "boxscore", "/gamecenter/"+strconv.FormatInt(gameID, 10)+"/boxscore", &payload); err != nil {
		return usecase.ExternalBoxscore{}, err
	}
	box, err := payload.boxscore(gameID)
	if err != nil {
		return usecase.ExternalBoxscore{}, &usecase.FatalFetchError{Entity: "boxscore", Err: fmt.Errorf("game %d: %w", gameID, err)}
	}
	return box, nil
}

func (c *Client) FetchPlayerLanding(ctx context.Context, playerID int64) (usecase.ExternalPlayerDetail, error) {
	if playerID <= 0 {
		return usecase.ExternalPlayerDetail{}, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}
	var payload landingEnvelope
	if err := c.doJSON(ctx, "player_landing", "/player/"+strconv.FormatInt(playerID, 10)+"/landing", &payload); err != nil {
		return usecase.ExternalPlayerDetail{}, err
	}
	return payload.detail(playerID), nil
}

func (c *Client) FetchStandings(ctx context.Context, date time.Time) ([]usecase.ExternalStanding, error) {
	day := date.Format("2006-01-02")
	var payload standingsEnvelope
	if err := c.doJSON(ctx, "standings", "/standings/"+day, &payload); err != nil {
		return nil, err
	}
	rows, err := payload.standings()
	if err != nil {
		return nil, &usecase.FatalFetchError{Entity: "standings", Err: fmt.Errorf("standings %s: %w", day, err)}
	}
	return rows, nil
}

func (c *Client) doJSON(ctx context.Context, entity, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nhl api circuit breaker rejected request", "state", c.breaker.State(), "path", path)
			return &usecase.FatalFetchError{
				Entity: entity,
				Err:    fmt.Errorf("%w: nhl api is temporarily unavailable", usecase.ErrDependencyUnavailable),
			}
		}
	}

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, entity, c.baseURL+path)
		if c.circuitEnabled && ctx.Err() == nil {
			c.breaker.Record(!isNHLCircuitFailure(reqErr))
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return &usecase.FatalFetchError{Entity: entity, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}

// executeRequest retries transient failures with exponential backoff. Once
// retries run out the last transient cause is returned inside a fatal error.
func (c *Client) executeRequest(ctx context.Context, entity, fullURL string) ([]byte, error) {
	var last *usecase.TransientFetchError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, err := c.get(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !stderrors.Is(err, errNHLTransient) {
			return nil, &usecase.FatalFetchError{Entity: entity, Err: err}
		}
		last = &usecase.TransientFetchError{Entity: entity, Attempt: attempt + 1, Err: err}

		if attempt == c.maxRetries {
			break
		}
		wait := c.backoff * time.Duration(1<<attempt)
		c.logger.DebugContext(ctx, "nhl api request retry", "url", fullURL, "attempt", attempt+1, "wait", wait.String(), "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "nhl api request failed", "url", fullURL, "attempts", last.Attempt, "error", last.Err)
	return nil, &usecase.FatalFetchError{Entity: entity, Err: last}
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errNHLTransient, "send request: %v", err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes+1)); err != nil {
		return nil, crerr.Wrapf(errNHLTransient, "read response body: %v", err)
	}
	if buf.Len() > maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return append([]byte(nil), buf.B...), nil
	case isRetryableStatus(resp.StatusCode):
		return nil, crerr.Wrapf(errNHLTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: provider status=%d", usecase.ErrNotFound, resp.StatusCode)
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
	}
}

// isNHLCircuitFailure counts only upstream trouble against the breaker. A
// 4xx or a decode problem says nothing about provider health.
func isNHLCircuitFailure(err error) bool {
	var transient *usecase.TransientFetchError
	return stderrors.As(err, &transient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
