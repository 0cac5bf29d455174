// Package nbastats is the HTTP client for the roster/ability backend: today's
// games, team rosters, per-player ability scores and the global top-players
// ranking.
package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/nba-lineups/internal/domain/player"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/domain/topplayers"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
	"github.com/riskibarqy/nba-lineups/internal/platform/resilience"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

const (
	defaultBaseURL    = "http://localhost:5001"
	defaultTimeout    = 10 * time.Second
	pathTodayGames    = "/api/today-games"
	pathTeamPlayers   = "/api/team/%s/players"
	pathPlayerAbility = "/api/players/ability"
	pathTopPlayers    = "/api/players/top-ability"
	maxResponseBytes  = 4 << 20
)

var errProviderTransient = crerr.New("nba stats transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type teamPayload struct {
	TeamID  json.Number `json:"teamId"`
	Name    string      `json:"name"`
	Tricode string      `json:"tricode"`
}

type gamePayload struct {
	GameID   json.Number `json:"gameId"`
	HomeTeam teamPayload `json:"homeTeam"`
	AwayTeam teamPayload `json:"awayTeam"`
}

type gamesEnvelope struct {
	Success bool          `json:"success"`
	Data    []gamePayload `json:"data"`
}

// FetchTeams derives the selectable team list from today's games: home and
// away participants, deduplicated by team id, first-seen order.
func (c *Client) FetchTeams(ctx context.Context) ([]team.Team, error) {
	var env gamesEnvelope
	if err := c.doJSON(ctx, pathTodayGames, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("provider rejected today-games request")
	}

	teams := make([]team.Team, 0, len(env.Data)*2)
	seen := make(map[string]struct{}, len(env.Data)*2)
	for _, game := range env.Data {
		for _, participant := range []teamPayload{game.HomeTeam, game.AwayTeam} {
			id := participant.TeamID.String()
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			teams = append(teams, team.Team{
				TeamID:  id,
				Name:    participant.Name,
				Tricode: participant.Tricode,
			})
		}
	}
	return teams, nil
}

type playerPayload struct {
	PersonID    json.Number `json:"personId"`
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
}

type playersEnvelope struct {
	Success bool            `json:"success"`
	Data    []playerPayload `json:"data"`
}

func (c *Client) FetchTeamPlayers(ctx context.Context, teamID string) ([]player.Player, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("team id is required")
	}

	var env playersEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf(pathTeamPlayers, url.PathEscape(teamID)), nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("provider rejected team players request team_id=%s", teamID)
	}

	players := make([]player.Player, 0, len(env.Data))
	for _, row := range env.Data {
		players = append(players, player.Player{
			PersonID:    row.PersonID.String(),
			Name:        row.Name,
			DisplayName: row.DisplayName,
		})
	}
	return players, nil
}

type abilityPayload struct {
	PersonID json.Number `json:"personId"`
	Ability  float64     `json:"Ability"`
}

type abilitiesEnvelope struct {
	Success bool             `json:"success"`
	Data    []abilityPayload `json:"data"`
}

// FetchAbilities resolves scores for the given players in one request; the
// ids travel comma-joined in roster slot order.
func (c *Client) FetchAbilities(ctx context.Context, personIDs []string) (map[string]float64, error) {
	if len(personIDs) == 0 {
		return map[string]float64{}, nil
	}

	query := map[string]string{"personIds": strings.Join(personIDs, ",")}
	var env abilitiesEnvelope
	if err := c.doJSON(ctx, pathPlayerAbility, query, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("provider rejected ability request")
	}

	scores := make(map[string]float64, len(env.Data))
	for _, row := range env.Data {
		if id := row.PersonID.String(); id != "" {
			scores[id] = row.Ability
		}
	}
	return scores, nil
}

type topPlayerPayload struct {
	PersonID  json.Number `json:"personId"`
	Name      string      `json:"name"`
	Ability   float64     `json:"Ability"`
	Points    float64     `json:"points"`
	Rebounds  float64     `json:"rebounds"`
	Assists   float64     `json:"assists"`
	Steals    float64     `json:"steals"`
	Blocks    float64     `json:"blocks"`
	Turnovers float64     `json:"turnovers"`
}

type topPlayersEnvelope struct {
	Success bool               `json:"success"`
	Data    []topPlayerPayload `json:"data"`
}

func (c *Client) FetchTopPlayers(ctx context.Context) ([]topplayers.TopPlayer, error) {
	var env topPlayersEnvelope
	if err := c.doJSON(ctx, pathTopPlayers, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("provider rejected top players request")
	}

	ranking := make([]topplayers.TopPlayer, 0, len(env.Data))
	for _, row := range env.Data {
		ranking = append(ranking, topplayers.TopPlayer{
			PersonID:  row.PersonID.String(),
			Name:      row.Name,
			Ability:   row.Ability,
			Points:    row.Points,
			Rebounds:  row.Rebounds,
			Assists:   row.Assists,
			Steals:    row.Steals,
			Blocks:    row.Blocks,
			Turnovers: row.Turnovers,
		})
	}
	return ranking, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nba stats circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: roster data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errProviderTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
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
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errProviderTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errProviderTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
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
	c.logger.WarnContext(ctx, "nba stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
