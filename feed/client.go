// Package feed talks to the external score provider. The provider keys
// everything by its own ids (feed_match_id, feed_team_id); mapping those to
// local rows happens in the service layer.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type MapScore struct {
	MapNumber  int `json:"map_number"`
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}

// MatchUpdate is the provider's view of one match. Status values follow
// the provider's vocabulary and are normalized by the feed service.
type MatchUpdate struct {
	FeedMatchID      int        `json:"match_id"`
	Status           string     `json:"status"`
	Team1Score       int        `json:"team1_score"`
	Team2Score       int        `json:"team2_score"`
	WinnerFeedTeamID *int       `json:"winner_team_id,omitempty"`
	MapScores        []MapScore `json:"map_scores,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Client interface {
	// FetchMatch returns the current provider state of one match.
	FetchMatch(ctx context.Context, feedMatchID int) (*MatchUpdate, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) FetchMatch(ctx context.Context, feedMatchID int) (*MatchUpdate, error) {
	endpoint, err := url.JoinPath(c.baseURL, "matches", strconv.Itoa(feedMatchID))
	if err != nil {
		return nil, fmt.Errorf("invalid feed base URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request for match %d failed: %w", feedMatchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d for match %d", resp.StatusCode, feedMatchID)
	}

	var update MatchUpdate
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		return nil, fmt.Errorf("failed to decode feed payload for match %d: %w", feedMatchID, err)
	}
	return &update, nil
}
