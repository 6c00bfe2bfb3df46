// Package analytics pulls site statistics from a Umami instance and serves
// them from cache, with persisted snapshots as a fallback.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/yuma-shin/y-shin.net/models"
)

// UmamiClient is an authenticated client for the Umami HTTP API.
type UmamiClient struct {
	baseURL   string
	username  string
	password  string
	websiteID string
	client    *http.Client

	mu    sync.Mutex
	token string
}

// NewUmamiClient creates a client. Credentials are verified lazily on the
// first authenticated request.
func NewUmamiClient(baseURL, username, password, websiteID string) *UmamiClient {
	return &UmamiClient{
		baseURL:   baseURL,
		username:  username,
		password:  password,
		websiteID: websiteID,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// umamiMetric is Umami's {value, prev} wrapper around each stat.
type umamiMetric struct {
	Value int64 `json:"value"`
}

type umamiStatsResponse struct {
	Pageviews umamiMetric `json:"pageviews"`
	Visitors  umamiMetric `json:"visitors"`
	Visits    umamiMetric `json:"visits"`
	Bounces   umamiMetric `json:"bounces"`
	TotalTime umamiMetric `json:"totaltime"`
}

// login exchanges credentials for a bearer token.
func (u *UmamiClient) login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": u.username,
		"password": u.password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("umami login returned %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return err
	}
	if loginResp.Token == "" {
		return fmt.Errorf("umami login returned empty token")
	}

	u.mu.Lock()
	u.token = loginResp.Token
	u.mu.Unlock()
	return nil
}

// SetToken seeds a previously issued token, skipping the initial login.
func (u *UmamiClient) SetToken(token string) {
	u.mu.Lock()
	u.token = token
	u.mu.Unlock()
}

// Token returns the current bearer token, which may be empty.
func (u *UmamiClient) Token() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.token
}

// FetchStats retrieves aggregate statistics for the given window,
// re-authenticating once on a 401.
func (u *UmamiClient) FetchStats(ctx context.Context, startAt, endAt time.Time) (*models.SiteStats, error) {
	url := fmt.Sprintf("%s/api/websites/%s/stats?startAt=%d&endAt=%d",
		u.baseURL, u.websiteID, startAt.UnixMilli(), endAt.UnixMilli())

	var stats umamiStatsResponse
	if err := u.getJSON(ctx, url, &stats); err != nil {
		return nil, err
	}

	return &models.SiteStats{
		Pageviews: stats.Pageviews.Value,
		Visitors:  stats.Visitors.Value,
		Visits:    stats.Visits.Value,
		Bounces:   stats.Bounces.Value,
		TotalTime: stats.TotalTime.Value,
		StartAt:   startAt,
		EndAt:     endAt,
	}, nil
}

// FetchPageviews retrieves the daily pageview series for the given window.
func (u *UmamiClient) FetchPageviews(ctx context.Context, startAt, endAt time.Time) ([]models.PageviewPoint, error) {
	url := fmt.Sprintf("%s/api/websites/%s/pageviews?startAt=%d&endAt=%d&unit=day&timezone=UTC",
		u.baseURL, u.websiteID, startAt.UnixMilli(), endAt.UnixMilli())

	var series struct {
		Pageviews []models.PageviewPoint `json:"pageviews"`
	}
	if err := u.getJSON(ctx, url, &series); err != nil {
		return nil, err
	}
	return series.Pageviews, nil
}

func (u *UmamiClient) getJSON(ctx context.Context, url string, out any) error {
	resp, err := u.authedGet(ctx, url)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := u.login(ctx); err != nil {
			return fmt.Errorf("umami re-authentication failed: %w", err)
		}
		resp, err = u.authedGet(ctx, url)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("umami API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (u *UmamiClient) authedGet(ctx context.Context, url string) (*http.Response, error) {
	if u.Token() == "" {
		if err := u.login(ctx); err != nil {
			return nil, fmt.Errorf("umami authentication failed: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+u.Token())
	return u.client.Do(req)
}
