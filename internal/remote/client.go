package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"chargist/internal/models"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the backend's row-level REST API and realtime feed. Every
// call is network I/O and can fail independently; callers own retry policy.
type Client struct {
	baseURL     string
	realtimeURL string
	token       string
	http        HTTPDoer
	logger      *zap.Logger
}

// NewClient builds a remote source client. The token is inspected once so an
// expired credential is visible in the logs before the first 401.
func NewClient(baseURL, realtimeURL, token string, httpClient HTTPDoer, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		realtimeURL: realtimeURL,
		token:       token,
		http:        httpClient,
		logger:      logger,
	}

	if info, err := InspectToken(token); err != nil {
		logger.Warn("api token is not a parseable jwt", zap.Error(err))
	} else if info.Expired(time.Now()) {
		logger.Warn("api token is expired", zap.String("role", info.Role), zap.Time("expires_at", info.ExpiresAt))
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("remote: decode %s response: %w", path, err)
	}
	return nil
}

// QueryByBoundingBox returns stations whose coordinates fall inside the box.
// With reduced set, the server projects only id, name, coordinates and rating,
// for metered connections.
func (c *Client) QueryByBoundingBox(ctx context.Context, box models.BoundingBox, reduced bool) ([]models.Station, error) {
	query := url.Values{}
	query.Set("minLat", fmt.Sprintf("%f", box.MinLat))
	query.Set("maxLat", fmt.Sprintf("%f", box.MaxLat))
	query.Set("minLon", fmt.Sprintf("%f", box.MinLon))
	query.Set("maxLon", fmt.Sprintf("%f", box.MaxLon))
	if reduced {
		query.Set("columns", "id,name,latitude,longitude,avgRating")
	}

	var dtos []stationDTO
	if err := c.do(ctx, http.MethodGet, "/stations", query, nil, &dtos); err != nil {
		return nil, err
	}
	return stationsToModels(dtos), nil
}

// QueryByName returns stations whose name contains the pattern.
func (c *Client) QueryByName(ctx context.Context, pattern string) ([]models.Station, error) {
	query := url.Values{}
	query.Set("nameLike", pattern)

	var dtos []stationDTO
	if err := c.do(ctx, http.MethodGet, "/stations", query, nil, &dtos); err != nil {
		return nil, err
	}
	return stationsToModels(dtos), nil
}

// CallFilterFunction invokes the server-side multi-criteria station filter.
func (c *Client) CallFilterFunction(ctx context.Context, req FilterRequest) ([]FilterMatch, error) {
	var items []filterResponseItem
	if err := c.do(ctx, http.MethodPost, "/rpc/stations_filter", nil, req, &items); err != nil {
		return nil, err
	}

	matches := make([]FilterMatch, 0, len(items))
	for _, item := range items {
		match := FilterMatch{Station: item.Station.toModel()}
		for _, ch := range item.Chargers {
			match.Chargers = append(match.Chargers, ch.toModel())
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// FetchReviewsPage returns one page of a station's reviews ordered by
// ascending date.
func (c *Client) FetchReviewsPage(ctx context.Context, stationID int64, offset, limit int) ([]models.Review, error) {
	query := url.Values{}
	query.Set("offset", fmt.Sprintf("%d", offset))
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("order", "date.asc")

	var dtos []reviewDTO
	path := fmt.Sprintf("/stations/%d/reviews", stationID)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &dtos); err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(dtos))
	for _, d := range dtos {
		reviews = append(reviews, d.toModel())
	}
	return reviews, nil
}

// FetchUser returns one user profile.
func (c *Client) FetchUser(ctx context.Context, id int64) (models.User, error) {
	var dto userDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &dto); err != nil {
		return models.User{}, err
	}
	return dto.toModel(), nil
}

func stationsToModels(dtos []stationDTO) []models.Station {
	stations := make([]models.Station, 0, len(dtos))
	for _, d := range dtos {
		stations = append(stations, d.toModel())
	}
	return stations
}
