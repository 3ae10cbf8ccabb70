package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wardwatch/internal/models"
)

// ErrFetchFailed marks any recoverable upstream failure: network errors,
// non-2xx statuses and 2xx payloads carrying an "error" field are all
// treated identically.
var ErrFetchFailed = errors.New("prediction API fetch failed")

// ErrDataInvalid marks a 2xx payload that does not decode into the
// expected shape.
var ErrDataInvalid = errors.New("prediction API payload invalid")

// ErrNotFound marks a missing search or ward target.
var ErrNotFound = errors.New("not found")

// Client is a client for the ward safety prediction API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a prediction API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// predictResponse is the wire shape of /api/predict: wards arrive as a
// list and are keyed by ward_id for the snapshot model.
type predictResponse struct {
	Hour      int           `json:"hour"`
	Timestamp string        `json:"timestamp"`
	Wards     []models.Ward `json:"wards"`
	Error     string        `json:"error"`
}

// Predictions fetches the full per-ward prediction set for one hour.
func (c *Client) Predictions(ctx context.Context, hour int) (*models.PredictionSnapshot, error) {
	var resp predictResponse
	endpoint := fmt.Sprintf("%s/api/predict?hour=%d", c.baseURL, hour)
	if err := c.getJSON(ctx, endpoint, &resp, &resp.Error); err != nil {
		return nil, err
	}

	snap := &models.PredictionSnapshot{
		Hour:      resp.Hour,
		Timestamp: resp.Timestamp,
		Wards:     make(map[string]models.Ward, len(resp.Wards)),
	}
	for _, w := range resp.Wards {
		snap.Wards[w.WardID] = w
	}
	return snap, nil
}

// WardCollection is the boundary/geometry payload of /api/wards, kept as
// a minimal GeoJSON FeatureCollection.
type WardCollection struct {
	Type     string        `json:"type"`
	Features []WardFeature `json:"features"`
	Error    string        `json:"error"`
}

type WardFeature struct {
	Type       string         `json:"type"`
	Properties WardProperties `json:"properties"`
	Geometry   WardGeometry   `json:"geometry"`
}

type WardProperties struct {
	WardID string `json:"ward_id"`
	Name   string `json:"name"`
}

type WardGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Wards fetches the ward boundary collection.
func (c *Client) Wards(ctx context.Context) (*WardCollection, error) {
	var resp WardCollection
	if err := c.getJSON(ctx, c.baseURL+"/api/wards", &resp, &resp.Error); err != nil {
		return nil, err
	}
	return &resp, nil
}

type searchResponse struct {
	models.SearchResult
	Error string `json:"error"`
}

// Search resolves a location query to its containing ward. A miss is
// reported as ErrNotFound.
func (c *Client) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	var resp searchResponse
	endpoint := c.baseURL + "/api/search?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, endpoint, &resp, &resp.Error); err != nil {
		return nil, err
	}
	return &resp.SearchResult, nil
}

type tipsResponse struct {
	models.SafetyTips
	Error string `json:"error"`
}

// Tips fetches the safety tips for a ward at an hour. Pass hour -1 to
// let the server pick the current hour.
func (c *Client) Tips(ctx context.Context, wardID string, hour int) (*models.SafetyTips, error) {
	endpoint := fmt.Sprintf("%s/api/tips/%s", c.baseURL, url.PathEscape(wardID))
	if hour >= 0 {
		endpoint = fmt.Sprintf("%s?hour=%d", endpoint, hour)
	}
	var resp tipsResponse
	if err := c.getJSON(ctx, endpoint, &resp, &resp.Error); err != nil {
		return nil, err
	}
	return &resp.SafetyTips, nil
}

// HistoricalResponse is the /api/historical payload: the raw series plus
// the server-side reduction.
type HistoricalResponse struct {
	WardID       string                       `json:"ward_id"`
	DaysAnalyzed int                          `json:"days_analyzed"`
	DailyData    []models.DayRecord           `json:"daily_data"`
	PeriodStats  map[string]models.PeriodStat `json:"period_stats"`
	DailyGrid    []models.DayGridRow          `json:"daily_grid"`
	Error        string                       `json:"error"`
}

// Historical fetches a ward's aggregated safety history over the given
// number of days.
func (c *Client) Historical(ctx context.Context, wardID string, days int) (*HistoricalResponse, error) {
	endpoint := fmt.Sprintf("%s/api/historical/%s?days=%d", c.baseURL, url.PathEscape(wardID), days)
	var resp HistoricalResponse
	if err := c.getJSON(ctx, endpoint, &resp, &resp.Error); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FutureResponse is the /api/future payload.
type FutureResponse struct {
	WardID      string                    `json:"ward_id"`
	WardName    string                    `json:"ward_name"`
	Predictions []models.FuturePrediction `json:"predictions"`
	Error       string                    `json:"error"`
}

// Future fetches the next N hourly predictions for a ward.
func (c *Client) Future(ctx context.Context, wardID string, hours int) (*FutureResponse, error) {
	endpoint := fmt.Sprintf("%s/api/future/%s?hours=%d", c.baseURL, url.PathEscape(wardID), hours)
	var resp FutureResponse
	if err := c.getJSON(ctx, endpoint, &resp, &resp.Error); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON performs the GET, decodes into out, and folds the error
// taxonomy: non-2xx and error-field payloads become ErrFetchFailed, 404s
// match ErrNotFound, and undecodable bodies match ErrDataInvalid.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}, errField *string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status 404, body: %s", ErrNotFound, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d, body: %s", ErrFetchFailed, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrDataInvalid, err)
	}

	if errField != nil && *errField != "" {
		return fmt.Errorf("%w: %s", ErrFetchFailed, *errField)
	}

	return nil
}
