// Package weather implements the OpenWeather-backed weather tools.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned when no OpenWeather key is configured.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set in environment variables.")

// StatusError is returned when OpenWeather answers with a non-2xx status.
// Body holds the raw response text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openweather error [%d]: %s", e.StatusCode, e.Body)
}

// Client is a minimal OpenWeather REST client. All lookups use metric units.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new OpenWeather client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CurrentConditions is the subset of the /weather reply the tools read.
// Numbers keep the spelling OpenWeather used.
type CurrentConditions struct {
	Weather []Condition `json:"weather"`
	Main    Readings    `json:"main"`
}

// Condition is one weather condition entry.
type Condition struct {
	Description string `json:"description"`
}

// Readings holds the main measurements of a reply.
type Readings struct {
	Temp     json.Number `json:"temp"`
	Humidity json.Number `json:"humidity"`
}

// ForecastReply is the subset of the /forecast reply the tools read.
type ForecastReply struct {
	List []ForecastItem `json:"list"`
}

// ForecastItem is one 3-hour slot of a forecast.
type ForecastItem struct {
	DtTxt   string      `json:"dt_txt"`
	Weather []Condition `json:"weather"`
	Main    Readings    `json:"main"`
}

// Current fetches the current conditions for a city.
func (c *Client) Current(ctx context.Context, city string) (*CurrentConditions, error) {
	var out CurrentConditions
	if err := c.get(ctx, "weather", city, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forecast fetches the 5 day / 3 hour forecast for a city.
func (c *Client) Forecast(ctx context.Context, city string) (*ForecastReply, error) {
	var out ForecastReply
	if err := c.get(ctx, "forecast", city, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint, city string, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
