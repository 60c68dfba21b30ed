package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pandu992003/weather-project-copy2/internal/tools"
)

// Tool names exposed by the Tool Host.
const (
	CurrentWeatherTool = "get_current_weather"
	ForecastTool       = "get_forecast"
)

// DefaultForecastDays is used when get_forecast is called without days.
const DefaultForecastDays = 3

// CurrentWeather renders the current conditions of a city. Upstream failures
// are reported in the returned text, never as an error.
func (c *Client) CurrentWeather(ctx context.Context, city string) string {
	data, err := c.Current(ctx, city)
	if err != nil {
		return failureText("weather", err)
	}
	if len(data.Weather) == 0 {
		return "An error occurred: no weather conditions in response"
	}
	return fmt.Sprintf("Current weather in %s: %s, Temperature: %s°C, Humidity: %s%%",
		city, data.Weather[0].Description, data.Main.Temp, data.Main.Humidity)
}

// ForecastSummary renders one line per distinct date of the forecast, at
// most days lines and never fewer than one when data exists.
func (c *Client) ForecastSummary(ctx context.Context, city string, days int) string {
	data, err := c.Forecast(ctx, city)
	if err != nil {
		return failureText("forecast", err)
	}

	var lines []string
	seen := make(map[string]bool)
	for _, item := range data.List {
		date, _, _ := strings.Cut(item.DtTxt, " ")
		if seen[date] {
			continue
		}
		seen[date] = true
		if len(item.Weather) == 0 {
			return "An error occurred: no weather conditions in forecast entry"
		}
		lines = append(lines, fmt.Sprintf("%s: %s, %s°C", date, item.Weather[0].Description, item.Main.Temp))
		if len(lines) >= days {
			break
		}
	}
	return fmt.Sprintf("Forecast for %s:\n", city) + strings.Join(lines, "\n")
}

func failureText(what string, err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Error fetching %s: %s", what, statusErr.Body)
	}
	return fmt.Sprintf("An error occurred: %v", err)
}

type currentArgs struct {
	City string `json:"city"`
}

type forecastArgs struct {
	City string `json:"city"`
	Days *int   `json:"days,omitempty"`
}

// Register adds the weather tools to reg.
func Register(reg *tools.Registry, client *Client) error {
	if err := reg.Register(tools.Tool{
		Name:        CurrentWeatherTool,
		Description: "Get the current weather for a specific city.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "The name of the city (e.g., 'London', 'New York').",
				},
			},
			"required": []any{"city"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args currentArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			return client.CurrentWeather(ctx, args.City), nil
		},
	}); err != nil {
		return err
	}

	return reg.Register(tools.Tool{
		Name:        ForecastTool,
		Description: "Get the weather forecast for a specific city.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{
					"type":        "string",
					"description": "The name of the city.",
				},
				"days": map[string]any{
					"type":        "integer",
					"description": "Number of days to forecast (default 3, max 5 for free tier usually).",
					"default":     DefaultForecastDays,
				},
			},
			"required": []any{"city"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args forecastArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			days := DefaultForecastDays
			if args.Days != nil {
				days = *args.Days
			}
			return client.ForecastSummary(ctx, args.City, days), nil
		},
	})
}
