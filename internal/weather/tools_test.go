package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pandu992003/weather-project-copy2/internal/tools"
)

const forecastBody = `{"list":[
	{"dt_txt":"2024-01-01 09:00:00","weather":[{"description":"light rain"}],"main":{"temp":7.5}},
	{"dt_txt":"2024-01-01 12:00:00","weather":[{"description":"overcast clouds"}],"main":{"temp":8.1}},
	{"dt_txt":"2024-01-02 09:00:00","weather":[{"description":"clear sky"}],"main":{"temp":5}},
	{"dt_txt":"2024-01-03 09:00:00","weather":[{"description":"snow"}],"main":{"temp":-1.25}}
]}`

func newWeatherServer(t *testing.T, status int, body string) (*Client, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", "test-key", 5*time.Second), &seen
}

func TestCurrentWeather(t *testing.T) {
	client, seen := newWeatherServer(t, http.StatusOK,
		`{"weather":[{"description":"clear sky"}],"main":{"temp":15.2,"humidity":60}}`)

	got := client.CurrentWeather(context.Background(), "London")
	want := "Current weather in London: clear sky, Temperature: 15.2°C, Humidity: 60%"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	req := (*seen)[0]
	if req.URL.Path != "/weather" {
		t.Fatalf("unexpected path: %s", req.URL.Path)
	}
	q := req.URL.Query()
	if q.Get("q") != "London" || q.Get("appid") != "test-key" || q.Get("units") != "metric" {
		t.Fatalf("unexpected query: %s", req.URL.RawQuery)
	}
}

func TestForecastSummary(t *testing.T) {
	client, seen := newWeatherServer(t, http.StatusOK, forecastBody)

	got := client.ForecastSummary(context.Background(), "Paris", 2)
	want := "Forecast for Paris:\n2024-01-01: light rain, 7.5°C\n2024-01-02: clear sky, 5°C"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if (*seen)[0].URL.Path != "/forecast" {
		t.Fatalf("unexpected path: %s", (*seen)[0].URL.Path)
	}

	if got := client.ForecastSummary(context.Background(), "Paris", 0); got != "Forecast for Paris:\n2024-01-01: light rain, 7.5°C" {
		t.Fatalf("days < 1 should still yield one line, got %q", got)
	}
	if got := client.ForecastSummary(context.Background(), "Paris", 10); got != "Forecast for Paris:\n2024-01-01: light rain, 7.5°C\n2024-01-02: clear sky, 5°C\n2024-01-03: snow, -1.25°C" {
		t.Fatalf("unexpected long forecast: %q", got)
	}
}

func TestWeatherFailuresDegradeToText(t *testing.T) {
	client, _ := newWeatherServer(t, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)

	if got := client.CurrentWeather(context.Background(), "Atlantis"); got != `Error fetching weather: {"cod":"404","message":"city not found"}` {
		t.Fatalf("unexpected weather failure text: %q", got)
	}
	if got := client.ForecastSummary(context.Background(), "Atlantis", 3); got != `Error fetching forecast: {"cod":"404","message":"city not found"}` {
		t.Fatalf("unexpected forecast failure text: %q", got)
	}

	noKey := NewClient("http://127.0.0.1:1", "", time.Second)
	want := "An error occurred: OPENWEATHER_API_KEY is not set in environment variables."
	if got := noKey.CurrentWeather(context.Background(), "London"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	bad, _ := newWeatherServer(t, http.StatusOK, `not json`)
	if got := bad.CurrentWeather(context.Background(), "London"); !strings.HasPrefix(got, "An error occurred: failed to parse response") {
		t.Fatalf("unexpected parse failure text: %q", got)
	}
}

func TestRegisteredHandlers(t *testing.T) {
	client, seen := newWeatherServer(t, http.StatusOK, forecastBody)
	reg := tools.NewRegistry()
	if err := Register(reg, client); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	list := reg.List()
	if len(list) != 2 || list[0].Name != CurrentWeatherTool || list[1].Name != ForecastTool {
		t.Fatalf("unexpected tools: %+v", list)
	}

	out, err := reg.Execute(context.Background(), ForecastTool, json.RawMessage(`{"city":"Rome"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := "Forecast for Rome:\n2024-01-01: light rain, 7.5°C\n2024-01-02: clear sky, 5°C\n2024-01-03: snow, -1.25°C"
	if out != want {
		t.Fatalf("days should default to 3, got %q", out)
	}
	if len(*seen) != 1 {
		t.Fatalf("expected one upstream request, got %d", len(*seen))
	}

	if _, err := reg.Execute(context.Background(), ForecastTool, json.RawMessage(`{"city":"Rome","days":"two"}`)); err == nil {
		t.Fatalf("expected error for non-integer days")
	}
}
