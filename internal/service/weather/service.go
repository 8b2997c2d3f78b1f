package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yuchinlin/line-gemini-bot/internal/config"
)

// Service looks up current weather for a city via the OpenWeatherMap API.
// Every outcome, including upstream failure, is rendered as reply text for
// the end user; Lookup never returns an error value.
type Service struct {
	cfg    config.WeatherConfig
	client *http.Client
}

// NewService creates the weather adapter. A nil client falls back to
// http.DefaultClient.
func NewService(cfg config.WeatherConfig, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{cfg: cfg, client: client}
}

type currentWeather struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
}

// Lookup fetches current conditions for the city and renders the reply.
func (s *Service) Lookup(ctx context.Context, city string) string {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", s.cfg.APIKey)
	query.Set("units", "metric")
	query.Set("lang", "zh_tw")

	endpoint := s.cfg.BaseURL + "/data/2.5/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Sprintf("查詢天氣發生錯誤：%v", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("查詢天氣發生錯誤：%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("查詢失敗，請確認城市名稱（錯誤碼 %d）", resp.StatusCode)
	}

	var data currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Sprintf("查詢天氣發生錯誤：%v", err)
	}

	description := ""
	if len(data.Weather) > 0 {
		description = data.Weather[0].Description
	}

	return fmt.Sprintf("🌤 %s 的天氣：\n狀況：%s\n氣溫：%g°C\n體感：%g°C\n濕度：%d%%",
		data.Name, description, data.Main.Temp, data.Main.FeelsLike, data.Main.Humidity)
}
