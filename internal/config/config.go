package config

import (
	"fmt"
	"os"
	"strings"
)

// Config 彙整整個服務的設定項。
type Config struct {
	Server  ServerConfig
	Line    LineConfig
	Gemini  GeminiConfig
	Weather WeatherConfig
	Store   StoreConfig
}

// Load 從環境變數載入設定。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	line, err := loadLineConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Line:    line,
		Gemini:  loadGeminiConfig(),
		Weather: loadWeatherConfig(),
		Store:   loadStoreConfig(),
	}, nil
}

// ServerConfig 描述 HTTP 服務設定。
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允許直接傳入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LineConfig 描述 LINE 平台憑證。
type LineConfig struct {
	ChannelSecret string
	ChannelToken  string
}

func loadLineConfig() (LineConfig, error) {
	secret := strings.TrimSpace(os.Getenv("LINE_CHANNEL_SECRET"))
	token := strings.TrimSpace(os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"))

	if secret == "" || token == "" {
		return LineConfig{}, fmt.Errorf("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN are required")
	}

	return LineConfig{ChannelSecret: secret, ChannelToken: token}, nil
}

// GeminiConfig 描述文字生成模型設定。
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Enabled 表示是否提供了必需的金鑰。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadGeminiConfig() GeminiConfig {
	return GeminiConfig{
		APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
	}
}

// WeatherConfig 描述天氣查詢服務設定。
type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

func loadWeatherConfig() WeatherConfig {
	return WeatherConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY")),
		BaseURL: getEnvOrDefault("OPENWEATHER_BASE_URL", "http://api.openweathermap.org"),
	}
}

// StoreConfig 描述對話紀錄資料庫設定。
type StoreConfig struct {
	Path string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Path: getEnvOrDefault("HISTORY_DB_PATH", "chat_history.db"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
