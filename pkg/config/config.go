package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jinford/deck-doctor/pkg/models"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// AnkiConnect設定
	AnkiConnect AnkiConnectConfig

	// Database設定（分析履歴の保存用）
	Database DatabaseConfig

	// カード作成・検証のデフォルト動作
	Defaults DefaultsConfig

	// シンタックスハイライト設定
	Highlight HighlightConfig
}

// AnkiConnectConfig は AnkiConnect API の接続設定
type AnkiConnectConfig struct {
	URL     string
	Version int
	Timeout time.Duration
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultsConfig はカード操作のデフォルト値
type DefaultsConfig struct {
	// Deck はデッキ未指定時の作成先
	Deck string
	// Strictness はバリデーションの厳格度
	Strictness models.Strictness
}

// HighlightConfig はコードハイライトの出力設定
type HighlightConfig struct {
	Style           string
	LineNumbers     bool
	CenterFragments bool
	FontSize        int
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		AnkiConnect: AnkiConnectConfig{
			URL:     getEnv("ANKI_CONNECT_URL", "http://localhost:8765"),
			Version: getEnvAsInt("ANKI_CONNECT_VERSION", 6),
			Timeout: time.Duration(getEnvAsInt("ANKI_CONNECT_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "deckdoctor"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "deckdoctor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Defaults: DefaultsConfig{
			Deck:       getEnv("DEFAULT_DECK", "Default"),
			Strictness: models.Strictness(getEnv("VALIDATION_STRICTNESS", string(models.StrictnessModerate))),
		},
		Highlight: HighlightConfig{
			Style:           getEnv("HIGHLIGHT_STYLE", "monokai"),
			LineNumbers:     getEnvAsBool("HIGHLIGHT_LINE_NUMBERS", false),
			CenterFragments: getEnvAsBool("HIGHLIGHT_CENTER", true),
			FontSize:        getEnvAsInt("HIGHLIGHT_FONT_SIZE", 15),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
