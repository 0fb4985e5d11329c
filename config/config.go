package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// リスト選択ルール
const (
	ListMatchPrefix    = "prefix"
	ListMatchAllowList = "allowlist"
)

// ラベル数値の解釈
const (
	LabelNumberInt   = "int"
	LabelNumberFloat = "float"
)

// プロダクトバックログの導出方式
const (
	StrategyRecompute = "recompute"
	StrategyReconcile = "reconcile"
)

// DefaultBaseURL はTrello REST APIのベースURLです
const DefaultBaseURL = "https://api.trello.com/1"

// ErrMissingCredentials は必須の認証情報が設定されていない場合のエラーです
var ErrMissingCredentials = errors.New("必須の設定が不足しています")

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Trello API設定
	APIKey      string        `yaml:"-"`
	Token       string        `yaml:"-"`
	BoardID     string        `yaml:"board_id"`
	BaseURL     string        `yaml:"base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// カードインポート設定
	ListName  string `yaml:"list_name"`
	CardsFile string `yaml:"cards_file"`

	// スナップショットファイル
	SprintFile  string `yaml:"sprint_file"`
	ProductFile string `yaml:"product_file"`

	// スプリント集計設定
	ListMatch    string   `yaml:"list_match"`
	ListPrefix   string   `yaml:"list_prefix"`
	AllowedLists []string `yaml:"allowed_lists"`
	LabelNumber  string   `yaml:"label_number"`

	// プロダクトバックログ設定
	ProductStrategy string `yaml:"product_strategy"`

	// グラフ設定
	SprintTargetDate string `yaml:"sprint_target_date"`
	ChartDir         string `yaml:"chart_dir"`

	LogLevel string `yaml:"log_level"`
}

// Default はデフォルト値で埋めた設定を返します
func Default() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		ListName:         "General BackLog",
		CardsFile:        "cards.txt",
		SprintFile:       "Sprint1 BurnDownChart.txt",
		ProductFile:      "ProductInfo.txt",
		ListMatch:        ListMatchPrefix,
		ListPrefix:       "sp ",
		AllowedLists:     []string{},
		LabelNumber:      LabelNumberInt,
		ProductStrategy:  StrategyRecompute,
		SprintTargetDate: "2025-12-05",
		ChartDir:         ".",
		LogLevel:         "info",
	}
}

// LoadConfig は .env、設定ファイル(TRACKER_CONFIG)、環境変数の順に設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv("TRACKER_CONFIG"); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFile はYAML設定ファイルの値で上書きします
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイル読み込みエラー: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイル解析エラー: %w", err)
	}

	return nil
}

// applyEnv は環境変数の値で上書きします
func (c *Config) applyEnv() error {
	c.APIKey = os.Getenv("API_KEY")
	c.Token = os.Getenv("TOKEN")
	c.BoardID = getEnvWithDefault("BOARD_ID", c.BoardID)
	c.BaseURL = strings.TrimRight(getEnvWithDefault("TRELLO_BASE_URL", c.BaseURL), "/")
	c.ListName = getEnvWithDefault("LIST_NAME", c.ListName)
	c.CardsFile = getEnvWithDefault("CARDS_FILE", c.CardsFile)
	c.SprintFile = getEnvWithDefault("SPRINT_FILE", c.SprintFile)
	c.ProductFile = getEnvWithDefault("PRODUCT_FILE", c.ProductFile)
	c.ListMatch = strings.ToLower(getEnvWithDefault("LIST_MATCH", c.ListMatch))
	c.ListPrefix = getEnvWithDefault("LIST_PREFIX", c.ListPrefix)
	c.LabelNumber = strings.ToLower(getEnvWithDefault("LABEL_NUMBER", c.LabelNumber))
	c.ProductStrategy = strings.ToLower(getEnvWithDefault("PRODUCT_STRATEGY", c.ProductStrategy))
	c.SprintTargetDate = getEnvWithDefault("SPRINT_TARGET_DATE", c.SprintTargetDate)
	c.ChartDir = getEnvWithDefault("CHART_DIR", c.ChartDir)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("ALLOWED_LISTS"); v != "" {
		c.AllowedLists = splitList(v)
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT の形式が不正です: %w", err)
		}
		c.HTTPTimeout = d
	}

	return nil
}

// Validate は必須項目と列挙値をチェックします
func (c *Config) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "API_KEY")
	}
	if c.Token == "" {
		missing = append(missing, "TOKEN")
	}
	if c.BoardID == "" {
		missing = append(missing, "BOARD_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	switch c.ListMatch {
	case ListMatchPrefix, ListMatchAllowList:
	default:
		return fmt.Errorf("LIST_MATCH の値が不正です: %q", c.ListMatch)
	}
	if c.ListMatch == ListMatchAllowList && len(c.AllowedLists) == 0 {
		return fmt.Errorf("LIST_MATCH=%s には ALLOWED_LISTS の指定が必要です", ListMatchAllowList)
	}

	switch c.LabelNumber {
	case LabelNumberInt, LabelNumberFloat:
	default:
		return fmt.Errorf("LABEL_NUMBER の値が不正です: %q", c.LabelNumber)
	}

	switch c.ProductStrategy {
	case StrategyRecompute, StrategyReconcile:
	default:
		return fmt.Errorf("PRODUCT_STRATEGY の値が不正です: %q", c.ProductStrategy)
	}

	if _, err := time.Parse("2006-01-02", c.SprintTargetDate); err != nil {
		return fmt.Errorf("SPRINT_TARGET_DATE の形式が不正です: %w", err)
	}

	return nil
}

// デフォルト値付きで環境変数を取得
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// カンマ区切りの値を分割（空要素は除外）
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
