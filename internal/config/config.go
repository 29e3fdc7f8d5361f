package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// 업비트 API 설정
	Upbit struct {
		AccessKey string        `envconfig:"UPBIT_ACCESS_KEY"`
		SecretKey string        `envconfig:"UPBIT_SECRET_KEY"`
		BaseURL   string        `envconfig:"UPBIT_BASE_URL" default:"https://api.upbit.com"`
		Timeout   time.Duration `envconfig:"EXCHANGE_TIMEOUT" default:"10s"`
		RateLimit float64       `envconfig:"UPBIT_RATE_LIMIT" default:"8"`
	}

	// 의사결정 에이전트 설정
	Agent struct {
		APIKey    string        `envconfig:"ANTHROPIC_API_KEY"`
		Model     string        `envconfig:"AGENT_MODEL" default:"claude-sonnet-4-5"`
		MaxTurns  int           `envconfig:"AGENT_MAX_TURNS" default:"8"`
		MaxTokens int64         `envconfig:"AGENT_MAX_TOKENS" default:"2048"`
		Timeout   time.Duration `envconfig:"AGENT_TIMEOUT" default:"3m"`
	}

	// 디스코드 웹훅 설정 (비어 있으면 전송하지 않음)
	Discord struct {
		TradeWebhook string        `envconfig:"DISCORD_TRADE_WEBHOOK"`
		ErrorWebhook string        `envconfig:"DISCORD_ERROR_WEBHOOK"`
		InfoWebhook  string        `envconfig:"DISCORD_INFO_WEBHOOK"`
		Timeout      time.Duration `envconfig:"DISCORD_TIMEOUT" default:"5s"`
	}

	// 자동매매 설정
	Trading struct {
		Interval             time.Duration `envconfig:"TRADING_INTERVAL" default:"5m"`
		MaxInvestment        float64       `envconfig:"TRADING_MAX_INVESTMENT" default:"100000"`
		MaxTradingCount      int           `envconfig:"TRADING_MAX_COUNT" default:"5"`
		TargetCoins          []string      `envconfig:"TRADING_TARGET_COINS" default:"KRW-BTC,KRW-ETH"`
		RiskLevel            string        `envconfig:"TRADING_RISK_LEVEL" default:"conservative"`
		FullBalanceThreshold float64       `envconfig:"TRADING_FULL_BALANCE_THRESHOLD" default:"0.99"`
		FeeReserveRate       float64       `envconfig:"TRADING_FEE_RESERVE_RATE" default:"0.9995"`
	}

	// 재시도 설정
	Retry struct {
		MaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
		Delay       time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
	}

	// 애플리케이션 설정
	App struct {
		HTTPAddr      string `envconfig:"HTTP_ADDR"`
		StorePath     string `envconfig:"STORE_PATH"` // 비어 있으면 거래 기록을 메모리에만 보관
		LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
		LogFile       string `envconfig:"LOG_FILE"`
		LogMaxSize    int    `envconfig:"LOG_MAX_SIZE" default:"100"`
		LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
		LogMaxAge     int    `envconfig:"LOG_MAX_AGE" default:"7"`
	}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
// 자격 증명 누락은 여기서 검사하지 않고 자동매매 시작 시점에 확인합니다.
func ValidateConfig(cfg *Config) error {
	if cfg.Trading.Interval < 10*time.Second {
		return fmt.Errorf("TRADING_INTERVAL은 10초 이상이어야 합니다")
	}

	if cfg.Trading.MaxInvestment <= 0 {
		return fmt.Errorf("TRADING_MAX_INVESTMENT는 0보다 커야 합니다")
	}

	if cfg.Trading.MaxTradingCount < 1 {
		return fmt.Errorf("TRADING_MAX_COUNT는 1 이상이어야 합니다")
	}

	if len(cfg.Trading.TargetCoins) == 0 {
		return fmt.Errorf("TRADING_TARGET_COINS가 비어 있습니다")
	}
	for i, coin := range cfg.Trading.TargetCoins {
		cfg.Trading.TargetCoins[i] = strings.ToUpper(strings.TrimSpace(coin))
	}

	if t := cfg.Trading.FullBalanceThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("TRADING_FULL_BALANCE_THRESHOLD는 0 초과 1 이하이어야 합니다")
	}

	if r := cfg.Trading.FeeReserveRate; r <= 0 || r > 1 {
		return fmt.Errorf("TRADING_FEE_RESERVE_RATE는 0 초과 1 이하이어야 합니다")
	}

	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS는 1 이상이어야 합니다")
	}

	if cfg.Agent.MaxTurns < 1 {
		return fmt.Errorf("AGENT_MAX_TURNS는 1 이상이어야 합니다")
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
func LoadConfig() (*Config, error) {
	// .env 파일은 선택 사항
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}
