package httpapi

import (
	"time"

	"github.com/assist-by/shark/internal/autotrader"
	"github.com/assist-by/shark/internal/domain"
)

// ConfigPayload는 API에서 주고받는 자동매매 설정입니다
type ConfigPayload struct {
	IntervalSeconds int      `json:"interval_seconds" binding:"required,min=1"`
	MaxInvestment   float64  `json:"max_investment" binding:"required,gt=0"`
	MaxTradingCount int      `json:"max_trading_count" binding:"required,min=1"`
	TargetCoins     []string `json:"target_coins" binding:"required,min=1"`
	RiskLevel       string   `json:"risk_level"`
	Model           string   `json:"model"`
}

func newConfigPayload(cfg autotrader.Config) ConfigPayload {
	return ConfigPayload{
		IntervalSeconds: int(cfg.Interval / time.Second),
		MaxInvestment:   cfg.MaxInvestment,
		MaxTradingCount: cfg.MaxTradingCount,
		TargetCoins:     cfg.TargetCoins,
		RiskLevel:       string(cfg.RiskLevel),
		Model:           cfg.Model,
	}
}

func (p ConfigPayload) toConfig() autotrader.Config {
	return autotrader.Config{
		Interval:        time.Duration(p.IntervalSeconds) * time.Second,
		MaxInvestment:   p.MaxInvestment,
		MaxTradingCount: p.MaxTradingCount,
		TargetCoins:     p.TargetCoins,
		RiskLevel:       domain.ParseRiskLevel(p.RiskLevel),
		Model:           p.Model,
	}
}

// StatusResponse는 GET /api/autotrader/status 응답입니다
type StatusResponse struct {
	State  autotrader.RunState `json:"state"`
	Config ConfigPayload       `json:"config"`
}
