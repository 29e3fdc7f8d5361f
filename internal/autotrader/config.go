package autotrader

import (
	"fmt"
	"time"

	"github.com/assist-by/shark/internal/config"
	"github.com/assist-by/shark/internal/domain"
)

// Config는 자동매매 설정입니다. 변경은 항상 UpdateConfig로 통째로 교체합니다.
type Config struct {
	Interval        time.Duration    // 주기
	MaxInvestment   float64          // 1회 최대 매수 금액 (KRW)
	MaxTradingCount int              // 하루 최대 거래 횟수
	TargetCoins     []string         // 관찰 대상 마켓 (KRW-BTC 형태)
	RiskLevel       domain.RiskLevel // 위험 성향
	Model           string           // 의사결정 에이전트 모델
}

// ConfigFrom은 환경 설정에서 자동매매 설정을 만듭니다
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Interval:        cfg.Trading.Interval,
		MaxInvestment:   cfg.Trading.MaxInvestment,
		MaxTradingCount: cfg.Trading.MaxTradingCount,
		TargetCoins:     cfg.Trading.TargetCoins,
		RiskLevel:       domain.ParseRiskLevel(cfg.Trading.RiskLevel),
		Model:           cfg.Agent.Model,
	}.clone()
}

// Validate는 설정이 유효한지 확인하고 티커를 정규화합니다
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: 주기는 0보다 커야 합니다", domain.ErrValidation)
	}
	if c.MaxInvestment <= 0 {
		return fmt.Errorf("%w: 최대 투자 금액은 0보다 커야 합니다", domain.ErrValidation)
	}
	if c.MaxTradingCount < 1 {
		return fmt.Errorf("%w: 일일 최대 거래 횟수는 1 이상이어야 합니다", domain.ErrValidation)
	}
	if len(c.TargetCoins) == 0 {
		return fmt.Errorf("%w: 대상 코인이 비어 있습니다", domain.ErrValidation)
	}

	seen := make(map[string]bool, len(c.TargetCoins))
	coins := make([]string, 0, len(c.TargetCoins))
	for _, coin := range c.TargetCoins {
		t := domain.NormalizeTicker(coin)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		coins = append(coins, t)
	}
	c.TargetCoins = coins
	c.RiskLevel = domain.ParseRiskLevel(string(c.RiskLevel))
	return nil
}

func (c Config) clone() Config {
	c.TargetCoins = append([]string(nil), c.TargetCoins...)
	return c
}
