package autotrader

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/notification"
	"github.com/assist-by/shark/internal/trading"
)

// tradeRecorder는 주기 중 실행되는 매수/매도에 한도를 적용하고 성공한 거래를 기록합니다
type tradeRecorder struct {
	trader *AutoTrader
	cfg    Config
}

var _ trading.TradeHook = (*tradeRecorder)(nil)

func (r *tradeRecorder) BeforeTrade(ctx context.Context, intent trading.TradeIntent) error {
	a := r.trader

	now := a.now()

	a.mu.Lock()
	a.rollover(now)
	count := a.state.DailyTradingCount
	if count >= r.cfg.MaxTradingCount {
		a.mu.Unlock()
		a.notifyLimit(ctx, now, r.cfg.MaxTradingCount)
		return &trading.StateError{Reason: fmt.Sprintf("일일 거래 한도 도달 (%d/%d)", count, r.cfg.MaxTradingCount)}
	}
	if intent.Action == domain.ActionBuy && intent.Amount > r.cfg.MaxInvestment {
		a.mu.Unlock()
		return &trading.ValidationError{
			Field: "amount",
			Err:   fmt.Errorf("1회 최대 투자 금액(%.0f원)을 초과했습니다: %.0f원", r.cfg.MaxInvestment, intent.Amount),
		}
	}
	if a.state.IsRunning {
		a.state.Status = StatusExecuting
	}
	a.mu.Unlock()
	return nil
}

func (r *tradeRecorder) AfterTrade(ctx context.Context, intent trading.TradeIntent, order *domain.Order) {
	a := r.trader

	now := a.now()
	rec := domain.TradeRecord{
		Timestamp:  now,
		Action:     intent.Action,
		Ticker:     intent.Ticker,
		Amount:     intent.AmountText,
		PriceType:  intent.PriceType,
		LimitPrice: intent.LimitPrice,
		Order:      order,
	}
	if order != nil {
		rec.OrderID = order.ID
	}

	a.mu.Lock()
	a.rollover(now)
	a.history = append(a.history, rec)
	a.state.DailyTradingCount++
	count := a.state.DailyTradingCount
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{
		"ticker":      rec.Ticker,
		"action":      rec.Action,
		"order_id":    rec.OrderID,
		"daily_count": count,
	}).Info("거래 기록")

	if err := a.store.SaveTrade(ctx, rec); err != nil {
		a.log.WithError(err).Warn("거래 기록 저장 실패")
	}

	if err := a.notifier.SendTrade(ctx, notification.NewTradeInfo(rec)); err != nil {
		a.log.WithError(err).Warn("거래 알림 전송 실패")
	}
}
