package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/assist-by/shark/internal/domain"
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendTrade는 체결 요청된 거래 정보를 전송합니다
	SendTrade(ctx context.Context, info TradeInfo) error

	// SendError는 에러 알림을 전송합니다
	SendError(ctx context.Context, err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(ctx context.Context, message string) error
}

// TradeInfo는 자동매매가 기록한 거래 한 건의 알림 내용입니다
type TradeInfo struct {
	Timestamp  time.Time
	Action     domain.TradeAction
	Ticker     string
	Amount     string // 매수는 KRW 금액, 매도는 수량 또는 "all"
	PriceType  domain.PriceType
	LimitPrice *float64
	OrderID    string
	State      domain.OrderState
	RawOrder   json.RawMessage // 거래소 원본 응답
}

// NewTradeInfo는 거래 기록에서 알림 내용을 만듭니다
func NewTradeInfo(rec domain.TradeRecord) TradeInfo {
	info := TradeInfo{
		Timestamp:  rec.Timestamp,
		Action:     rec.Action,
		Ticker:     rec.Ticker,
		Amount:     rec.Amount,
		PriceType:  rec.PriceType,
		LimitPrice: rec.LimitPrice,
		OrderID:    rec.OrderID,
	}
	if rec.Order != nil {
		info.State = rec.Order.State
		info.RawOrder = rec.Order.Raw
	}
	return info
}

// Nop은 아무것도 전송하지 않는 Notifier입니다
type Nop struct{}

func (Nop) SendTrade(context.Context, TradeInfo) error { return nil }
func (Nop) SendError(context.Context, error) error     { return nil }
func (Nop) SendInfo(context.Context, string) error     { return nil }
