package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderState는 정규화된 주문 상태입니다
type OrderState string

const (
	OrderWaiting   OrderState = "Waiting"
	OrderDone      OrderState = "Done"
	OrderCancelled OrderState = "Cancelled"
)

// OrderResponse는 거래소가 돌려준 주문 정보를 그대로 표현합니다
type OrderResponse struct {
	UUID            string              `json:"uuid"`
	Side            string              `json:"side"`
	OrdType         string              `json:"ord_type"`
	Price           decimal.NullDecimal `json:"price"`
	State           string              `json:"state"`
	Market          string              `json:"market"`
	CreatedAt       string              `json:"created_at"`
	Volume          decimal.NullDecimal `json:"volume"`
	RemainingVolume decimal.NullDecimal `json:"remaining_volume"`
	ExecutedVolume  decimal.NullDecimal `json:"executed_volume"`
	PaidFee         decimal.NullDecimal `json:"paid_fee"`
	TradesCount     int                 `json:"trades_count"`

	Raw json.RawMessage `json:"-"` // 원본 응답 본문
}

// Order는 거래소 응답을 정규화한 주문입니다
type Order struct {
	ID                string     `json:"order_id"`
	Ticker            string     `json:"market"`
	Side              OrderSide  `json:"side"`
	Type              OrderType  `json:"ord_type"`
	Price             *float64   `json:"price"`
	RequestedQuantity float64    `json:"volume"`
	ExecutedQuantity  float64    `json:"executed_volume"`
	RemainingQuantity float64    `json:"remaining_volume"`
	PaidFee           float64    `json:"paid_fee"`
	State             OrderState `json:"state"`
	RawState          string     `json:"raw_state"`
	TradesCount       int        `json:"trades_count"`
	CreatedAt         time.Time  `json:"created_at"`

	Raw json.RawMessage `json:"-"`
}

// TradeRecord는 자동매매 중 성공한 거래 한 건입니다
type TradeRecord struct {
	Timestamp  time.Time   `json:"timestamp"`
	Action     TradeAction `json:"action"`
	Ticker     string      `json:"ticker"`
	Amount     string      `json:"amount"` // 매수는 KRW 금액, 매도는 수량 또는 "all"
	PriceType  PriceType   `json:"price_type"`
	LimitPrice *float64    `json:"limit_price,omitempty"`
	OrderID    string      `json:"order_id"`
	Order      *Order      `json:"order,omitempty"`
}

// OrderRequest는 거래소에 보낼 주문 요청입니다.
// 시장가 매수는 Notional, 시장가 매도는 Volume, 지정가는 Price와 Volume을 사용합니다.
type OrderRequest struct {
	Ticker   string
	Side     OrderSide
	Type     OrderType
	Volume   decimal.Decimal
	Notional decimal.Decimal
	Price    decimal.Decimal
}
