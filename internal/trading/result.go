package trading

import (
	"time"

	"github.com/assist-by/shark/internal/domain"
)

// Result는 도구 호출 결과입니다. 실패도 에러가 아닌 Result로 돌려줍니다.
type Result struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	ErrorKind domain.ErrorKind `json:"error_kind,omitempty"`
	Demo      bool             `json:"demo,omitempty"`

	Ticker      string        `json:"ticker,omitempty"`
	OrderID     string        `json:"order_id,omitempty"`
	Order       *domain.Order `json:"order,omitempty"`
	Coins       []CoinInfo    `json:"coins,omitempty"`
	Portfolio   []CoinInfo    `json:"portfolio,omitempty"`
	PriceInfo   *PriceInfo    `json:"price_info,omitempty"`
	OrderStatus *OrderStatus  `json:"order_status,omitempty"`
}

// CoinInfo는 코인 목록의 항목입니다
type CoinInfo struct {
	Ticker      string  `json:"ticker"`
	KoreanName  string  `json:"korean_name,omitempty"`
	Balance     float64 `json:"balance,omitempty"`
	AvgBuyPrice float64 `json:"avg_buy_price,omitempty"`
}

// PriceInfo는 코인 가격 조회 결과입니다
type PriceInfo struct {
	CurrentPrice float64 `json:"current_price"`
	Balance      float64 `json:"balance"`
	AvgBuyPrice  float64 `json:"avg_buy_price"`
	OHLCV        []OHLCV `json:"ohlcv"`
}

// OHLCV는 일봉 한 개입니다
type OHLCV struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// OrderStatus는 주문 상태 조회 결과입니다
type OrderStatus struct {
	State          domain.OrderState `json:"state"`
	Market         string            `json:"market"`
	Side           domain.OrderSide  `json:"side"`
	Price          *float64          `json:"price"`
	Volume         float64           `json:"volume"`
	ExecutedVolume float64           `json:"executed_volume"`
	ExecutionRate  float64           `json:"execution_rate"`
	CreatedAt      time.Time         `json:"created_at"`
}

func fail(err error) Result {
	return Result{
		Success:   false,
		Message:   err.Error(),
		ErrorKind: domain.KindOf(err),
	}
}
