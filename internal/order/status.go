package order

import (
	"context"
	"fmt"
	"time"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange"
	"github.com/assist-by/shark/internal/retry"
)

// MapState는 거래소 주문 상태를 정규화합니다.
// watch(예약 주문 대기)는 아직 체결 전이므로 Waiting으로 봅니다.
func MapState(raw string) domain.OrderState {
	switch raw {
	case "done":
		return domain.OrderDone
	case "cancel":
		return domain.OrderCancelled
	default:
		return domain.OrderWaiting
	}
}

// Normalize는 거래소 응답을 Order로 변환합니다
func Normalize(resp *domain.OrderResponse) domain.Order {
	o := domain.Order{
		ID:          resp.UUID,
		Ticker:      resp.Market,
		Side:        domain.OrderSide(resp.Side),
		Type:        domain.OrderType(resp.OrdType),
		State:       MapState(resp.State),
		RawState:    resp.State,
		TradesCount: resp.TradesCount,
		Raw:         resp.Raw,
	}

	if resp.Price.Valid {
		p := resp.Price.Decimal.InexactFloat64()
		o.Price = &p
	}

	requested := resp.Volume.Decimal
	executed := resp.ExecutedVolume.Decimal
	if resp.Volume.Valid {
		if executed.GreaterThan(requested) {
			executed = requested
		}
		o.RemainingQuantity = requested.Sub(executed).InexactFloat64()
	} else if resp.RemainingVolume.Valid {
		o.RemainingQuantity = resp.RemainingVolume.Decimal.InexactFloat64()
	}
	o.RequestedQuantity = requested.InexactFloat64()
	o.ExecutedQuantity = executed.InexactFloat64()

	if resp.PaidFee.Valid {
		o.PaidFee = resp.PaidFee.Decimal.InexactFloat64()
	}

	if t, err := time.Parse(time.RFC3339, resp.CreatedAt); err == nil {
		o.CreatedAt = t
	}

	return o
}

// ExecutionRate는 체결률(%)을 반환합니다. 주문 수량이 0이면 0입니다.
func ExecutionRate(o domain.Order) float64 {
	if o.RequestedQuantity <= 0 {
		return 0
	}
	return o.ExecutedQuantity / o.RequestedQuantity * 100
}

// StatusMessage는 주문 상태를 사람이 읽을 수 있는 문장으로 만듭니다
func StatusMessage(o domain.Order) string {
	switch o.State {
	case domain.OrderDone:
		return "주문이 모두 체결되었습니다."
	case domain.OrderCancelled:
		if o.ExecutedQuantity > 0 {
			return fmt.Sprintf("주문이 취소되었습니다. (체결률 %.2f%%)", ExecutionRate(o))
		}
		return "주문이 취소되었습니다."
	default:
		if o.ExecutedQuantity > 0 {
			return fmt.Sprintf("주문이 일부 체결되었습니다. (체결률 %.2f%%)", ExecutionRate(o))
		}
		return "주문이 체결 대기 중입니다."
	}
}

// Tracker는 주문 ID로 주문 상태를 조회합니다
type Tracker struct {
	exchange exchange.Exchange
	retry    *retry.Wrapper
}

// NewTracker는 새로운 주문 상태 조회기를 생성합니다
func NewTracker(ex exchange.Exchange, rw *retry.Wrapper) *Tracker {
	return &Tracker{exchange: ex, retry: rw}
}

// Check는 주문을 조회해 정규화된 Order를 반환합니다
func (t *Tracker) Check(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, NewOrderError("", "주문 조회", fmt.Errorf("%w: %w", domain.ErrValidation, ErrEmptyOrderID))
	}

	resp, err := retry.Call(ctx, t.retry, "주문 조회", func(ctx context.Context) (*domain.OrderResponse, error) {
		r, err := t.exchange.GetOrder(ctx, orderID)
		return r, exchange.Classify(err)
	})
	if err != nil {
		return nil, NewOrderError("", "주문 조회", retry.AsExchangeError(err))
	}

	order := Normalize(resp)
	return &order, nil
}
