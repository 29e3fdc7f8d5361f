package trading

import (
	"context"
	"fmt"
	"strings"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/order"
)

// CheckOrderStatus는 주문 상태와 체결률을 조회합니다
func (d *Dispatcher) CheckOrderStatus(ctx context.Context, raw any) Result {
	var args orderArgs
	if err := d.bind(ToolCheckOrderStatus, raw, &args); err != nil {
		return fail(err)
	}
	orderID := strings.TrimSpace(args.OrderID)
	if orderID == "" {
		return fail(invalid("order_id", "주문 ID(order_id)가 지정되지 않았습니다."))
	}

	o, err := d.tracker.Check(ctx, orderID)
	if err != nil {
		return fail(err)
	}

	return Result{
		Success:     true,
		Message:     fmt.Sprintf("%s 주문 %s: %s", o.Ticker, o.ID, order.StatusMessage(*o)),
		Ticker:      o.Ticker,
		OrderID:     o.ID,
		Order:       o,
		OrderStatus: statusOf(o),
	}
}

// CancelOrder는 대기 중인 주문을 취소합니다
func (d *Dispatcher) CancelOrder(ctx context.Context, raw any) Result {
	var args orderArgs
	if err := d.bind(ToolCancelOrder, raw, &args); err != nil {
		return fail(err)
	}
	orderID := strings.TrimSpace(args.OrderID)
	if orderID == "" {
		return fail(invalid("order_id", "주문 ID(order_id)가 지정되지 않았습니다."))
	}

	o, err := d.executor.Cancel(ctx, orderID)
	if err != nil {
		return fail(err)
	}

	return Result{
		Success:     true,
		Message:     fmt.Sprintf("%s 주문 %s 취소 요청이 접수되었습니다.", o.Ticker, o.ID),
		Ticker:      o.Ticker,
		OrderID:     o.ID,
		Order:       o,
		OrderStatus: statusOf(o),
	}
}

func statusOf(o *domain.Order) *OrderStatus {
	return &OrderStatus{
		State:          o.State,
		Market:         o.Ticker,
		Side:           o.Side,
		Price:          o.Price,
		Volume:         o.RequestedQuantity,
		ExecutedVolume: o.ExecutedQuantity,
		ExecutionRate:  order.ExecutionRate(*o),
		CreatedAt:      o.CreatedAt,
	}
}
