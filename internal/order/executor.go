package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange"
	"github.com/assist-by/shark/internal/logger"
	"github.com/assist-by/shark/internal/retry"
)

// Executor는 거래소 주문을 생성하고 응답을 Order로 정규화합니다
type Executor struct {
	exchange exchange.Exchange
	retry    *retry.Wrapper
	log      *logrus.Entry
}

// NewExecutor는 새로운 주문 실행기를 생성합니다
func NewExecutor(ex exchange.Exchange, rw *retry.Wrapper) *Executor {
	return &Executor{
		exchange: ex,
		retry:    rw,
		log:      logger.Component("order"),
	}
}

// BuyMarket은 KRW 금액만큼 시장가 매수합니다
func (e *Executor) BuyMarket(ctx context.Context, ticker string, notional decimal.Decimal) (*domain.Order, error) {
	if !notional.IsPositive() {
		return nil, NewOrderError(ticker, "시장가 매수", fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidPrice))
	}
	return e.place(ctx, "시장가 매수", domain.OrderRequest{
		Ticker:   ticker,
		Side:     domain.Bid,
		Type:     domain.OrderTypePrice,
		Notional: notional,
	})
}

// SellMarket은 지정 수량을 시장가 매도합니다
func (e *Executor) SellMarket(ctx context.Context, ticker string, volume decimal.Decimal) (*domain.Order, error) {
	if !volume.IsPositive() {
		return nil, NewOrderError(ticker, "시장가 매도", fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidVolume))
	}
	return e.place(ctx, "시장가 매도", domain.OrderRequest{
		Ticker: ticker,
		Side:   domain.Ask,
		Type:   domain.OrderTypeMarket,
		Volume: volume,
	})
}

// BuyLimit은 지정가 매수 주문을 냅니다
func (e *Executor) BuyLimit(ctx context.Context, ticker string, price, volume decimal.Decimal) (*domain.Order, error) {
	return e.limit(ctx, "지정가 매수", ticker, domain.Bid, price, volume)
}

// SellLimit은 지정가 매도 주문을 냅니다
func (e *Executor) SellLimit(ctx context.Context, ticker string, price, volume decimal.Decimal) (*domain.Order, error) {
	return e.limit(ctx, "지정가 매도", ticker, domain.Ask, price, volume)
}

// Cancel은 대기 중인 주문을 취소하고 취소 요청 시점의 주문 상태를 반환합니다
func (e *Executor) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, NewOrderError("", "주문 취소", fmt.Errorf("%w: %w", domain.ErrValidation, ErrEmptyOrderID))
	}

	resp, err := retry.Call(ctx, e.retry, "주문 취소", func(ctx context.Context) (*domain.OrderResponse, error) {
		r, err := e.exchange.CancelOrder(ctx, orderID)
		return r, exchange.Classify(err)
	})
	if err != nil {
		return nil, NewOrderError("", "주문 취소", retry.AsExchangeError(err))
	}

	order := Normalize(resp)
	e.log.WithField("order_id", orderID).Info("주문 취소 요청 완료")
	return &order, nil
}

func (e *Executor) limit(ctx context.Context, op, ticker string, side domain.OrderSide, price, volume decimal.Decimal) (*domain.Order, error) {
	if !price.IsPositive() {
		return nil, NewOrderError(ticker, op, fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidPrice))
	}
	if !volume.IsPositive() {
		return nil, NewOrderError(ticker, op, fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidVolume))
	}
	return e.place(ctx, op, domain.OrderRequest{
		Ticker: ticker,
		Side:   side,
		Type:   domain.OrderTypeLimit,
		Price:  price,
		Volume: volume,
	})
}

// place는 재시도 래퍼 안에서 주문을 생성합니다
func (e *Executor) place(ctx context.Context, op string, req domain.OrderRequest) (*domain.Order, error) {
	resp, err := retry.Call(ctx, e.retry, fmt.Sprintf("%s %s", req.Ticker, op), func(ctx context.Context) (*domain.OrderResponse, error) {
		r, err := e.exchange.PlaceOrder(ctx, req)
		return r, exchange.Classify(err)
	})
	if err != nil {
		return nil, NewOrderError(req.Ticker, op, retry.AsExchangeError(err))
	}

	if resp == nil || resp.UUID == "" {
		return nil, NewOrderError(req.Ticker, op, fmt.Errorf("%w: %w", domain.ErrState, ErrNoOrderID))
	}

	order := Normalize(resp)
	e.log.WithFields(logrus.Fields{
		"ticker":   req.Ticker,
		"side":     req.Side,
		"ord_type": req.Type,
		"order_id": order.ID,
	}).Info("주문 접수 완료")
	return &order, nil
}
