// Package exchangetest는 테스트용 거래소 목을 제공합니다
package exchangetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange"
)

// Mock은 testify 기반 exchange.Exchange 구현입니다
type Mock struct {
	mock.Mock
	NoCredentials bool
}

var _ exchange.Exchange = (*Mock)(nil)

func (m *Mock) HasCredentials() bool {
	return !m.NoCredentials
}

func (m *Mock) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(float64), args.Error(1)
}

func (m *Mock) GetTickers(ctx context.Context, markets []string) ([]domain.Ticker, error) {
	args := m.Called(ctx, markets)
	if v := args.Get(0); v != nil {
		return v.([]domain.Ticker), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) GetOHLCV(ctx context.Context, ticker string, interval domain.TimeInterval, count int) (domain.CandleList, error) {
	args := m.Called(ctx, ticker, interval, count)
	if v := args.Get(0); v != nil {
		return v.(domain.CandleList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) GetMarkets(ctx context.Context) ([]domain.MarketInfo, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.MarketInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) GetBalances(ctx context.Context) (domain.Balances, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(domain.Balances), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*domain.OrderResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) GetOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if v := args.Get(0); v != nil {
		return v.(*domain.OrderResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Mock) CancelOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if v := args.Get(0); v != nil {
		return v.(*domain.OrderResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// OrderResponse는 테스트용 주문 응답을 만듭니다. 수치는 문자열로 받습니다.
func OrderResponse(uuid, market, side, ordType, state, volume, executed string) *domain.OrderResponse {
	resp := &domain.OrderResponse{
		UUID:      uuid,
		Market:    market,
		Side:      side,
		OrdType:   ordType,
		State:     state,
		CreatedAt: "2024-01-01T10:00:00+09:00",
	}
	if volume != "" {
		_ = resp.Volume.Scan(volume)
	}
	if executed != "" {
		_ = resp.ExecutedVolume.Scan(executed)
	}
	return resp
}
