package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/shark/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListTrades(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	price := 50000000.0
	order := &domain.Order{
		ID:                "order-2",
		Ticker:            "KRW-BTC",
		Side:              domain.Bid,
		Type:              domain.OrderTypeLimit,
		Price:             &price,
		RequestedQuantity: 0.001,
		State:             domain.OrderWaiting,
		RawState:          "wait",
	}

	require.NoError(t, s.SaveTrade(ctx, domain.TradeRecord{
		Timestamp: base.Add(-24 * time.Hour),
		Action:    domain.ActionBuy,
		Ticker:    "KRW-ETH",
		Amount:    "10000",
		PriceType: domain.PriceMarket,
		OrderID:   "order-1",
	}))
	require.NoError(t, s.SaveTrade(ctx, domain.TradeRecord{
		Timestamp:  base,
		Action:     domain.ActionBuy,
		Ticker:     "KRW-BTC",
		Amount:     "50000",
		PriceType:  domain.PriceLimit,
		LimitPrice: &price,
		OrderID:    "order-2",
		Order:      order,
	}))
	require.NoError(t, s.SaveTrade(ctx, domain.TradeRecord{
		Timestamp: base.Add(time.Hour),
		Action:    domain.ActionSell,
		Ticker:    "KRW-BTC",
		Amount:    "all",
		PriceType: domain.PriceMarket,
		OrderID:   "order-3",
	}))

	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	trades, err := s.ListTrades(ctx, today, 0)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "order-2", trades[0].OrderID)
	assert.Equal(t, domain.PriceLimit, trades[0].PriceType)
	require.NotNil(t, trades[0].LimitPrice)
	assert.Equal(t, price, *trades[0].LimitPrice)
	require.NotNil(t, trades[0].Order)
	assert.Equal(t, domain.OrderWaiting, trades[0].Order.State)
	assert.True(t, trades[0].Timestamp.Equal(base))

	assert.Equal(t, "all", trades[1].Amount)
	assert.Nil(t, trades[1].Order)

	limited, err := s.ListTrades(ctx, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "order-1", limited[0].OrderID)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
