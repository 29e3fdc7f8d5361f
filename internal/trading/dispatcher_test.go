package trading

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange/exchangetest"
	"github.com/assist-by/shark/internal/retry"
)

func newTestDispatcher(t *testing.T, ex *exchangetest.Mock, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(ex, retry.New(retry.Config{MaxAttempts: 1}), opts...)
	require.NoError(t, err)
	return d
}

type blockingHook struct {
	err    error
	before []TradeIntent
	after  []*domain.Order
}

func (h *blockingHook) BeforeTrade(_ context.Context, intent TradeIntent) error {
	h.before = append(h.before, intent)
	return h.err
}

func (h *blockingHook) AfterTrade(_ context.Context, _ TradeIntent, o *domain.Order) {
	h.after = append(h.after, o)
}

func TestSellCoinExceedingBalance(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{
		{Currency: "KRW", Balance: 10000},
		{Currency: "BTC", Balance: 0.1},
	}, nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolSellCoin, map[string]any{
		"ticker":     "BTC",
		"price_type": "market",
		"amount":     "0.5",
	})

	assert.False(t, res.Success)
	assert.Equal(t, domain.KindInsufficientBalance, res.ErrorKind)
	ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestSellCoinNotHeld(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 10000}}, nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolSellCoin, map[string]any{
		"ticker":     "ETH",
		"price_type": "market",
		"amount":     "all",
	})

	assert.False(t, res.Success)
	assert.Equal(t, domain.KindInsufficientBalance, res.ErrorKind)
	assert.Contains(t, res.Message, "보유하고 있지 않습니다")
	ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestSellCoinAll(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "XRP", Balance: 120.5}}, nil)
	ex.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req domain.OrderRequest) bool {
		return req.Side == domain.Ask && req.Type == domain.OrderTypeMarket && req.Volume.Equal(decimal.RequireFromString("120.5"))
	})).Return(exchangetest.OrderResponse("s-1", "KRW-XRP", "ask", "market", "wait", "120.5", "0"), nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolSellCoin, `{"ticker":"xrp","price_type":"market","amount":"all"}`)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "s-1", res.OrderID)
	assert.Equal(t, "KRW-XRP", res.Ticker)
	ex.AssertExpectations(t)
}

func TestBuyCoinFullBalanceAdjustment(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 1000000}}, nil)

	var sent domain.OrderRequest
	ex.On("PlaceOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.OrderRequest) }).
		Return(exchangetest.OrderResponse("b-1", "KRW-BTC", "bid", "price", "wait", "", ""), nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolBuyCoin, map[string]any{
		"ticker":     "BTC",
		"price_type": "market",
		"amount":     995000,
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, domain.OrderTypePrice, sent.Type)
	assert.InDelta(t, 1000000*0.9995, sent.Notional.InexactFloat64(), 0.0001)
	assert.Contains(t, res.Message, "조정")
}

func TestBuyCoinLimitVolume(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 1000000}}, nil)
	ex.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req domain.OrderRequest) bool {
		return req.Type == domain.OrderTypeLimit &&
			req.Volume.Equal(decimal.RequireFromString("0.002")) &&
			req.Price.Equal(decimal.NewFromInt(50000000))
	})).Return(exchangetest.OrderResponse("b-2", "KRW-BTC", "bid", "limit", "wait", "0.002", "0"), nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolBuyCoin, map[string]any{
		"ticker":      "KRW-BTC",
		"price_type":  "limit",
		"amount":      "100000",
		"limit_price": 50000000,
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "b-2", res.OrderID)
	ex.AssertExpectations(t)
}

func TestBuyCoinValidation(t *testing.T) {
	tests := []struct {
		name string
		args any
	}{
		{"티커 누락", map[string]any{"price_type": "market", "amount": 10000}},
		{"잘못된 주문 유형", map[string]any{"ticker": "BTC", "price_type": "stop", "amount": 10000}},
		{"음수 금액", map[string]any{"ticker": "BTC", "price_type": "market", "amount": -1}},
		{"지정가 가격 누락", map[string]any{"ticker": "BTC", "price_type": "limit", "amount": 10000}},
		{"JSON 아님", "not json"},
		{"무한대 금액", `{"ticker":"BTC","price_type":"market","amount":1e400}`},
		{"NaN 문자열 금액", map[string]any{"ticker": "BTC", "price_type": "market", "amount": "NaN"}},
		{"무한대 지정가", map[string]any{"ticker": "BTC", "price_type": "limit", "amount": 10000, "limit_price": "Inf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := new(exchangetest.Mock)
			d := newTestDispatcher(t, ex)

			res := d.Call(context.Background(), ToolBuyCoin, tt.args)
			assert.False(t, res.Success)
			assert.Equal(t, domain.KindValidation, res.ErrorKind)
			ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
			ex.AssertNotCalled(t, "GetBalances", mock.Anything)
		})
	}
}

func TestSellCoinRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		args any
	}{
		{"NaN 수량", map[string]any{"ticker": "BTC", "price_type": "market", "amount": "NaN"}},
		{"무한대 수량", `{"ticker":"BTC","price_type":"market","amount":-1e400}`},
		{"무한대 지정가", map[string]any{"ticker": "BTC", "price_type": "limit", "amount": "0.1", "limit_price": "+Inf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := new(exchangetest.Mock)
			d := newTestDispatcher(t, ex)

			res := d.Call(context.Background(), ToolSellCoin, tt.args)
			assert.False(t, res.Success)
			assert.Equal(t, domain.KindValidation, res.ErrorKind)
			ex.AssertNotCalled(t, "GetBalances", mock.Anything)
		})
	}
}

func TestBuyCoinBelowMinimum(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 1000000}}, nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolBuyCoin, map[string]any{"ticker": "BTC", "price_type": "market", "amount": 3000})

	assert.False(t, res.Success)
	assert.Equal(t, domain.KindValidation, res.ErrorKind)
	ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestTradeHookBlocksOrder(t *testing.T) {
	ex := new(exchangetest.Mock)
	hook := &blockingHook{err: &StateError{Reason: "일일 거래 한도 도달"}}

	d := newTestDispatcher(t, ex).Scoped(domain.RiskConservative, hook)
	res := d.Call(context.Background(), ToolBuyCoin, map[string]any{"ticker": "BTC", "price_type": "market", "amount": 10000})

	assert.False(t, res.Success)
	assert.Equal(t, domain.KindState, res.ErrorKind)
	require.Len(t, hook.before, 1)
	assert.Equal(t, "KRW-BTC", hook.before[0].Ticker)
	assert.Empty(t, hook.after)
	ex.AssertNotCalled(t, "GetBalances", mock.Anything)
}

func TestTradeHookAfterTrade(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 50000}}, nil)
	ex.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(exchangetest.OrderResponse("b-3", "KRW-ETH", "bid", "price", "wait", "", ""), nil)

	hook := &blockingHook{}
	base := newTestDispatcher(t, ex)
	d := base.Scoped(domain.RiskAggressive, hook)

	res := d.Call(context.Background(), ToolBuyCoin, map[string]any{"ticker": "ETH", "price_type": "market", "amount": 10000})

	require.True(t, res.Success, res.Message)
	require.Len(t, hook.after, 1)
	assert.Equal(t, "b-3", hook.after[0].ID)
	assert.Nil(t, base.hook, "Scoped는 원본을 바꾸지 않아야 합니다")
}

func TestOrderPlacedWithoutID(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 50000}}, nil)
	ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(&domain.OrderResponse{}, nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolBuyCoin, map[string]any{"ticker": "BTC", "price_type": "market", "amount": 10000})

	assert.False(t, res.Success)
	assert.Equal(t, domain.KindState, res.ErrorKind)
	assert.Contains(t, res.Message, "주문 ID를 받지 못했습니다")
}

func TestUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, new(exchangetest.Mock))

	res := d.Call(context.Background(), "withdraw_all", nil)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindValidation, res.ErrorKind)
}

func TestListAvailableCoinsForSell(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{
		{Currency: "KRW", Balance: 10000},
		{Currency: "BTC", Balance: 0.01, AvgBuyPrice: 50000000},
		{Currency: "ETH", Balance: 0},
	}, nil)
	ex.On("GetMarkets", mock.Anything).Return([]domain.MarketInfo{
		{Market: "KRW-BTC", KoreanName: "비트코인"},
	}, nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolGetAvailableCoins, map[string]any{"action_type": "sell"})

	require.True(t, res.Success, res.Message)
	require.Len(t, res.Coins, 1)
	assert.Equal(t, "KRW-BTC", res.Coins[0].Ticker)
	assert.Equal(t, "비트코인", res.Coins[0].KoreanName)
	assert.Equal(t, 0.01, res.Coins[0].Balance)
}

func TestListAvailableCoinsForBuyConservative(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 10000}}, nil)
	ex.On("GetMarkets", mock.Anything).Return([]domain.MarketInfo{
		{Market: "KRW-BTC", KoreanName: "비트코인"},
		{Market: "KRW-SHIB", KoreanName: "시바이누"},
		{Market: "KRW-ETH", KoreanName: "이더리움"},
		{Market: "BTC-ETH", KoreanName: "이더리움"},
	}, nil)
	ex.On("GetTickers", mock.Anything, []string{"KRW-BTC", "KRW-SHIB", "KRW-ETH"}).Return([]domain.Ticker{
		{Market: "KRW-BTC", AccTradePrice24h: 100},
		{Market: "KRW-SHIB", AccTradePrice24h: 500},
		{Market: "KRW-ETH", AccTradePrice24h: 300},
	}, nil)

	d := newTestDispatcher(t, ex, WithRiskLevel(domain.RiskConservative))
	res := d.Call(context.Background(), ToolGetAvailableCoins, nil)

	require.True(t, res.Success, res.Message)
	require.Len(t, res.Coins, 2)
	assert.Equal(t, "KRW-ETH", res.Coins[0].Ticker)
	assert.Equal(t, "KRW-BTC", res.Coins[1].Ticker)
	assert.False(t, res.Demo)

	aggressive := d.Scoped(domain.RiskAggressive, nil)
	res = aggressive.Call(context.Background(), ToolGetAvailableCoins, map[string]any{"action_type": "buy"})
	require.True(t, res.Success)
	require.Len(t, res.Coins, 3)
	assert.Equal(t, "KRW-SHIB", res.Coins[0].Ticker)
}

func TestListAvailableCoinsDemoFallback(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(nil, errors.New("connection refused"))

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolGetAvailableCoins, map[string]any{"action_type": "buy"})

	require.True(t, res.Success)
	assert.True(t, res.Demo)
	assert.Contains(t, res.Message, "[데모]")
	assert.NotEmpty(t, res.Coins)

	res = d.Call(context.Background(), ToolGetAvailableCoins, map[string]any{"action_type": "sell"})
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindExchange, res.ErrorKind)
}

func TestGetCoinPriceInfo(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetCurrentPrice", mock.Anything, "KRW-BTC").Return(50000000.0, nil)
	ex.On("GetBalances", mock.Anything).Return(nil, errors.New("timeout"))
	ex.On("GetOHLCV", mock.Anything, "KRW-BTC", domain.Interval1d, 7).Return(domain.CandleList{
		{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
	}, nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolGetCoinPriceInfo, map[string]any{"ticker": "btc"})

	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.PriceInfo)
	assert.Equal(t, 50000000.0, res.PriceInfo.CurrentPrice)
	assert.Zero(t, res.PriceInfo.Balance)
	assert.Len(t, res.PriceInfo.OHLCV, 2)
	assert.Equal(t, 2.5, res.PriceInfo.OHLCV[1].Close)
}

func TestCheckOrderStatus(t *testing.T) {
	ex := new(exchangetest.Mock)
	ex.On("GetOrder", mock.Anything, "o-1").
		Return(exchangetest.OrderResponse("o-1", "KRW-BTC", "bid", "limit", "wait", "0.002", "0.001"), nil)

	d := newTestDispatcher(t, ex)
	res := d.Call(context.Background(), ToolCheckOrderStatus, map[string]any{"order_id": "o-1"})

	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.OrderStatus)
	assert.Equal(t, domain.OrderWaiting, res.OrderStatus.State)
	assert.InDelta(t, 50.0, res.OrderStatus.ExecutionRate, 1e-9)
	assert.Contains(t, res.Message, "일부 체결")
}

func TestCancelOrderMissingID(t *testing.T) {
	ex := new(exchangetest.Mock)
	d := newTestDispatcher(t, ex)

	res := d.Call(context.Background(), ToolCancelOrder, map[string]any{"order_id": "  "})
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindValidation, res.ErrorKind)
	ex.AssertNotCalled(t, "CancelOrder", mock.Anything, mock.Anything)
}

func TestSpecsMatchSchemas(t *testing.T) {
	d := newTestDispatcher(t, new(exchangetest.Mock))

	specs := d.Specs()
	require.Len(t, specs, 6)
	for _, s := range specs {
		assert.Contains(t, d.schemas, s.Name)
		assert.NotEmpty(t, s.Description)
	}
}
