package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange/exchangetest"
	"github.com/assist-by/shark/internal/retry"
)

func newRetry() *retry.Wrapper {
	log, _ := test.NewNullLogger()
	return retry.New(retry.Config{MaxAttempts: 3, Delay: time.Millisecond}, retry.WithLogger(log))
}

type fakeAPIError struct{ code string }

func (e *fakeAPIError) Error() string   { return e.code }
func (e *fakeAPIError) Code() string    { return e.code }
func (e *fakeAPIError) Retryable() bool { return false }

func TestBuyMarketPlacesPriceOrder(t *testing.T) {
	ex := &exchangetest.Mock{}
	notional := decimal.NewFromInt(10000)
	ex.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req domain.OrderRequest) bool {
		return req.Ticker == "KRW-BTC" && req.Side == domain.Bid &&
			req.Type == domain.OrderTypePrice && req.Notional.Equal(notional)
	})).Return(exchangetest.OrderResponse("uuid-1", "KRW-BTC", "bid", "price", "wait", "", "0"), nil).Once()

	order, err := NewExecutor(ex, newRetry()).BuyMarket(context.Background(), "KRW-BTC", notional)
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", order.ID)
	assert.Equal(t, domain.OrderWaiting, order.State)
	ex.AssertExpectations(t)
}

func TestPlaceRetriesTransientFailure(t *testing.T) {
	ex := &exchangetest.Mock{}
	ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()
	ex.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(exchangetest.OrderResponse("uuid-2", "KRW-ETH", "ask", "market", "done", "1", "1"), nil).Once()

	order, err := NewExecutor(ex, newRetry()).SellMarket(context.Background(), "KRW-ETH", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDone, order.State)
	ex.AssertNumberOfCalls(t, "PlaceOrder", 2)
}

func TestPlaceErrors(t *testing.T) {
	tests := []struct {
		name     string
		resp     *domain.OrderResponse
		err      error
		wantKind domain.ErrorKind
		wantIs   error
		calls    int
	}{
		{
			name:     "주문 ID 없음",
			resp:     exchangetest.OrderResponse("", "KRW-BTC", "bid", "limit", "wait", "0.1", "0"),
			wantKind: domain.KindState,
			wantIs:   ErrNoOrderID,
			calls:    1,
		},
		{
			name:     "거래소 잔고 부족",
			err:      &fakeAPIError{code: "insufficient_funds_bid"},
			wantKind: domain.KindInsufficientBalance,
			calls:    1,
		},
		{
			name:     "재시도 소진",
			err:      errors.New("502 bad gateway"),
			wantKind: domain.KindExchange,
			wantIs:   retry.ErrExhausted,
			calls:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &exchangetest.Mock{}
			if tt.resp != nil {
				ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(tt.resp, nil)
			} else {
				ex.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			_, err := NewExecutor(ex, newRetry()).BuyLimit(context.Background(), "KRW-BTC",
				decimal.NewFromInt(50000000), decimal.RequireFromString("0.1"))
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			var orderErr *OrderError
			assert.True(t, errors.As(err, &orderErr))
			ex.AssertNumberOfCalls(t, "PlaceOrder", tt.calls)
		})
	}
}

func TestLimitRejectsInvalidInput(t *testing.T) {
	ex := &exchangetest.Mock{}
	e := NewExecutor(ex, newRetry())

	_, err := e.SellLimit(context.Background(), "KRW-BTC", decimal.Zero, decimal.NewFromInt(1))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = e.BuyLimit(context.Background(), "KRW-BTC", decimal.NewFromInt(100), decimal.Zero)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	ex := &exchangetest.Mock{}
	ex.On("CancelOrder", mock.Anything, "uuid-3").
		Return(exchangetest.OrderResponse("uuid-3", "KRW-BTC", "bid", "limit", "wait", "0.5", "0.1"), nil)

	order, err := NewExecutor(ex, newRetry()).Cancel(context.Background(), "uuid-3")
	require.NoError(t, err)
	assert.Equal(t, "uuid-3", order.ID)
	assert.InDelta(t, 0.4, order.RemainingQuantity, 1e-12)

	_, err = NewExecutor(ex, newRetry()).Cancel(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyOrderID)
}
