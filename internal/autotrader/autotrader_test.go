package autotrader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/shark/internal/agent"
	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange/exchangetest"
	"github.com/assist-by/shark/internal/notification"
	"github.com/assist-by/shark/internal/retry"
	"github.com/assist-by/shark/internal/trading"
)

type toolCall struct {
	name string
	args map[string]any
}

// scriptedAgent는 Decide가 호출될 때마다 정해진 도구 호출을 실행합니다
type scriptedAgent struct {
	noCreds bool
	script  []toolCall

	mu      sync.Mutex
	decided int
	results []trading.Result
	prompts []string
}

func (s *scriptedAgent) HasCredentials() bool { return !s.noCreds }

func (s *scriptedAgent) Decide(ctx context.Context, prompt string, tools agent.Toolbox) (*agent.Decision, error) {
	s.mu.Lock()
	s.decided++
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	for _, c := range s.script {
		res := tools.Call(ctx, c.name, c.args)
		s.mu.Lock()
		s.results = append(s.results, res)
		s.mu.Unlock()
	}
	return &agent.Decision{Text: "완료", Turns: 1}, nil
}

func (s *scriptedAgent) decisions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decided
}

type recordingNotifier struct {
	mu       sync.Mutex
	trades   []notification.TradeInfo
	infos    []string
	errs     []error
	tradeErr error
}

func (n *recordingNotifier) SendTrade(_ context.Context, info notification.TradeInfo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trades = append(n.trades, info)
	return n.tradeErr
}

func (n *recordingNotifier) SendError(_ context.Context, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
	return nil
}

func (n *recordingNotifier) SendInfo(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func candles(n int, base float64) domain.CandleList {
	out := make(domain.CandleList, n)
	for i := range out {
		c := base + float64(i)*1000
		out[i] = domain.Candle{Open: c, High: c + 500, Low: c - 500, Close: c, Volume: 1}
	}
	return out
}

func newMarketMock() *exchangetest.Mock {
	ex := new(exchangetest.Mock)
	ex.On("GetBalances", mock.Anything).Return(domain.Balances{{Currency: "KRW", Balance: 1000000}}, nil)
	ex.On("GetCurrentPrice", mock.Anything, mock.Anything).Return(50000000.0, nil)
	ex.On("GetOHLCV", mock.Anything, mock.Anything, domain.Interval1d, snapshotCandles).Return(candles(snapshotCandles, 49000000), nil)
	ex.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(exchangetest.OrderResponse("order-1", "KRW-BTC", "bid", "price", "wait", "", ""), nil)
	return ex
}

func testConfig() Config {
	return Config{
		Interval:        time.Hour,
		MaxInvestment:   100000,
		MaxTradingCount: 3,
		TargetCoins:     []string{"krw-btc"},
		RiskLevel:       domain.RiskConservative,
		Model:           "test-model",
	}
}

func newTrader(t *testing.T, ex *exchangetest.Mock, cfg Config, opts ...Option) *AutoTrader {
	t.Helper()
	rw := retry.New(retry.Config{MaxAttempts: 1})
	d, err := trading.NewDispatcher(ex, rw)
	require.NoError(t, err)

	opts = append([]Option{WithRetry(rw), WithChunk(10 * time.Millisecond)}, opts...)
	a, err := New(cfg, ex, d, opts...)
	require.NoError(t, err)
	return a
}

var buy = toolCall{name: trading.ToolBuyCoin, args: map[string]any{"ticker": "BTC", "price_type": "market", "amount": 10000}}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTradingCount = 0
	_, err := New(cfg, new(exchangetest.Mock), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfigNormalizesTickers(t *testing.T) {
	a := newTrader(t, new(exchangetest.Mock), testConfig())
	assert.Equal(t, []string{"KRW-BTC"}, a.Config().TargetCoins)

	cfg := a.Config()
	cfg.TargetCoins[0] = "KRW-ETH"
	assert.Equal(t, []string{"KRW-BTC"}, a.Config().TargetCoins, "Config는 복사본을 반환해야 합니다")
}

func TestDailyCapRejectsFourthTrade(t *testing.T) {
	ex := newMarketMock()
	notifier := &recordingNotifier{}
	a := newTrader(t, ex, testConfig(), WithNotifier(notifier))

	ag := &scriptedAgent{script: []toolCall{buy, buy, buy, buy}}
	require.NoError(t, a.RunOnce(context.Background(), ag))

	require.Len(t, ag.results, 4)
	for _, res := range ag.results[:3] {
		assert.True(t, res.Success, res.Message)
	}
	fourth := ag.results[3]
	assert.False(t, fourth.Success)
	assert.Equal(t, domain.KindState, fourth.ErrorKind)
	assert.Contains(t, fourth.Message, "일일 거래 한도 도달")

	assert.Len(t, a.History(), 3)
	assert.Equal(t, 3, a.Status().DailyTradingCount)
	ex.AssertNumberOfCalls(t, "PlaceOrder", 3)
	assert.Len(t, notifier.trades, 3)
	assert.Len(t, notifier.infos, 1, "한도 도달 알림은 한 번만 보냅니다")
}

func TestCapReachedSkipsCycle(t *testing.T) {
	ex := newMarketMock()
	notifier := &recordingNotifier{}
	a := newTrader(t, ex, testConfig(), WithNotifier(notifier))

	require.NoError(t, a.RunOnce(context.Background(), &scriptedAgent{script: []toolCall{buy, buy, buy}}))

	ag := &scriptedAgent{script: []toolCall{buy}}
	require.NoError(t, a.RunOnce(context.Background(), ag))
	require.NoError(t, a.RunOnce(context.Background(), ag))

	assert.Zero(t, ag.decisions(), "한도에 도달하면 에이전트를 호출하지 않습니다")
	assert.Len(t, a.History(), 3)
	assert.Len(t, notifier.infos, 1)
}

func TestDateRolloverResetsCount(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 23, 50, 0, 0, time.Local)}
	ex := newMarketMock()
	a := newTrader(t, ex, testConfig(), WithClock(clock.Now))

	require.NoError(t, a.RunOnce(context.Background(), &scriptedAgent{script: []toolCall{buy, buy, buy}}))
	assert.Equal(t, 3, a.Status().DailyTradingCount)
	assert.Equal(t, "2024-03-01", a.Status().LastTradingDate)

	clock.Set(time.Date(2024, 3, 2, 0, 5, 0, 0, time.Local))
	ag := &scriptedAgent{}
	require.NoError(t, a.RunOnce(context.Background(), ag))

	st := a.Status()
	assert.Equal(t, 0, st.DailyTradingCount)
	assert.Equal(t, "2024-03-02", st.LastTradingDate)
	assert.Equal(t, 1, ag.decisions())
	assert.Len(t, a.History(), 3, "날짜가 바뀌어도 기록은 유지됩니다")
}

// funcAgent는 Decide를 임의의 함수로 대신합니다
type funcAgent func(ctx context.Context, tools agent.Toolbox)

func (f funcAgent) HasCredentials() bool { return true }

func (f funcAgent) Decide(ctx context.Context, _ string, tools agent.Toolbox) (*agent.Decision, error) {
	f(ctx, tools)
	return &agent.Decision{Text: "완료", Turns: 1}, nil
}

func TestTradeAfterMidnightCountsForNewDay(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 23, 59, 0, 0, time.Local)}
	ex := newMarketMock()
	a := newTrader(t, ex, testConfig(), WithClock(clock.Now))

	var first trading.Result
	require.NoError(t, a.RunOnce(context.Background(), funcAgent(func(ctx context.Context, tools agent.Toolbox) {
		clock.Set(time.Date(2024, 3, 2, 0, 1, 0, 0, time.Local))
		first = tools.Call(ctx, buy.name, buy.args)
	})))
	require.True(t, first.Success, first.Message)

	st := a.Status()
	assert.Equal(t, "2024-03-02", st.LastTradingDate)
	assert.Equal(t, 1, st.DailyTradingCount)

	clock.Set(time.Date(2024, 3, 2, 0, 5, 0, 0, time.Local))
	ag := &scriptedAgent{script: []toolCall{buy, buy, buy}}
	require.NoError(t, a.RunOnce(context.Background(), ag))

	require.Len(t, ag.results, 3)
	assert.True(t, ag.results[0].Success)
	assert.True(t, ag.results[1].Success)
	assert.Equal(t, domain.KindState, ag.results[2].ErrorKind, "자정 이후 거래도 새 날짜 한도에 포함됩니다")
	assert.Equal(t, 3, a.Status().DailyTradingCount)
}

func TestMaxInvestmentCap(t *testing.T) {
	ex := newMarketMock()
	a := newTrader(t, ex, testConfig())

	ag := &scriptedAgent{script: []toolCall{
		{name: trading.ToolBuyCoin, args: map[string]any{"ticker": "BTC", "price_type": "market", "amount": 500000}},
	}}
	require.NoError(t, a.RunOnce(context.Background(), ag))

	require.Len(t, ag.results, 1)
	assert.Equal(t, domain.KindValidation, ag.results[0].ErrorKind)
	assert.Empty(t, a.History())
	ex.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestTradeNotificationFailureIsIgnored(t *testing.T) {
	ex := newMarketMock()
	notifier := &recordingNotifier{tradeErr: errors.New("webhook down")}
	a := newTrader(t, ex, testConfig(), WithNotifier(notifier))

	ag := &scriptedAgent{script: []toolCall{buy}}
	require.NoError(t, a.RunOnce(context.Background(), ag))

	assert.True(t, ag.results[0].Success)
	require.Len(t, a.History(), 1)
	rec := a.History()[0]
	assert.Equal(t, domain.ActionBuy, rec.Action)
	assert.Equal(t, "KRW-BTC", rec.Ticker)
	assert.Equal(t, "10000", rec.Amount)
	assert.Equal(t, "order-1", rec.OrderID)
	assert.Len(t, notifier.trades, 1)
}

func TestStartWithoutCredentials(t *testing.T) {
	ex := newMarketMock()
	ex.NoCredentials = true
	a := newTrader(t, ex, testConfig())

	started, err := a.Start(context.Background(), &scriptedAgent{})
	assert.False(t, started)
	require.Error(t, err)
	assert.Equal(t, domain.KindState, domain.KindOf(err))

	st := a.Status()
	assert.Equal(t, StatusError, st.Status)
	assert.False(t, st.IsRunning)

	ex.NoCredentials = false
	started, err = a.Start(context.Background(), &scriptedAgent{noCreds: true})
	assert.False(t, started)
	assert.Error(t, err)
}

func TestStopDuringFirstWait(t *testing.T) {
	ex := newMarketMock()
	a := newTrader(t, ex, testConfig())
	ag := &scriptedAgent{}

	started, err := a.Start(context.Background(), ag)
	require.NoError(t, err)
	require.True(t, started)

	again, err := a.Start(context.Background(), ag)
	assert.NoError(t, err)
	assert.False(t, again, "실행 중에는 다시 시작하지 않습니다")

	require.Eventually(t, func() bool { return a.Status().Status == StatusWaiting }, time.Second, 5*time.Millisecond)
	assert.False(t, a.Status().NextCheckTime.IsZero())

	var stopped atomic.Bool
	go func() { stopped.Store(a.Stop()) }()
	require.Eventually(t, stopped.Load, time.Second, 5*time.Millisecond)

	st := a.Status()
	assert.False(t, st.IsRunning)
	assert.Equal(t, StatusStopped, st.Status)
	assert.Equal(t, 1, ag.decisions())
	assert.False(t, a.Stop(), "이미 중지된 루프는 false를 반환합니다")
}

func TestRestartKeepsSingleLoop(t *testing.T) {
	ex := newMarketMock()
	a := newTrader(t, ex, testConfig())
	ag := &scriptedAgent{}

	for i := 0; i < 200; i++ {
		started, err := a.Start(context.Background(), ag)
		require.NoError(t, err)
		require.True(t, started, "반복 %d: 중지 후에는 다시 시작되어야 합니다", i)
		require.True(t, a.IsRunning(), "반복 %d", i)

		require.True(t, a.Stop(), "반복 %d: 실행 중인 루프는 중지되어야 합니다", i)
		st := a.Status()
		require.False(t, st.IsRunning, "반복 %d", i)
		require.Equal(t, StatusStopped, st.Status, "반복 %d", i)
	}

	before := ag.decisions()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, ag.decisions(), "중지 후에 남아 있는 루프가 없어야 합니다")
	assert.LessOrEqual(t, before, 200, "시작할 때마다 주기는 최대 한 번 실행됩니다")
}

func TestUpdateConfig(t *testing.T) {
	a := newTrader(t, newMarketMock(), testConfig())

	cfg := testConfig()
	cfg.MaxTradingCount = 10
	cfg.RiskLevel = "공격적"
	require.NoError(t, a.UpdateConfig(cfg))
	assert.Equal(t, 10, a.Config().MaxTradingCount)
	assert.Equal(t, domain.RiskAggressive, a.Config().RiskLevel)

	cfg.Interval = 0
	assert.Error(t, a.UpdateConfig(cfg))
	assert.Equal(t, 10, a.Config().MaxTradingCount)
}

// memStore는 메모리에 거래를 보관하는 테스트용 저장소입니다
type memStore struct {
	mu     sync.Mutex
	trades []domain.TradeRecord
}

func (m *memStore) SaveTrade(_ context.Context, rec domain.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, rec)
	return nil
}

func (m *memStore) ListTrades(_ context.Context, since time.Time, _ int) ([]domain.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TradeRecord
	for _, rec := range m.trades {
		if !rec.Timestamp.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func TestRestoreKeepsDailyCapAcrossRestart(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 2, 12, 0, 0, 0, time.Local)}
	st := &memStore{trades: []domain.TradeRecord{
		{Timestamp: time.Date(2024, 3, 1, 22, 0, 0, 0, time.Local), Action: domain.ActionBuy, Ticker: "KRW-ETH", OrderID: "old"},
		{Timestamp: time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local), Action: domain.ActionBuy, Ticker: "KRW-BTC", OrderID: "a"},
		{Timestamp: time.Date(2024, 3, 2, 10, 0, 0, 0, time.Local), Action: domain.ActionSell, Ticker: "KRW-BTC", OrderID: "b"},
	}}

	ex := newMarketMock()
	a := newTrader(t, ex, testConfig(), WithClock(clock.Now), WithStore(st))
	require.NoError(t, a.Restore(context.Background()))

	state := a.Status()
	assert.Equal(t, 2, state.DailyTradingCount)
	assert.Equal(t, "2024-03-02", state.LastTradingDate)
	assert.Len(t, a.History(), 2)

	ag := &scriptedAgent{script: []toolCall{buy, buy}}
	require.NoError(t, a.RunOnce(context.Background(), ag))

	require.Len(t, ag.results, 2)
	assert.True(t, ag.results[0].Success, ag.results[0].Message)
	assert.Equal(t, domain.KindState, ag.results[1].ErrorKind)
	assert.Len(t, st.trades, 4, "성공한 거래는 저장소에 기록됩니다")
	assert.Equal(t, "order-1", st.trades[3].OrderID)
}
