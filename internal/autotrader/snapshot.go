package autotrader

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange"
	"github.com/assist-by/shark/internal/indicator"
	"github.com/assist-by/shark/internal/retry"
)

const snapshotCandles = 60

// Holding은 보유 코인 한 종목의 평가 정보입니다
type Holding struct {
	Ticker       string
	Balance      float64
	AvgBuyPrice  float64
	CurrentPrice float64
	Value        float64 // 현재가 기준 평가 금액
	ProfitRate   float64 // 평단가 대비 수익률 (%)
}

// PortfolioSnapshot은 주기 시작 시점의 자산 현황입니다
type PortfolioSnapshot struct {
	KRW        float64
	Holdings   []Holding
	TotalValue float64
}

// CoinMarket은 대상 코인 한 종목의 시장 정보입니다
type CoinMarket struct {
	Ticker     string
	Price      float64
	ChangeRate float64 // 전일 종가 대비 (%)
	RSI        float64 // 0이면 계산 불가
	SMA5       float64
	SMA20      float64
	MACDHist   float64 // MACD(12,26,9) 히스토그램
}

// MarketSnapshot은 대상 코인들의 시장 정보입니다
type MarketSnapshot struct {
	Coins  []CoinMarket
	Failed []string // 조회 실패한 티커
}

// Snapshot은 한 주기에서 에이전트에게 보여줄 정보 전체입니다
type Snapshot struct {
	TakenAt   time.Time
	Portfolio PortfolioSnapshot
	Market    MarketSnapshot
}

// snapshot은 잔고와 대상 코인 시세를 동시에 조회합니다.
// 잔고 조회 실패는 주기 실패이고, 개별 코인 조회 실패는 건너뜁니다.
func (a *AutoTrader) snapshot(ctx context.Context, cfg Config) (*Snapshot, error) {
	var (
		balances domain.Balances
		mu       sync.Mutex
		coins    = make(map[string]CoinMarket, len(cfg.TargetCoins))
		failed   []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := call(gctx, a.retry, "잔고 조회", a.exchange.GetBalances)
		if err != nil {
			return fmt.Errorf("잔고 조회 실패: %w", err)
		}
		balances = b
		return nil
	})

	for _, ticker := range cfg.TargetCoins {
		ticker := ticker
		g.Go(func() error {
			cm, err := a.coinMarket(gctx, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.WithError(err).WithField("ticker", ticker).Warn("시세 조회 실패")
				failed = append(failed, ticker)
				return nil
			}
			coins[ticker] = cm
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{TakenAt: a.now()}
	for _, t := range cfg.TargetCoins {
		if cm, ok := coins[t]; ok {
			snap.Market.Coins = append(snap.Market.Coins, cm)
		}
	}
	sort.Strings(failed)
	snap.Market.Failed = failed

	prices := make(map[string]float64, len(coins))
	for t, cm := range coins {
		prices[t] = cm.Price
	}
	snap.Portfolio = a.portfolio(ctx, balances, prices)
	return snap, nil
}

func (a *AutoTrader) coinMarket(ctx context.Context, ticker string) (CoinMarket, error) {
	price, err := call(ctx, a.retry, ticker+" 현재가 조회", func(ctx context.Context) (float64, error) {
		return a.exchange.GetCurrentPrice(ctx, ticker)
	})
	if err != nil {
		return CoinMarket{}, err
	}

	candles, err := call(ctx, a.retry, ticker+" 일봉 조회", func(ctx context.Context) (domain.CandleList, error) {
		return a.exchange.GetOHLCV(ctx, ticker, domain.Interval1d, snapshotCandles)
	})
	if err != nil {
		return CoinMarket{}, err
	}

	cm := CoinMarket{Ticker: ticker, Price: price}
	closes := candles.Closes()
	if n := len(closes); n >= 2 && closes[n-2] > 0 {
		cm.ChangeRate = (price - closes[n-2]) / closes[n-2] * 100
	}
	ind := indicator.Summarize(candles, indicator.DefaultConfig())
	cm.RSI = ind.RSI
	cm.SMA5 = ind.SMAShort
	cm.SMA20 = ind.SMALong
	cm.MACDHist = ind.Histogram
	return cm, nil
}

// portfolio는 보유 코인을 현재가로 평가합니다.
// 대상 코인이 아닌 보유 코인은 시세를 한 번에 조회하고, 실패하면 평단가로 평가합니다.
func (a *AutoTrader) portfolio(ctx context.Context, balances domain.Balances, prices map[string]float64) PortfolioSnapshot {
	p := PortfolioSnapshot{KRW: balances.Amount(domain.QuoteCurrency)}

	var missing []string
	for _, b := range balances {
		if b.Currency == domain.QuoteCurrency || b.Balance <= 0 {
			continue
		}
		t := domain.QuoteCurrency + "-" + b.Currency
		if _, ok := prices[t]; !ok {
			missing = append(missing, t)
		}
	}

	if len(missing) > 0 {
		tickers, err := call(ctx, a.retry, "보유 코인 시세 조회", func(ctx context.Context) ([]domain.Ticker, error) {
			return a.exchange.GetTickers(ctx, missing)
		})
		if err != nil {
			a.log.WithError(err).Warn("보유 코인 시세 조회 실패, 평단가로 평가합니다")
		}
		for _, t := range tickers {
			prices[t.Market] = t.TradePrice
		}
	}

	p.TotalValue = p.KRW
	for _, b := range balances {
		if b.Currency == domain.QuoteCurrency || b.Balance <= 0 {
			continue
		}
		t := domain.QuoteCurrency + "-" + b.Currency
		price, ok := prices[t]
		if !ok || price <= 0 {
			price = b.AvgBuyPrice
		}

		h := Holding{
			Ticker:       t,
			Balance:      b.Balance,
			AvgBuyPrice:  b.AvgBuyPrice,
			CurrentPrice: price,
			Value:        b.Balance * price,
		}
		if b.AvgBuyPrice > 0 {
			h.ProfitRate = (price - b.AvgBuyPrice) / b.AvgBuyPrice * 100
		}
		p.Holdings = append(p.Holdings, h)
		p.TotalValue += h.Value
	}
	return p
}

func call[T any](ctx context.Context, rw *retry.Wrapper, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := retry.Call(ctx, rw, op, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		return v, exchange.Classify(err)
	})
	return v, retry.AsExchangeError(err)
}
