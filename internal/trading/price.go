package trading

import (
	"context"
	"fmt"

	"github.com/assist-by/shark/internal/domain"
)

// priceHistoryDays는 가격 조회에 포함할 일봉 개수입니다
const priceHistoryDays = 7

// GetCoinPriceInfo는 현재가, 보유량, 최근 일봉을 조회합니다
func (d *Dispatcher) GetCoinPriceInfo(ctx context.Context, raw any) Result {
	var args priceArgs
	if err := d.bind(ToolGetCoinPriceInfo, raw, &args); err != nil {
		return fail(err)
	}

	ticker := domain.NormalizeTicker(args.Ticker)
	if ticker == "" {
		return fail(invalid("ticker", "티커(ticker)가 지정되지 않았습니다."))
	}

	price, err := fetch(ctx, d, ticker+" 현재가 조회", func(ctx context.Context) (float64, error) {
		return d.exchange.GetCurrentPrice(ctx, ticker)
	})
	if err != nil {
		res := fail(fmt.Errorf("%s 현재가 조회 실패: %w", ticker, err))
		res.Ticker = ticker
		return res
	}

	info := &PriceInfo{CurrentPrice: price}

	// 보유 정보가 없어도 가격 정보는 돌려준다
	if balances, err := d.balances(ctx); err != nil {
		d.log.WithError(err).WithField("ticker", ticker).Warn("보유량 조회 실패")
	} else if bal, ok := balances.Find(domain.CoinOf(ticker)); ok {
		info.Balance = bal.Balance
		info.AvgBuyPrice = bal.AvgBuyPrice
	}

	candles, err := fetch(ctx, d, ticker+" 일봉 조회", func(ctx context.Context) (domain.CandleList, error) {
		return d.exchange.GetOHLCV(ctx, ticker, domain.Interval1d, priceHistoryDays)
	})
	if err != nil {
		d.log.WithError(err).WithField("ticker", ticker).Warn("일봉 조회 실패")
	}
	for _, c := range candles {
		info.OHLCV = append(info.OHLCV, OHLCV{
			Date:   c.OpenTime.Format("2006-01-02"),
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}

	return Result{
		Success:   true,
		Message:   fmt.Sprintf("%s 현재가는 %.0f원입니다.", ticker, price),
		Ticker:    ticker,
		PriceInfo: info,
	}
}
