package trading

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/assist-by/shark/internal/domain"
)

const (
	topMarketCount = 20
	maxCandidates  = 10
)

// safeList는 보수적 성향에서 허용하는 주요 코인입니다
var safeList = []domain.MarketInfo{
	{Market: "KRW-BTC", KoreanName: "비트코인", EnglishName: "Bitcoin"},
	{Market: "KRW-ETH", KoreanName: "이더리움", EnglishName: "Ethereum"},
	{Market: "KRW-XRP", KoreanName: "리플", EnglishName: "XRP"},
	{Market: "KRW-ADA", KoreanName: "에이다", EnglishName: "Cardano"},
	{Market: "KRW-DOGE", KoreanName: "도지코인", EnglishName: "Dogecoin"},
}

func isSafe(market string) bool {
	for _, m := range safeList {
		if m.Market == market {
			return true
		}
	}
	return false
}

// ListAvailableCoins는 매수 후보 또는 매도 가능한 보유 코인 목록을 반환합니다
func (d *Dispatcher) ListAvailableCoins(ctx context.Context, raw any) Result {
	var args coinsArgs
	if err := d.bind(ToolGetAvailableCoins, raw, &args); err != nil {
		return fail(err)
	}
	sell := strings.EqualFold(strings.TrimSpace(args.ActionType), "sell")

	balances, err := d.balances(ctx)
	if err != nil {
		if sell {
			return fail(fmt.Errorf("보유 코인 조회 실패: %w", err))
		}
		return d.demoCoins(err)
	}

	// 이름 조회 실패는 목록 자체를 막지 않는다
	markets, err := fetch(ctx, d, "마켓 목록 조회", d.exchange.GetMarkets)
	if err != nil {
		d.log.WithError(err).Warn("마켓 목록 조회 실패")
	}
	names := make(map[string]string, len(markets))
	for _, m := range markets {
		names[m.Market] = m.KoreanName
	}

	portfolio := holdings(balances, names)

	if sell {
		if len(portfolio) == 0 {
			return Result{Success: true, Message: "현재 보유 중인 코인이 없습니다."}
		}
		return Result{
			Success: true,
			Message: fmt.Sprintf("보유 중인 코인 %d개를 찾았습니다.", len(portfolio)),
			Coins:   portfolio,
		}
	}

	if len(markets) == 0 {
		return d.demoCoins(fmt.Errorf("마켓 목록이 비어 있습니다"))
	}

	candidates := d.filterByRisk(d.topMarkets(ctx, markets))
	coins := make([]CoinInfo, len(candidates))
	for i, m := range candidates {
		coins[i] = CoinInfo{Ticker: m.Market, KoreanName: m.KoreanName}
	}

	return Result{
		Success:   true,
		Message:   fmt.Sprintf("거래 가능한 코인 %d개를 찾았습니다.", len(coins)),
		Coins:     coins,
		Portfolio: portfolio,
	}
}

// holdings는 잔고가 0보다 큰 코인만 남깁니다
func holdings(balances domain.Balances, names map[string]string) []CoinInfo {
	var coins []CoinInfo
	for _, b := range balances {
		if b.Currency == domain.QuoteCurrency || b.Balance <= 0 {
			continue
		}
		ticker := domain.QuoteCurrency + "-" + b.Currency
		coins = append(coins, CoinInfo{
			Ticker:      ticker,
			KoreanName:  names[ticker],
			Balance:     b.Balance,
			AvgBuyPrice: b.AvgBuyPrice,
		})
	}
	return coins
}

// topMarkets는 KRW 마켓을 24시간 거래대금 순으로 상위 N개 고릅니다.
// 시세 조회에 실패하면 상장 순서를 그대로 사용합니다.
func (d *Dispatcher) topMarkets(ctx context.Context, markets []domain.MarketInfo) []domain.MarketInfo {
	var krw []domain.MarketInfo
	for _, m := range markets {
		if strings.HasPrefix(m.Market, domain.QuoteCurrency+"-") {
			krw = append(krw, m)
		}
	}

	codes := make([]string, len(krw))
	for i, m := range krw {
		codes[i] = m.Market
	}

	tickers, err := fetch(ctx, d, "시세 조회", func(ctx context.Context) ([]domain.Ticker, error) {
		return d.exchange.GetTickers(ctx, codes)
	})
	if err == nil && len(tickers) > 0 {
		volume := make(map[string]float64, len(tickers))
		for _, t := range tickers {
			volume[t.Market] = t.AccTradePrice24h
		}
		sort.SliceStable(krw, func(i, j int) bool {
			return volume[krw[i].Market] > volume[krw[j].Market]
		})
	} else if err != nil {
		d.log.WithError(err).Warn("거래대금 조회 실패, 상장 순서 사용")
	}

	if len(krw) > topMarketCount {
		krw = krw[:topMarketCount]
	}
	return krw
}

func (d *Dispatcher) filterByRisk(markets []domain.MarketInfo) []domain.MarketInfo {
	var out []domain.MarketInfo
	for _, m := range markets {
		if d.risk == domain.RiskConservative && !isSafe(m.Market) {
			continue
		}
		out = append(out, m)
		if len(out) == maxCandidates {
			break
		}
	}
	return out
}

// demoCoins는 거래소에 접근할 수 없을 때 예시 목록을 돌려줍니다
func (d *Dispatcher) demoCoins(cause error) Result {
	d.log.WithError(cause).Warn("거래소 조회 실패, 예시 코인 목록 반환")
	coins := make([]CoinInfo, len(safeList))
	for i, m := range safeList {
		coins[i] = CoinInfo{Ticker: m.Market, KoreanName: m.KoreanName}
	}
	return Result{
		Success: true,
		Demo:    true,
		Message: fmt.Sprintf("[데모] 거래소에 연결할 수 없어 예시 코인 목록을 반환합니다. 실제 거래 가능 여부는 확인되지 않았습니다. (%v)", cause),
		Coins:   coins,
	}
}
