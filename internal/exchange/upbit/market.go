package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/assist-by/shark/internal/domain"
)

var kst = time.FixedZone("KST", 9*60*60)

// GetMarkets는 상장된 전체 마켓 목록을 조회합니다
func (c *Client) GetMarkets(ctx context.Context) ([]domain.MarketInfo, error) {
	params := url.Values{}
	params.Set("isDetails", "false")

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/market/all", params, false)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Market      string `json:"market"`
		KoreanName  string `json:"korean_name"`
		EnglishName string `json:"english_name"`
	}
	if err := json.Unmarshal(resp, &raw); err != nil {
		return nil, fmt.Errorf("마켓 목록 파싱 실패: %w", err)
	}

	markets := make([]domain.MarketInfo, len(raw))
	for i, m := range raw {
		markets[i] = domain.MarketInfo{Market: m.Market, KoreanName: m.KoreanName, EnglishName: m.EnglishName}
	}
	return markets, nil
}

// GetTickers는 여러 마켓의 현재 시세를 한 번에 조회합니다
func (c *Client) GetTickers(ctx context.Context, markets []string) ([]domain.Ticker, error) {
	if len(markets) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("markets", strings.Join(markets, ","))

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/ticker", params, false)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Market           string  `json:"market"`
		TradePrice       float64 `json:"trade_price"`
		SignedChangeRate float64 `json:"signed_change_rate"`
		AccTradePrice24h float64 `json:"acc_trade_price_24h"`
	}
	if err := json.Unmarshal(resp, &raw); err != nil {
		return nil, fmt.Errorf("시세 데이터 파싱 실패: %w", err)
	}

	tickers := make([]domain.Ticker, len(raw))
	for i, t := range raw {
		tickers[i] = domain.Ticker{
			Market:           t.Market,
			TradePrice:       t.TradePrice,
			SignedChangeRate: t.SignedChangeRate,
			AccTradePrice24h: t.AccTradePrice24h,
		}
	}
	return tickers, nil
}

// GetCurrentPrice는 단일 마켓의 현재가를 조회합니다
func (c *Client) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	tickers, err := c.GetTickers(ctx, []string{ticker})
	if err != nil {
		return 0, err
	}
	if len(tickers) == 0 {
		return 0, fmt.Errorf("%s 시세가 없습니다", ticker)
	}
	return tickers[0].TradePrice, nil
}

// GetOHLCV는 캔들 데이터를 과거에서 최근 순으로 조회합니다
func (c *Client) GetOHLCV(ctx context.Context, ticker string, interval domain.TimeInterval, count int) (domain.CandleList, error) {
	endpoint, err := candleEndpoint(interval)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("market", ticker)
	params.Set("count", strconv.Itoa(count))

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, params, false)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Market    string  `json:"market"`
		TimeKST   string  `json:"candle_date_time_kst"`
		Open      float64 `json:"opening_price"`
		High      float64 `json:"high_price"`
		Low       float64 `json:"low_price"`
		Close     float64 `json:"trade_price"`
		AccVolume float64 `json:"candle_acc_trade_volume"`
	}
	if err := json.Unmarshal(resp, &raw); err != nil {
		return nil, fmt.Errorf("캔들 데이터 파싱 실패: %w", err)
	}

	// 업비트는 최신 캔들부터 내려준다
	candles := make(domain.CandleList, len(raw))
	for i, r := range raw {
		openTime, err := time.ParseInLocation("2006-01-02T15:04:05", r.TimeKST, kst)
		if err != nil {
			return nil, fmt.Errorf("캔들 시간 파싱 실패: %w", err)
		}
		candles[len(raw)-1-i] = domain.Candle{
			OpenTime: openTime,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.AccVolume,
			Ticker:   r.Market,
			Interval: interval,
		}
	}
	return candles, nil
}

func candleEndpoint(interval domain.TimeInterval) (string, error) {
	switch interval {
	case domain.Interval1d:
		return "/v1/candles/days", nil
	case domain.Interval1w:
		return "/v1/candles/weeks", nil
	case domain.Interval1M:
		return "/v1/candles/months", nil
	}

	unit, ok := strings.CutPrefix(string(interval), "minute")
	if !ok {
		return "", fmt.Errorf("지원하지 않는 캔들 간격: %s", interval)
	}
	return "/v1/candles/minutes/" + unit, nil
}
