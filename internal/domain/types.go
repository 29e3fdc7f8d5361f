package domain

import "strings"

// OrderSide는 주문 방향을 정의합니다 (업비트 표기)
type OrderSide string

const (
	Bid OrderSide = "bid" // 매수
	Ask OrderSide = "ask" // 매도
)

// OrderType은 거래소 주문 유형을 정의합니다
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"  // 지정가
	OrderTypePrice  OrderType = "price"  // 시장가 매수 (KRW 금액 지정)
	OrderTypeMarket OrderType = "market" // 시장가 매도 (수량 지정)
)

// PriceType은 도구 호출에서 사용하는 가격 방식입니다
type PriceType string

const (
	PriceMarket PriceType = "market"
	PriceLimit  PriceType = "limit"
)

// Label은 알림과 메시지에 쓰이는 한글 표기를 반환합니다
func (p PriceType) Label() string {
	if p == PriceLimit {
		return "지정가"
	}
	return "시장가"
}

// TradeAction은 거래 기록의 매수/매도 구분입니다
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// RiskLevel은 매수 후보 코인의 범위를 결정합니다
type RiskLevel string

const (
	RiskConservative RiskLevel = "conservative"
	RiskNeutral      RiskLevel = "neutral"
	RiskAggressive   RiskLevel = "aggressive"
)

// ParseRiskLevel은 영문 또는 한글 표기를 RiskLevel로 변환합니다.
// 알 수 없는 값은 conservative로 취급합니다.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aggressive", "공격적":
		return RiskAggressive
	case "neutral", "moderate", "중립적":
		return RiskNeutral
	default:
		return RiskConservative
	}
}

// TimeInterval은 캔들 차트의 시간 간격을 정의합니다
type TimeInterval string

const (
	Interval1m  TimeInterval = "minute1"
	Interval3m  TimeInterval = "minute3"
	Interval5m  TimeInterval = "minute5"
	Interval15m TimeInterval = "minute15"
	Interval30m TimeInterval = "minute30"
	Interval1h  TimeInterval = "minute60"
	Interval4h  TimeInterval = "minute240"
	Interval1d  TimeInterval = "day"
	Interval1w  TimeInterval = "week"
	Interval1M  TimeInterval = "month"
)

// QuoteCurrency는 원화 마켓의 기준 통화입니다
const QuoteCurrency = "KRW"

// NormalizeTicker는 "btc", "KRW-btc" 같은 입력을 "KRW-BTC" 형태로 맞춥니다
func NormalizeTicker(s string) string {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return ""
	}
	if !strings.HasPrefix(t, QuoteCurrency+"-") {
		t = QuoteCurrency + "-" + t
	}
	return t
}

// CoinOf는 "KRW-BTC"에서 "BTC"를 반환합니다
func CoinOf(ticker string) string {
	if i := strings.IndexByte(ticker, '-'); i >= 0 {
		return ticker[i+1:]
	}
	return ticker
}
