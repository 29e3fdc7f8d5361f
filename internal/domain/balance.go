package domain

// Balance는 통화별 잔고 정보를 표현합니다
type Balance struct {
	Currency     string  // 통화 코드 (예: KRW, BTC)
	Balance      float64 // 주문 가능 수량
	Locked       float64 // 주문 중 묶인 수량
	AvgBuyPrice  float64 // 평균 매수가
	UnitCurrency string  // 평단가 기준 통화
}

// Balances는 잔고 목록입니다
type Balances []Balance

// Find는 통화 코드로 잔고를 찾습니다
func (b Balances) Find(currency string) (Balance, bool) {
	for _, bal := range b {
		if bal.Currency == currency {
			return bal, true
		}
	}
	return Balance{}, false
}

// Amount는 통화의 주문 가능 수량을 반환합니다. 없으면 0입니다.
func (b Balances) Amount(currency string) float64 {
	bal, _ := b.Find(currency)
	return bal.Balance
}

// MarketInfo는 거래소에 상장된 마켓 정보입니다
type MarketInfo struct {
	Market      string // 예: KRW-BTC
	KoreanName  string
	EnglishName string
}

// Ticker는 마켓의 현재 시세 요약입니다
type Ticker struct {
	Market           string
	TradePrice       float64 // 현재가
	SignedChangeRate float64 // 전일 대비 등락률 (0.01 = 1%)
	AccTradePrice24h float64 // 24시간 누적 거래대금
}
