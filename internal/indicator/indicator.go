// Package indicator는 캔들 목록에서 기술적 지표를 계산합니다
package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/assist-by/shark/internal/domain"
)

// ValidationError는 입력값 검증 에러를 정의합니다
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("유효하지 않은 %s: %v", e.Field, e.Err)
}

// Config는 요약 지표의 기간 설정입니다
type Config struct {
	RSIPeriod  int
	SMAShort   int
	SMALong    int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// DefaultConfig는 RSI(14), SMA(5/20), MACD(12,26,9) 설정을 반환합니다
func DefaultConfig() Config {
	return Config{
		RSIPeriod:  14,
		SMAShort:   5,
		SMALong:    20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

// Summary는 가장 최근 캔들 기준 지표 값입니다. 데이터가 부족한 지표는 0입니다.
type Summary struct {
	RSI       float64
	SMAShort  float64
	SMALong   float64
	MACD      float64
	Signal    float64
	Histogram float64
}

// RSI는 가장 최근 RSI 값을 반환합니다
func RSI(candles domain.CandleList, period int) (float64, error) {
	if period < 2 {
		return 0, ValidationError{Field: "RSI 기간", Err: fmt.Errorf("기간은 2 이상이어야 합니다: %d", period)}
	}
	if len(candles) <= period {
		return 0, ValidationError{Field: "캔들 개수", Err: fmt.Errorf("RSI(%d)에는 %d개 이상 필요합니다: %d", period, period+1, len(candles))}
	}
	return last(talib.Rsi(candles.Closes(), period)), nil
}

// SMA는 가장 최근 단순 이동평균을 반환합니다
func SMA(candles domain.CandleList, period int) (float64, error) {
	if period < 1 {
		return 0, ValidationError{Field: "SMA 기간", Err: fmt.Errorf("기간은 1 이상이어야 합니다: %d", period)}
	}
	if len(candles) < period {
		return 0, ValidationError{Field: "캔들 개수", Err: fmt.Errorf("SMA(%d)에는 %d개 이상 필요합니다: %d", period, period, len(candles))}
	}
	return last(talib.Sma(candles.Closes(), period)), nil
}

// MACD는 가장 최근 MACD, 시그널, 히스토그램을 반환합니다
func MACD(candles domain.CandleList, fast, slow, signal int) (float64, float64, float64, error) {
	if fast < 2 || slow <= fast || signal < 1 {
		return 0, 0, 0, ValidationError{Field: "MACD 기간", Err: fmt.Errorf("fast=%d slow=%d signal=%d", fast, slow, signal)}
	}
	if need := slow + signal - 1; len(candles) < need {
		return 0, 0, 0, ValidationError{Field: "캔들 개수", Err: fmt.Errorf("MACD에는 %d개 이상 필요합니다: %d", need, len(candles))}
	}
	macd, sig, hist := talib.Macd(candles.Closes(), fast, slow, signal)
	return last(macd), last(sig), last(hist), nil
}

// Summarize는 설정된 모든 지표를 계산합니다. 데이터가 부족한 지표는 건너뜁니다.
func Summarize(candles domain.CandleList, cfg Config) Summary {
	var s Summary
	if v, err := RSI(candles, cfg.RSIPeriod); err == nil {
		s.RSI = v
	}
	if v, err := SMA(candles, cfg.SMAShort); err == nil {
		s.SMAShort = v
	}
	if v, err := SMA(candles, cfg.SMALong); err == nil {
		s.SMALong = v
	}
	if m, sig, h, err := MACD(candles, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal); err == nil {
		s.MACD, s.Signal, s.Histogram = m, sig, h
	}
	return s
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
