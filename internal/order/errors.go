package order

import "fmt"

// Error 타입들은 주문 처리 중 발생할 수 있는 에러를 정의합니다
var (
	ErrNoOrderID      = fmt.Errorf("주문은 성공했으나 주문 ID를 받지 못했습니다")
	ErrEmptyOrderID   = fmt.Errorf("주문 ID가 지정되지 않았습니다")
	ErrInvalidPrice   = fmt.Errorf("가격은 0보다 커야 합니다")
	ErrInvalidVolume  = fmt.Errorf("수량은 0보다 커야 합니다")
	ErrBelowMinimum   = fmt.Errorf("최소 주문 금액보다 작습니다")
	ErrNothingToSpend = fmt.Errorf("주문 가능한 KRW가 없습니다")
)

// OrderError는 주문 에러에 마켓과 작업 정보를 덧붙입니다
type OrderError struct {
	Ticker string
	Op     string
	Err    error
}

// Error는 error 인터페이스를 구현합니다
func (e *OrderError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("주문 에러 [%s, 작업: %s]: %v", e.Ticker, e.Op, e.Err)
	}
	return fmt.Sprintf("주문 에러 [작업: %s]: %v", e.Op, e.Err)
}

// Unwrap은 내부 에러를 반환합니다 (errors.Is/As 지원을 위함)
func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError는 새로운 OrderError를 생성합니다
func NewOrderError(ticker, op string, err error) *OrderError {
	return &OrderError{
		Ticker: ticker,
		Op:     op,
		Err:    err,
	}
}
