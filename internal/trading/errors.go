package trading

import (
	"fmt"

	"github.com/assist-by/shark/internal/domain"
)

// ValidationError는 도구 인자 검증 실패를 나타내는 구조체입니다.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is는 ValidationError를 검증 실패 분류로 묶습니다
func (e *ValidationError) Is(target error) bool { return target == domain.ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// BalanceError는 보유량보다 많이 팔거나 보유하지 않은 코인을 팔려 할 때 반환됩니다.
type BalanceError struct {
	Currency  string
	Held      string
	Requested string
}

func (e *BalanceError) Error() string {
	if e.Requested == "" {
		return fmt.Sprintf("%s 코인을 보유하고 있지 않습니다. 매도할 수 없습니다. (보유량: %s)", e.Currency, e.Held)
	}
	return fmt.Sprintf("매도 수량(%s)이 보유량(%s)보다 많습니다.", e.Requested, e.Held)
}

// Is는 BalanceError를 잔고 부족 분류로 묶습니다
func (e *BalanceError) Is(target error) bool { return target == domain.ErrInsufficientBalance }

// StateError는 현재 상태 때문에 거래를 진행할 수 없을 때 반환됩니다.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return e.Reason }

// Is는 StateError를 상태 에러 분류로 묶습니다
func (e *StateError) Is(target error) bool { return target == domain.ErrState }

// ExecutionError는 거래 실행 중 발생한 오류를 나타내는 구조체입니다.
type ExecutionError struct {
	Phase string
	Err   error
}

func (e *ExecutionError) Error() string {
	return "매매 실행 실패 (" + e.Phase + "): " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }
