package domain

import (
	"errors"
	"fmt"
)

// 도구 호출 실패의 분류입니다
var (
	ErrValidation          = fmt.Errorf("입력값이 유효하지 않습니다")
	ErrInsufficientBalance = fmt.Errorf("잔고가 부족합니다")
	ErrExchange            = fmt.Errorf("거래소 요청에 실패했습니다")
	ErrState               = fmt.Errorf("현재 상태에서 수행할 수 없습니다")
)

// ErrorKind는 도구 결과에 실리는 실패 분류 문자열입니다
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindExchange            ErrorKind = "exchange"
	KindState               ErrorKind = "state"
)

// KindOf는 에러 체인에서 분류를 찾습니다. 알 수 없으면 exchange로 봅니다.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrState):
		return KindState
	default:
		return KindExchange
	}
}
