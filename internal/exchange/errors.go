package exchange

import (
	"errors"
	"fmt"
	"strings"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/retry"
)

var (
	// ErrOrderNotFound는 거래소에 해당 주문이 없을 때 반환됩니다
	ErrOrderNotFound = fmt.Errorf("주문을 찾을 수 없습니다")
	// ErrNoCredentials는 API 키 없이 인증 요청을 보내려 할 때 반환됩니다
	ErrNoCredentials = fmt.Errorf("거래소 API 키가 설정되지 않았습니다")
)

// apiError는 거래소 클라이언트가 돌려주는 구조화된 에러입니다
type apiError interface {
	error
	Code() string
	Retryable() bool
}

// Classify는 거래소 에러를 재시도 여부와 실패 분류에 맞게 감쌉니다
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrOrderNotFound) {
		return retry.Permanent(fmt.Errorf("%w: %w", domain.ErrState, err))
	}

	if errors.Is(err, ErrNoCredentials) {
		return retry.Permanent(err)
	}

	var apiErr apiError
	if errors.As(err, &apiErr) {
		if strings.HasPrefix(apiErr.Code(), "insufficient_funds") {
			return retry.Permanent(fmt.Errorf("%w: %w", domain.ErrInsufficientBalance, err))
		}
		if !apiErr.Retryable() {
			return retry.Permanent(err)
		}
	}

	return err
}
