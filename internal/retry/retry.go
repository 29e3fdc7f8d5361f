package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/logger"
)

// ErrExhausted는 모든 시도가 실패했을 때 체인에 포함됩니다
var ErrExhausted = fmt.Errorf("최대 재시도 횟수 초과")

// Config는 재시도 설정을 정의합니다
type Config struct {
	MaxAttempts int           // 전체 시도 횟수 (첫 시도 포함)
	Delay       time.Duration // 시도 사이의 고정 대기 시간
}

// DefaultConfig는 3회 시도, 1초 대기 설정을 반환합니다
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, Delay: time.Second}
}

// ExhaustedError는 마지막 시도의 에러를 감쌉니다
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s 실패 (%d회 시도): %v", e.Op, e.Attempts, e.Err)
}

// Unwrap은 마지막 에러와 ErrExhausted를 함께 노출합니다
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent는 재시도해도 결과가 바뀌지 않는 에러로 표시합니다
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent는 에러가 Permanent로 표시되었는지 확인합니다
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Wrapper는 실패한 작업을 고정 간격으로 다시 시도합니다
type Wrapper struct {
	cfg Config
	log logrus.FieldLogger
}

// Option은 Wrapper 생성 옵션입니다
type Option func(*Wrapper)

// WithLogger는 재시도 로그를 남길 로거를 지정합니다
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Wrapper) {
		w.log = log
	}
}

// New는 새로운 Wrapper를 생성합니다
func New(cfg Config, opts ...Option) *Wrapper {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	w := &Wrapper{cfg: cfg, log: logger.Component("retry")}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Do는 fn이 성공하거나 시도 횟수를 모두 쓸 때까지 실행합니다.
// 실패 후 다시 시도할 때마다 Warn 로그를 한 건 남깁니다.
// 컨텍스트가 취소되면 대기 중이라도 즉시 반환합니다.
func (w *Wrapper) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if IsPermanent(lastErr) {
			w.log.WithField("op", op).Debugf("%s 실패 (재시도 불필요): %v", op, lastErr)
			return lastErr
		}

		if attempt == w.cfg.MaxAttempts {
			break
		}

		w.log.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
		}).Warnf("%s 실패 (attempt %d/%d), 재시도합니다: %v", op, attempt, w.cfg.MaxAttempts, lastErr)

		timer := time.NewTimer(w.cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return &ExhaustedError{Op: op, Attempts: w.cfg.MaxAttempts, Err: lastErr}
}

// Call은 값을 반환하는 작업을 Wrapper로 실행합니다
func Call[T any](ctx context.Context, w *Wrapper, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := w.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// AsExchangeError는 재시도 결과를 거래소 실패 분류로 감쌉니다.
// 이미 다른 분류가 붙은 에러는 그대로 둡니다.
func AsExchangeError(err error) error {
	if err == nil {
		return nil
	}
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindInsufficientBalance, domain.KindState:
		return err
	}
	if errors.Is(err, domain.ErrExchange) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrExchange, err)
}
