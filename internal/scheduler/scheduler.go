package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/logger"
)

// DefaultChunk는 대기 중 중지 요청과 주기 변경을 확인하는 간격입니다
const DefaultChunk = 5 * time.Second

// Task는 스케줄러가 실행할 작업을 정의하는 인터페이스입니다
type Task interface {
	Execute(ctx context.Context) error
}

// Scheduler는 작업을 실행한 뒤 주기만큼 쉬기를 반복합니다.
// 한 번에 하나의 작업만 실행되며, 작업이 끝나야 다음 대기가 시작됩니다.
type Scheduler struct {
	interval func() time.Duration
	task     Task
	chunk    time.Duration
	onWait   func(next time.Time)
	now      func() time.Time
	log      *logrus.Entry

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Option은 스케줄러 생성 옵션입니다
type Option func(*Scheduler)

// WithChunk는 대기 시간을 나누는 단위를 지정합니다
func WithChunk(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.chunk = d
		}
	}
}

// WithWaitHook은 대기를 시작할 때 다음 실행 시각을 받을 함수를 지정합니다
func WithWaitHook(fn func(next time.Time)) Option {
	return func(s *Scheduler) {
		s.onWait = fn
	}
}

// WithClock은 현재 시각 함수를 바꿉니다
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler는 새로운 스케줄러를 생성합니다.
// interval은 대기를 시작할 때와 매 chunk마다 다시 읽으므로 실행 중 주기 변경이 반영됩니다.
func NewScheduler(interval func() time.Duration, task Task, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: interval,
		task:     task,
		chunk:    DefaultChunk,
		now:      time.Now,
		log:      logger.Component("scheduler"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start는 작업을 즉시 한 번 실행하고 이후 주기마다 반복합니다.
// Stop이 호출되거나 ctx가 취소될 때까지 반환하지 않습니다.
func (s *Scheduler) Start(ctx context.Context) error {
	defer close(s.doneCh)

	for {
		if s.stopped() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.task.Execute(ctx); err != nil {
			// 에러가 발생해도 계속 실행
			s.log.WithError(err).Error("작업 실행 실패")
		}

		if done, err := s.wait(ctx); done {
			return err
		}
	}
}

// wait는 다음 실행 시각까지 chunk 단위로 대기합니다.
// 중지되었거나 ctx가 취소되면 true를 반환합니다.
func (s *Scheduler) wait(ctx context.Context) (bool, error) {
	started := s.now()
	next := started.Add(s.interval())
	if s.onWait != nil {
		s.onWait(next)
	}

	s.log.Infof("다음 실행까지 %v 대기 (다음 실행: %s)",
		next.Sub(started).Round(time.Second),
		next.Format("15:04:05"))

	for {
		remaining := started.Add(s.interval()).Sub(s.now())
		if remaining <= 0 {
			return false, nil
		}

		d := s.chunk
		if remaining < d {
			d = remaining
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return true, ctx.Err()
		case <-s.stopCh:
			timer.Stop()
			return true, nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Stop은 스케줄러를 중지합니다. 실행 중인 작업은 끝까지 진행됩니다.
// 여러 번 호출해도 안전합니다.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Done은 Start가 반환하면 닫히는 채널을 반환합니다
func (s *Scheduler) Done() <-chan struct{} {
	return s.doneCh
}
