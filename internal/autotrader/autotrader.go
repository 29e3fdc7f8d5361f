package autotrader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/agent"
	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange"
	"github.com/assist-by/shark/internal/logger"
	"github.com/assist-by/shark/internal/notification"
	"github.com/assist-by/shark/internal/retry"
	"github.com/assist-by/shark/internal/scheduler"
	"github.com/assist-by/shark/internal/store"
	"github.com/assist-by/shark/internal/trading"
)

const defaultAgentTimeout = 3 * time.Minute

// ErrNoCredentials는 거래소나 에이전트 자격 증명 없이 시작하려 할 때 반환됩니다
var ErrNoCredentials = &trading.StateError{Reason: "거래소 또는 에이전트 API 키가 설정되지 않았습니다"}

// AutoTrader는 주기마다 시장을 살피고 에이전트에게 매매 판단을 맡기는 자동매매 루프입니다
type AutoTrader struct {
	mu           sync.RWMutex
	cfg          Config
	state        RunState
	history      []domain.TradeRecord
	limitNotice  string // 한도 도달 알림을 보낸 날짜
	exchange     exchange.Exchange
	dispatcher   *trading.Dispatcher
	retry        *retry.Wrapper
	notifier     notification.Notifier
	store        store.TradeStore
	now          func() time.Time
	chunk        time.Duration
	agentTimeout time.Duration
	log          *logrus.Entry

	runMu    sync.Mutex // Start/Stop 직렬화
	sched    *scheduler.Scheduler
	loopDone chan struct{} // 루프 고루틴이 상태 정리까지 마치면 닫힘
}

// Option은 AutoTrader 생성 옵션입니다
type Option func(*AutoTrader)

// WithNotifier는 거래/에러/정보 알림을 받을 대상을 지정합니다
func WithNotifier(n notification.Notifier) Option {
	return func(a *AutoTrader) {
		if n != nil {
			a.notifier = n
		}
	}
}

// WithStore는 거래 기록을 영구 보관할 저장소를 지정합니다
func WithStore(s store.TradeStore) Option {
	return func(a *AutoTrader) {
		if s != nil {
			a.store = s
		}
	}
}

// WithClock은 현재 시각 함수를 바꿉니다
func WithClock(now func() time.Time) Option {
	return func(a *AutoTrader) {
		a.now = now
	}
}

// WithChunk는 대기 중 중지 요청을 확인하는 간격을 지정합니다
func WithChunk(d time.Duration) Option {
	return func(a *AutoTrader) {
		a.chunk = d
	}
}

// WithAgentTimeout은 한 주기에서 에이전트 판단에 허용하는 최대 시간을 지정합니다
func WithAgentTimeout(d time.Duration) Option {
	return func(a *AutoTrader) {
		if d > 0 {
			a.agentTimeout = d
		}
	}
}

// WithRetry는 스냅샷 조회에 사용할 재시도 래퍼를 지정합니다
func WithRetry(rw *retry.Wrapper) Option {
	return func(a *AutoTrader) {
		if rw != nil {
			a.retry = rw
		}
	}
}

// New는 새로운 AutoTrader를 생성합니다
func New(cfg Config, ex exchange.Exchange, d *trading.Dispatcher, opts ...Option) (*AutoTrader, error) {
	cfg = cfg.clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &AutoTrader{
		cfg:          cfg,
		state:        RunState{Status: StatusIdle},
		exchange:     ex,
		dispatcher:   d,
		retry:        retry.New(retry.DefaultConfig()),
		notifier:     notification.Nop{},
		store:        store.Nop{},
		now:          time.Now,
		chunk:        scheduler.DefaultChunk,
		agentTimeout: defaultAgentTimeout,
		log:          logger.Component("autotrader"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Restore는 저장소에서 오늘 거래 기록을 읽어 일일 거래 횟수와 기록을 복원합니다.
// 재시작 후에도 일일 한도가 유지되도록 Start 전에 호출합니다.
func (a *AutoTrader) Restore(ctx context.Context) error {
	now := a.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	trades, err := a.store.ListTrades(ctx, today, 0)
	if err != nil {
		return fmt.Errorf("거래 기록 복원 실패: %w", err)
	}

	a.mu.Lock()
	a.rollover(now)
	a.history = append(trades, a.history...)
	a.state.DailyTradingCount += len(trades)
	count := a.state.DailyTradingCount
	a.mu.Unlock()

	if len(trades) > 0 {
		a.log.WithField("daily_count", count).Infof("오늘 거래 기록 %d건 복원", len(trades))
	}
	return nil
}

// Start는 백그라운드 루프를 시작합니다. 이미 실행 중이면 false를 반환합니다.
// 자격 증명이 없으면 상태를 Error로 바꾸고 StateError를 반환합니다.
// ctx는 루프 전체의 수명이며 Stop과 별개로 취소되면 루프가 끝납니다.
func (a *AutoTrader) Start(ctx context.Context, ag agent.DecisionAgent) (bool, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.IsRunning() {
		return false, nil
	}

	if err := a.checkCredentials(ag); err != nil {
		a.mu.Lock()
		a.state.Status = StatusError
		a.state.LastError = err.Error()
		a.mu.Unlock()

		a.log.WithError(err).Error("자동매매 시작 실패")
		a.sendError(ctx, err)
		return false, err
	}

	a.mu.Lock()
	a.state.IsRunning = true
	a.state.Status = StatusRunning
	a.state.LastError = ""
	a.mu.Unlock()

	sched := scheduler.NewScheduler(
		func() time.Duration { return a.Config().Interval },
		&cycleTask{trader: a, agent: ag},
		scheduler.WithChunk(a.chunk),
		scheduler.WithClock(a.now),
		scheduler.WithWaitHook(a.onWait),
	)
	done := make(chan struct{})
	a.sched = sched
	a.loopDone = done

	go func() {
		defer close(done)
		err := sched.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.WithError(err).Error("자동매매 루프 비정상 종료")
		}
		a.markStopped()
	}()

	cfg := a.Config()
	a.log.WithFields(logrus.Fields{
		"interval": cfg.Interval,
		"coins":    cfg.TargetCoins,
		"risk":     cfg.RiskLevel,
	}).Info("자동매매 시작")
	a.sendInfo(ctx, fmt.Sprintf("🦈 자동매매를 시작합니다. (주기 %v, 대상 %v)", cfg.Interval, cfg.TargetCoins))
	return true, nil
}

// Stop은 루프를 중지하고 루프가 끝날 때까지 기다립니다.
// 진행 중인 주기는 끝까지 실행되며, 실행 중이 아니면 false를 반환합니다.
func (a *AutoTrader) Stop() bool {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if !a.IsRunning() || a.sched == nil {
		return false
	}

	a.sched.Stop()
	<-a.loopDone
	a.sched = nil
	a.loopDone = nil

	a.log.Info("자동매매 중지")
	return true
}

func (a *AutoTrader) markStopped() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.IsRunning = false
	a.state.Status = StatusStopped
	a.state.NextCheckTime = time.Time{}
}

// RunOnce는 루프 없이 한 주기만 실행합니다
func (a *AutoTrader) RunOnce(ctx context.Context, ag agent.DecisionAgent) error {
	if err := a.checkCredentials(ag); err != nil {
		return err
	}
	return a.cycle(ctx, ag)
}

func (a *AutoTrader) checkCredentials(ag agent.DecisionAgent) error {
	if a.exchange == nil || !a.exchange.HasCredentials() || ag == nil || !ag.HasCredentials() {
		return ErrNoCredentials
	}
	return nil
}

// IsRunning은 루프가 실행 중인지 반환합니다
func (a *AutoTrader) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.IsRunning
}

// Status는 실행 상태의 복사본을 반환합니다
func (a *AutoTrader) Status() RunState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// History는 거래 기록의 복사본을 반환합니다
func (a *AutoTrader) History() []domain.TradeRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.TradeRecord, len(a.history))
	copy(out, a.history)
	return out
}

// Config는 현재 설정의 복사본을 반환합니다
func (a *AutoTrader) Config() Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.clone()
}

// UpdateConfig는 설정을 통째로 교체합니다. 실행 중인 루프는 다음 주기부터 새 설정을 사용합니다.
func (a *AutoTrader) UpdateConfig(cfg Config) error {
	cfg = cfg.clone()
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	a.log.WithField("interval", cfg.Interval).Info("자동매매 설정 변경")
	return nil
}

// cycleTask는 스케줄러가 실행하는 한 주기입니다
type cycleTask struct {
	trader *AutoTrader
	agent  agent.DecisionAgent
}

func (t *cycleTask) Execute(ctx context.Context) error {
	return t.trader.cycle(ctx, t.agent)
}

// cycle은 한 주기를 실행합니다. 실패해도 루프를 멈추지 않도록 panic까지 에러로 바꿉니다.
func (a *AutoTrader) cycle(ctx context.Context, ag agent.DecisionAgent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("주기 실행 중 panic: %v", r)
		}
		a.mu.Lock()
		if a.state.IsRunning {
			a.state.Status = StatusRunning
		}
		if err != nil {
			a.state.LastError = err.Error()
		}
		a.mu.Unlock()
		if err != nil {
			a.sendError(ctx, err)
		}
	}()

	cfg := a.Config()
	now := a.now()

	a.mu.Lock()
	a.rollover(now)
	a.state.LastCheckTime = now
	count := a.state.DailyTradingCount
	a.mu.Unlock()

	log := a.log.WithField("daily_count", count)

	if count >= cfg.MaxTradingCount {
		log.Infof("일일 거래 한도 도달 (%d/%d), 이번 주기는 건너뜁니다", count, cfg.MaxTradingCount)
		a.notifyLimit(ctx, now, cfg.MaxTradingCount)
		return nil
	}

	a.setStatus(StatusAnalyzing)
	snap, err := a.snapshot(ctx, cfg)
	if err != nil {
		return fmt.Errorf("시장 분석 실패: %w", err)
	}

	a.setStatus(StatusDeciding)
	prompt := BuildPrompt(cfg, a.Status(), snap)

	scoped := a.dispatcher.Scoped(cfg.RiskLevel, &tradeRecorder{trader: a, cfg: cfg})

	timeout := a.agentTimeout
	if cfg.Interval < timeout {
		timeout = cfg.Interval
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dec, err := ag.Decide(actx, prompt, scoped)
	if dec != nil {
		a.mu.Lock()
		a.state.LastDecision = dec.Text
		a.mu.Unlock()
		log.WithFields(logrus.Fields{
			"turns":      dec.Turns,
			"tool_calls": len(dec.ToolCalls),
		}).Info("에이전트 판단 완료")
	}
	if err != nil {
		return fmt.Errorf("에이전트 판단 실패: %w", err)
	}
	return nil
}

// rollover는 날짜가 바뀌었으면 일일 거래 횟수를 초기화합니다. mu를 잡은 상태에서 호출해야 합니다.
func (a *AutoTrader) rollover(now time.Time) {
	today := now.Format(dateLayout)
	if a.state.LastTradingDate == today {
		return
	}
	if a.state.LastTradingDate != "" {
		a.log.WithField("date", today).Infof("날짜 변경, 일일 거래 횟수 초기화 (이전 %d회)", a.state.DailyTradingCount)
	}
	a.state.DailyTradingCount = 0
	a.state.LastTradingDate = today
}

func (a *AutoTrader) setStatus(s Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.IsRunning {
		a.state.Status = s
	}
}

func (a *AutoTrader) onWait(next time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.NextCheckTime = next
	if a.state.IsRunning {
		a.state.Status = StatusWaiting
	}
}

// notifyLimit은 한도 도달 알림을 하루에 한 번만 보냅니다
func (a *AutoTrader) notifyLimit(ctx context.Context, now time.Time, max int) {
	today := now.Format(dateLayout)

	a.mu.Lock()
	if a.limitNotice == today {
		a.mu.Unlock()
		return
	}
	a.limitNotice = today
	a.mu.Unlock()

	a.sendInfo(ctx, fmt.Sprintf("⚠️ 일일 거래 한도 도달 (%d회). 오늘은 더 이상 거래하지 않습니다.", max))
}

func (a *AutoTrader) sendInfo(ctx context.Context, msg string) {
	if err := a.notifier.SendInfo(ctx, msg); err != nil {
		a.log.WithError(err).Warn("정보 알림 전송 실패")
	}
}

func (a *AutoTrader) sendError(ctx context.Context, err error) {
	if nerr := a.notifier.SendError(ctx, err); nerr != nil {
		a.log.WithError(nerr).Warn("에러 알림 전송 실패")
	}
}
