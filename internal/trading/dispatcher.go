package trading

import (
	"context"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/exchange"
	"github.com/assist-by/shark/internal/logger"
	"github.com/assist-by/shark/internal/order"
	"github.com/assist-by/shark/internal/retry"
)

// TradeIntent는 거래소로 보내기 직전의 매수/매도 요청입니다
type TradeIntent struct {
	Action     domain.TradeAction
	Ticker     string
	PriceType  domain.PriceType
	Amount     float64 // 매수는 KRW 금액, 매도는 수량 (전량이면 0)
	AmountText string  // 요청 원문 (예: "all", "0.5")
	LimitPrice *float64
}

// TradeHook은 매수/매도 전후에 호출됩니다.
// BeforeTrade가 에러를 반환하면 거래소를 호출하지 않습니다.
type TradeHook interface {
	BeforeTrade(ctx context.Context, intent TradeIntent) error
	AfterTrade(ctx context.Context, intent TradeIntent, order *domain.Order)
}

// Dispatcher는 에이전트가 호출하는 거래 도구를 구현합니다
type Dispatcher struct {
	exchange exchange.Exchange
	executor *order.Executor
	tracker  *order.Tracker
	retry    *retry.Wrapper
	sizing   order.Sizing
	risk     domain.RiskLevel
	hook     TradeHook
	specs    []ToolSpec
	schemas  map[string]*jsonschema.Schema
	log      *logrus.Entry
}

// Option은 Dispatcher 생성 옵션입니다
type Option func(*Dispatcher)

// WithSizing은 전액 매수 판단 기준과 수수료 여유분을 지정합니다
func WithSizing(s order.Sizing) Option {
	return func(d *Dispatcher) {
		d.sizing = s
	}
}

// WithRiskLevel은 매수 후보 필터에 쓸 위험 성향을 지정합니다
func WithRiskLevel(r domain.RiskLevel) Option {
	return func(d *Dispatcher) {
		d.risk = r
	}
}

// NewDispatcher는 새로운 도구 디스패처를 생성합니다
func NewDispatcher(ex exchange.Exchange, rw *retry.Wrapper, opts ...Option) (*Dispatcher, error) {
	specs := Specs()
	schemas, err := compileSchemas(specs)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		exchange: ex,
		executor: order.NewExecutor(ex, rw),
		tracker:  order.NewTracker(ex, rw),
		retry:    rw,
		sizing:   order.DefaultSizing(),
		risk:     domain.RiskConservative,
		specs:    specs,
		schemas:  schemas,
		log:      logger.Component("trading"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Scoped는 위험 성향과 거래 훅을 바꾼 복사본을 반환합니다.
// 원본 디스패처는 변경되지 않습니다.
func (d *Dispatcher) Scoped(risk domain.RiskLevel, hook TradeHook) *Dispatcher {
	cp := *d
	cp.risk = risk
	cp.hook = hook
	return &cp
}

// Specs는 디스패처가 제공하는 도구 정의를 반환합니다
func (d *Dispatcher) Specs() []ToolSpec {
	return d.specs
}

// Call은 이름으로 도구를 실행합니다. 어떤 경우에도 panic이나 에러를 밖으로 내보내지 않습니다.
func (d *Dispatcher) Call(ctx context.Context, name string, args any) (res Result) {
	log := d.log.WithField("tool", name)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("도구 실행 중 panic: %v", r)
			res = fail(&ExecutionError{Phase: name, Err: fmt.Errorf("%w: %v", domain.ErrExchange, r)})
		}
		if !res.Success {
			log.WithField("error_kind", res.ErrorKind).Warnf("도구 실행 실패: %s", res.Message)
		}
	}()

	log.Debugf("도구 호출: %v", args)

	switch name {
	case ToolGetAvailableCoins:
		return d.ListAvailableCoins(ctx, args)
	case ToolGetCoinPriceInfo:
		return d.GetCoinPriceInfo(ctx, args)
	case ToolBuyCoin:
		return d.BuyCoin(ctx, args)
	case ToolSellCoin:
		return d.SellCoin(ctx, args)
	case ToolCheckOrderStatus:
		return d.CheckOrderStatus(ctx, args)
	case ToolCancelOrder:
		return d.CancelOrder(ctx, args)
	default:
		return fail(invalid("tool", "알 수 없는 도구: %s", name))
	}
}

// fetch는 조회성 거래소 호출을 재시도 래퍼로 감쌉니다
func fetch[T any](ctx context.Context, d *Dispatcher, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := retry.Call(ctx, d.retry, op, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		return v, exchange.Classify(err)
	})
	return v, retry.AsExchangeError(err)
}

func (d *Dispatcher) balances(ctx context.Context) (domain.Balances, error) {
	return fetch(ctx, d, "잔고 조회", d.exchange.GetBalances)
}
