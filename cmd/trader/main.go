package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	osSignal "os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/assist-by/shark/internal/agent"
	"github.com/assist-by/shark/internal/agent/claude"
	"github.com/assist-by/shark/internal/autotrader"
	"github.com/assist-by/shark/internal/config"
	"github.com/assist-by/shark/internal/exchange/upbit"
	"github.com/assist-by/shark/internal/logger"
	"github.com/assist-by/shark/internal/notification/discord"
	"github.com/assist-by/shark/internal/order"
	"github.com/assist-by/shark/internal/retry"
	"github.com/assist-by/shark/internal/store"
	"github.com/assist-by/shark/internal/store/sqlite"
	"github.com/assist-by/shark/internal/trading"
	httpapi "github.com/assist-by/shark/internal/transport/http"
)

func main() {
	// 명령줄 플래그 정의
	onceFlag := flag.Bool("once", false, "한 주기만 실행 후 종료")
	flag.Parse()

	// 컨텍스트 생성 (종료 신호 시 취소)
	ctx, cancel := osSignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *onceFlag); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		cancel()
		os.Exit(1)
	}
}

// run은 구성 요소를 조립하고 종료 신호까지 실행합니다.
// 열어 둔 자원은 반환 전에 모두 닫힙니다.
func run(ctx context.Context, once bool) error {
	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.App.LogLevel,
		OutputFile: cfg.App.LogFile,
		MaxSize:    cfg.App.LogMaxSize,
		MaxBackups: cfg.App.LogMaxBackups,
		MaxAge:     cfg.App.LogMaxAge,
		Compress:   true,
	}); err != nil {
		return fmt.Errorf("로거 초기화 실패: %w", err)
	}
	log := logger.Component("main")
	log.Info("자동매매 봇 시작...")

	// Discord 클라이언트 생성
	discordClient := discord.NewClient(
		cfg.Discord.TradeWebhook,
		cfg.Discord.ErrorWebhook,
		cfg.Discord.InfoWebhook,
		discord.WithTimeout(cfg.Discord.Timeout),
	)

	// 업비트 클라이언트 생성
	upbitClient := upbit.NewClient(
		cfg.Upbit.AccessKey,
		cfg.Upbit.SecretKey,
		upbit.WithBaseURL(cfg.Upbit.BaseURL),
		upbit.WithTimeout(cfg.Upbit.Timeout),
		upbit.WithRateLimit(cfg.Upbit.RateLimit),
	)

	rw := retry.New(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
	})

	sizing := order.DefaultSizing()
	sizing.FullBalanceThreshold = decimal.NewFromFloat(cfg.Trading.FullBalanceThreshold)
	sizing.FeeReserveRate = decimal.NewFromFloat(cfg.Trading.FeeReserveRate)

	dispatcher, err := trading.NewDispatcher(upbitClient, rw, trading.WithSizing(sizing))
	if err != nil {
		return fmt.Errorf("도구 디스패처 생성 실패: %w", err)
	}

	// 거래 기록 저장소 (선택)
	var tradeStore store.TradeStore = store.Nop{}
	if cfg.App.StorePath != "" {
		db, err := sqlite.Open(cfg.App.StorePath)
		if err != nil {
			return fmt.Errorf("거래 기록 저장소 열기 실패: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("거래 기록 저장소 닫기 실패")
			}
		}()
		tradeStore = db
	}

	trader, err := autotrader.New(
		autotrader.ConfigFrom(cfg),
		upbitClient,
		dispatcher,
		autotrader.WithNotifier(discordClient),
		autotrader.WithRetry(rw),
		autotrader.WithAgentTimeout(cfg.Agent.Timeout),
		autotrader.WithStore(tradeStore),
	)
	if err != nil {
		return fmt.Errorf("자동매매 생성 실패: %w", err)
	}
	if err := trader.Restore(ctx); err != nil {
		log.WithError(err).Warn("오늘 거래 기록을 복원하지 못했습니다")
	}

	newAgent := func(model string) agent.DecisionAgent {
		return claude.New(
			cfg.Agent.APIKey,
			claude.WithModel(model),
			claude.WithMaxTokens(cfg.Agent.MaxTokens),
			claude.WithMaxTurns(cfg.Agent.MaxTurns),
		)
	}

	// 단일 주기 실행 모드
	if once {
		if err := trader.RunOnce(ctx, newAgent(cfg.Agent.Model)); err != nil {
			return fmt.Errorf("주기 실행 실패: %w", err)
		}
		st := trader.Status()
		log.WithField("daily_count", st.DailyTradingCount).Infof("주기 실행 완료: %s", st.LastDecision)
		return nil
	}

	// HTTP 제어 API (선택)
	if cfg.App.HTTPAddr != "" {
		srv, err := httpapi.NewServer(cfg.App.HTTPAddr, httpapi.NewRouter(ctx, trader, dispatcher, newAgent))
		if err != nil {
			return fmt.Errorf("HTTP 서버 생성 실패: %w", err)
		}
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.WithError(err).Error("HTTP 서버 실행 중 에러 발생")
			}
		}()
	}

	if _, err := trader.Start(ctx, newAgent(cfg.Agent.Model)); err != nil {
		// HTTP API로 다시 시작할 수 있으므로 API가 켜져 있으면 계속 실행
		if cfg.App.HTTPAddr == "" {
			return fmt.Errorf("자동매매 시작 실패: %w", err)
		}
		log.WithError(err).Error("자동매매 시작 실패, HTTP API로 다시 시작할 수 있습니다")
	}

	// 시그널 대기
	<-ctx.Done()
	log.Info("시스템 종료 신호 수신")

	trader.Stop()

	if err := discordClient.SendInfo(context.Background(), "👋 자동매매 봇이 정상적으로 종료되었습니다."); err != nil {
		log.WithError(err).Warn("종료 알림 전송 실패")
	}

	log.Info("프로그램을 종료합니다.")
	return nil
}
