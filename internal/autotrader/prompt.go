package autotrader

import (
	"fmt"
	"strings"

	"github.com/assist-by/shark/internal/domain"
)

var riskLabels = map[domain.RiskLevel]string{
	domain.RiskConservative: "보수적 (주요 코인만 매수)",
	domain.RiskNeutral:      "중립적",
	domain.RiskAggressive:   "공격적",
}

// BuildPrompt는 설정, 실행 상태, 스냅샷으로 에이전트에게 보낼 판단 요청을 만듭니다
func BuildPrompt(cfg Config, state RunState, snap *Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "현재 시각: %s\n\n", snap.TakenAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## 자동매매 설정\n")
	fmt.Fprintf(&b, "- 위험 성향: %s\n", riskLabels[cfg.RiskLevel])
	fmt.Fprintf(&b, "- 1회 최대 매수 금액: %.0f원\n", cfg.MaxInvestment)
	remaining := cfg.MaxTradingCount - state.DailyTradingCount
	if remaining < 0 {
		remaining = 0
	}
	fmt.Fprintf(&b, "- 오늘 남은 거래 횟수: %d회 (하루 최대 %d회)\n", remaining, cfg.MaxTradingCount)
	fmt.Fprintf(&b, "- 관찰 대상: %s\n\n", strings.Join(cfg.TargetCoins, ", "))

	b.WriteString("## 포트폴리오\n")
	fmt.Fprintf(&b, "- 보유 KRW: %.0f원\n", snap.Portfolio.KRW)
	if len(snap.Portfolio.Holdings) == 0 {
		b.WriteString("- 보유 코인 없음\n")
	}
	for _, h := range snap.Portfolio.Holdings {
		fmt.Fprintf(&b, "- %s: %.8g개, 평단가 %.0f원, 현재가 %.0f원, 평가금액 %.0f원, 수익률 %+.2f%%\n",
			h.Ticker, h.Balance, h.AvgBuyPrice, h.CurrentPrice, h.Value, h.ProfitRate)
	}
	fmt.Fprintf(&b, "- 총 평가금액: %.0f원\n\n", snap.Portfolio.TotalValue)

	b.WriteString("## 시장 정보 (일봉 기준)\n")
	for _, c := range snap.Market.Coins {
		fmt.Fprintf(&b, "- %s: 현재가 %.0f원, 전일 대비 %+.2f%%", c.Ticker, c.Price, c.ChangeRate)
		if c.RSI > 0 {
			fmt.Fprintf(&b, ", RSI(14) %.1f", c.RSI)
		}
		if c.SMA5 > 0 && c.SMA20 > 0 {
			fmt.Fprintf(&b, ", SMA5 %.0f / SMA20 %.0f", c.SMA5, c.SMA20)
		}
		if c.MACDHist != 0 {
			fmt.Fprintf(&b, ", MACD 히스토그램 %+.0f", c.MACDHist)
		}
		b.WriteString("\n")
	}
	if len(snap.Market.Failed) > 0 {
		fmt.Fprintf(&b, "- 조회 실패: %s\n", strings.Join(snap.Market.Failed, ", "))
	}

	b.WriteString("\n## 요청\n")
	b.WriteString("위 정보를 바탕으로 매수, 매도, 관망 중 하나를 결정하세요. ")
	b.WriteString("거래가 필요하면 도구로 직접 주문하고, 1회 최대 매수 금액과 남은 거래 횟수를 넘지 마세요. ")
	b.WriteString("관망한다면 도구를 호출하지 말고 이유만 설명하세요.\n")

	return b.String()
}
