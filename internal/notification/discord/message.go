package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/notification"
)

// 알림 종류별 임베드 색상
const (
	ColorBuy     = 0x00FF00
	ColorSell    = 0xFF0000
	ColorError   = 0xFF0000
	ColorInfo    = 0x0099FF
	ColorWarning = 0xFFA500 // 한도 도달
)

// Discord가 거부하지 않도록 맞추는 임베드 길이 제한
const (
	maxDescriptionLen = 4096
	maxFieldValueLen  = 1024
)

const footerText = "Shark 자동매매 🦈"

// payload는 웹훅으로 보내는 본문입니다
type payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// tradePayload는 체결 요청 한 건을 임베드 하나로 만듭니다
func tradePayload(info notification.TradeInfo) payload {
	action, color := "매수", ColorBuy
	amount := info.Amount + " KRW"
	if info.Action == domain.ActionSell {
		action, color = "매도", ColorSell
		amount = info.Amount
	}

	e := stamped(color, info.Timestamp)
	e.Title = fmt.Sprintf("%s %s 주문: %s", info.PriceType.Label(), action, info.Ticker)
	e.field("수량/금액", amount)
	e.field("주문 ID", info.OrderID)
	if info.LimitPrice != nil {
		e.field("지정가", fmt.Sprintf("%.0f KRW", *info.LimitPrice))
	}
	if info.State != "" {
		e.field("상태", string(info.State))
	}
	if len(info.RawOrder) > 0 {
		e.describe(fmt.Sprintf("```json\n%s\n```", info.RawOrder))
	}
	return payload{Embeds: []embed{e}}
}

func errorPayload(err error, at time.Time) payload {
	e := stamped(ColorError, at)
	e.Title = "에러 발생"
	e.describe(fmt.Sprintf("```%v```", err))
	return payload{Embeds: []embed{e}}
}

// infoPayload는 한도 관련 안내를 경고 색으로 표시합니다
func infoPayload(msg string, at time.Time) payload {
	color := ColorInfo
	if strings.Contains(msg, "한도") {
		color = ColorWarning
	}
	e := stamped(color, at)
	e.describe(msg)
	return payload{Embeds: []embed{e}}
}

func stamped(color int, at time.Time) embed {
	return embed{
		Color:     color,
		Footer:    &embedFooter{Text: footerText},
		Timestamp: at.Format(time.RFC3339),
	}
}

func (e *embed) describe(s string) {
	e.Description = truncate(s, maxDescriptionLen)
}

func (e *embed) field(name, value string) {
	e.Fields = append(e.Fields, embedField{Name: name, Value: truncate(value, maxFieldValueLen), Inline: true})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
