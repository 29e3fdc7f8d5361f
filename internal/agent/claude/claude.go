// Package claude는 Anthropic Messages API의 tool use로 DecisionAgent를 구현합니다
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/agent"
	"github.com/assist-by/shark/internal/logger"
	"github.com/assist-by/shark/internal/trading"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 2048
	defaultMaxTurns  = 8
)

// SystemPrompt는 자동매매 에이전트의 기본 지시문입니다
const SystemPrompt = `당신은 '샤크5'라는 암호화폐 트레이딩 AI입니다.
주어진 포트폴리오와 시장 정보를 바탕으로 매수, 매도, 관망 중 하나를 결정하고 필요하면 도구로 주문을 실행하세요.

지켜야 할 규칙:
1. 매도하기 전에 get_available_coins 도구에 action_type 'sell'을 전달해 실제 보유 중인 코인인지 확인하세요.
2. 매수/매도 주문 전에 get_coin_price_info로 현재 가격과 보유량을 확인하세요.
3. 프롬프트에 적힌 1회 최대 투자 금액과 일일 거래 한도를 넘는 주문은 하지 마세요.
4. 위험 성향에 맞지 않는 코인은 매수하지 마세요.
5. 도구가 실패를 반환하면 같은 주문을 반복하지 말고 이유를 설명하세요.
6. 마지막 답변은 결정과 근거를 간결하게 정리하세요.`

// Agent는 Claude 모델을 사용하는 의사결정 에이전트입니다
type Agent struct {
	client    anthropic.Client
	apiKey    string
	model     string
	maxTokens int64
	maxTurns  int
	system    string
	reqOpts   []option.RequestOption
	log       *logrus.Entry
}

// Option은 Agent 생성 옵션입니다
type Option func(*Agent)

// WithModel은 사용할 모델을 지정합니다
func WithModel(model string) Option {
	return func(a *Agent) {
		if model != "" {
			a.model = model
		}
	}
}

// WithMaxTokens는 응답 한 번의 최대 토큰 수를 지정합니다
func WithMaxTokens(n int64) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithMaxTurns는 도구 호출을 포함한 최대 대화 횟수를 지정합니다
func WithMaxTurns(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// WithSystemPrompt는 시스템 지시문을 바꿉니다
func WithSystemPrompt(s string) Option {
	return func(a *Agent) {
		a.system = s
	}
}

// WithBaseURL은 API 주소를 바꿉니다
func WithBaseURL(url string) Option {
	return func(a *Agent) {
		a.reqOpts = append(a.reqOpts, option.WithBaseURL(url))
	}
}

// WithRequestOptions는 SDK 요청 옵션을 추가합니다
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(a *Agent) {
		a.reqOpts = append(a.reqOpts, opts...)
	}
}

// New는 새로운 Claude 에이전트를 생성합니다
func New(apiKey string, opts ...Option) *Agent {
	a := &Agent{
		apiKey:    apiKey,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		maxTurns:  defaultMaxTurns,
		system:    SystemPrompt,
		log:       logger.Component("agent"),
	}
	for _, opt := range opts {
		opt(a)
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, a.reqOpts...)
	a.client = anthropic.NewClient(reqOpts...)
	return a
}

// HasCredentials는 API 키가 설정되어 있는지 반환합니다
func (a *Agent) HasCredentials() bool {
	return strings.TrimSpace(a.apiKey) != ""
}

// Decide는 도구 호출이 끝날 때까지 대화를 이어가고 최종 답변을 반환합니다
func (a *Agent) Decide(ctx context.Context, prompt string, box agent.Toolbox) (*agent.Decision, error) {
	tools := toolParams(box.Specs())
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	dec := &agent.Decision{}
	var text []string

	for turn := 1; turn <= a.maxTurns; turn++ {
		dec.Turns = turn

		msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: a.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: a.system}},
			Messages:  messages,
			Tools:     tools,
		})
		if err != nil {
			dec.Text = strings.Join(text, "\n")
			return dec, fmt.Errorf("에이전트 호출 실패 (turn %d): %w", turn, err)
		}
		messages = append(messages, msg.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				if s := strings.TrimSpace(b.Text); s != "" {
					text = append(text, s)
				}
			case anthropic.ToolUseBlock:
				res := box.Call(ctx, b.Name, b.Input)
				dec.ToolCalls = append(dec.ToolCalls, agent.ToolCall{
					Name:   b.Name,
					Input:  b.Input,
					Result: res,
				})

				a.log.WithFields(logrus.Fields{
					"tool":    b.Name,
					"turn":    turn,
					"success": res.Success,
				}).Info("도구 실행")

				payload, err := json.Marshal(res)
				if err != nil {
					payload = []byte(fmt.Sprintf(`{"success":false,"message":%q}`, err.Error()))
				}
				results = append(results, anthropic.NewToolResultBlock(b.ID, string(payload), !res.Success))
			}
		}

		if msg.StopReason != anthropic.StopReasonToolUse || len(results) == 0 {
			dec.Text = strings.Join(text, "\n")
			return dec, nil
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	dec.Text = strings.Join(text, "\n")
	return dec, agent.ErrMaxTurns
}

// toolParams는 도구 정의를 API 형식으로 변환합니다
func toolParams(specs []trading.ToolSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: spec.Properties(),
					Required:   spec.Required(),
				},
			},
		})
	}
	return tools
}
