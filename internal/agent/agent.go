// Package agent는 매매 판단을 내리는 의사결정 에이전트의 계약을 정의합니다
package agent

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/assist-by/shark/internal/trading"
)

// ErrMaxTurns는 에이전트가 최대 대화 횟수 안에 답을 끝내지 못했을 때 반환됩니다
var ErrMaxTurns = errors.New("에이전트 최대 대화 횟수 초과")

// Toolbox는 에이전트가 호출할 수 있는 도구 모음입니다.
// *trading.Dispatcher가 이 인터페이스를 만족합니다.
type Toolbox interface {
	Specs() []trading.ToolSpec
	Call(ctx context.Context, name string, args any) trading.Result
}

// ToolCall은 에이전트가 실행한 도구 호출 한 건입니다
type ToolCall struct {
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input"`
	Result trading.Result  `json:"result"`
}

// Decision은 에이전트 한 번 실행의 결과입니다
type Decision struct {
	Text      string     `json:"text"`
	ToolCalls []ToolCall `json:"tool_calls"`
	Turns     int        `json:"turns"`
}

// DecisionAgent는 프롬프트를 받아 필요하면 도구를 호출하고 최종 답변을 반환합니다
type DecisionAgent interface {
	HasCredentials() bool
	Decide(ctx context.Context, prompt string, tools Toolbox) (*Decision, error)
}
