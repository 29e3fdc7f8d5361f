package trading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// 도구 이름
const (
	ToolGetAvailableCoins = "get_available_coins"
	ToolGetCoinPriceInfo  = "get_coin_price_info"
	ToolBuyCoin           = "buy_coin"
	ToolSellCoin          = "sell_coin"
	ToolCheckOrderStatus  = "check_order_status"
	ToolCancelOrder       = "cancel_order"
)

// ToolSpec은 에이전트에 노출되는 도구 정의입니다
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema (type: object)
}

// Properties는 스키마의 properties를 반환합니다
func (s ToolSpec) Properties() map[string]any {
	props, _ := s.Parameters["properties"].(map[string]any)
	return props
}

// Required는 필수 인자 목록을 반환합니다
func (s ToolSpec) Required() []string {
	req, _ := s.Parameters["required"].([]string)
	return req
}

var tickerProperty = map[string]any{
	"type":        "string",
	"description": "코인 티커 (예: 'BTC', 'ETH', 'XRP' 등)",
}

var priceTypeProperty = map[string]any{
	"type":        "string",
	"enum":        []string{"market", "limit"},
	"description": "주문 유형 (market: 시장가, limit: 지정가)",
}

var limitPriceProperty = map[string]any{
	"type":        "number",
	"description": "지정가 주문 시 1개당 가격 (KRW)",
}

var toolSpecs = []ToolSpec{
	{
		Name:        ToolGetAvailableCoins,
		Description: "거래 가능한 코인 목록을 반환합니다. 매수할 코인을 탐색할 때 사용하세요. 매도하려는 경우 action_type을 'sell'로 지정하면 보유 중인 코인만 볼 수 있습니다.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action_type": map[string]any{
					"type":        "string",
					"enum":        []string{"buy", "sell"},
					"description": "거래 의도 (buy: 매수용 코인 목록, sell: 매도용 보유 코인 목록)",
				},
			},
		},
	},
	{
		Name:        ToolGetCoinPriceInfo,
		Description: "특정 코인의 현재 가격, 보유량, 최근 일봉 정보를 조회합니다.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"ticker": tickerProperty},
			"required":   []string{"ticker"},
		},
	},
	{
		Name:        ToolBuyCoin,
		Description: "지정된 코인을 매수합니다. 시장가 또는 지정가 주문을 지원합니다. 보유 KRW의 99% 이상을 요청하면 수수료를 고려해 잔고의 99.95%로 주문합니다.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"ticker":     tickerProperty,
				"price_type": priceTypeProperty,
				"amount": map[string]any{
					"type":        "number",
					"description": "매수할 금액 (KRW)",
				},
				"limit_price": limitPriceProperty,
			},
			"required": []string{"ticker", "price_type", "amount"},
		},
	},
	{
		Name:        ToolSellCoin,
		Description: "보유한 코인을 매도합니다. 시장가 또는 지정가 주문을 지원합니다.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"ticker":     tickerProperty,
				"price_type": priceTypeProperty,
				"amount": map[string]any{
					"type":        []string{"string", "number"},
					"description": "매도할 수량 (코인 단위) 또는 'all'(전량 매도)",
				},
				"limit_price": limitPriceProperty,
			},
			"required": []string{"ticker", "price_type", "amount"},
		},
	},
	{
		Name:        ToolCheckOrderStatus,
		Description: "주문 상태를 확인합니다. 매수 또는 매도 주문 후 체결 상태를 확인할 때 사용합니다.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "string",
					"description": "조회할 주문 ID (uuid)",
				},
			},
			"required": []string{"order_id"},
		},
	},
	{
		Name:        ToolCancelOrder,
		Description: "체결 대기 중인 주문을 취소합니다.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order_id": map[string]any{
					"type":        "string",
					"description": "취소할 주문 ID (uuid)",
				},
			},
			"required": []string{"order_id"},
		},
	},
}

// Specs는 모든 도구 정의를 반환합니다
func Specs() []ToolSpec {
	out := make([]ToolSpec, len(toolSpecs))
	copy(out, toolSpecs)
	return out
}

func compileSchemas(specs []ToolSpec) (map[string]*jsonschema.Schema, error) {
	compiled := make(map[string]*jsonschema.Schema, len(specs))
	for _, spec := range specs {
		raw, err := json.Marshal(spec.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%s 스키마 직렬화 실패: %w", spec.Name, err)
		}
		url := spec.Name + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
			return nil, fmt.Errorf("%s 스키마 등록 실패: %w", spec.Name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("%s 스키마 컴파일 실패: %w", spec.Name, err)
		}
		compiled[spec.Name] = schema
	}
	return compiled, nil
}
