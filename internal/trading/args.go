package trading

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

type coinsArgs struct {
	ActionType string `json:"action_type"`
}

type priceArgs struct {
	Ticker string `json:"ticker"`
}

type buyArgs struct {
	Ticker     string  `json:"ticker"`
	PriceType  string  `json:"price_type"`
	Amount     float64 `json:"amount"`
	LimitPrice float64 `json:"limit_price"`
}

type sellArgs struct {
	Ticker     string  `json:"ticker"`
	PriceType  string  `json:"price_type"`
	Amount     string  `json:"amount"`
	LimitPrice float64 `json:"limit_price"`
}

type orderArgs struct {
	OrderID string `json:"order_id"`
}

// numericFields는 LLM이 "3000"처럼 문자열로 보내기도 하는 숫자 인자입니다
var numericFields = []string{"amount", "limit_price"}

// toArgMap은 map, JSON 문자열, JSON 바이트 어느 형태든 인자 맵으로 바꿉니다
func toArgMap(raw any) (map[string]any, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, invalid("arguments", "인자를 해석할 수 없습니다: %v", err)
		}
		data = b
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, invalid("arguments", "인자가 올바른 JSON 형식이 아닙니다")
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, invalid("arguments", "인자는 JSON 객체여야 합니다")
	}
	args, _ := parsed.Value().(map[string]any)
	if args == nil {
		args = map[string]any{}
	}

	for _, field := range numericFields {
		switch v := args[field].(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, invalid(field, "유한한 숫자가 아닙니다: %q", v)
			}
			args[field] = f
		case float64:
			// 1e400 같은 값은 gjson이 무한대로 읽습니다
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, invalid(field, "유한한 숫자가 아닙니다: %v", v)
			}
		}
	}
	return args, nil
}

// bind는 인자를 스키마로 검증한 뒤 요청 구조체로 디코딩합니다
func (d *Dispatcher) bind(tool string, raw any, out any) error {
	args, err := toArgMap(raw)
	if err != nil {
		return err
	}

	if schema, ok := d.schemas[tool]; ok {
		if err := schema.Validate(args); err != nil {
			return invalid(tool, "인자 형식이 올바르지 않습니다: %v", err)
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return invalid(tool, "인자 디코더 생성 실패: %v", err)
	}
	if err := dec.Decode(args); err != nil {
		return invalid(tool, "인자를 해석할 수 없습니다: %v", err)
	}
	return nil
}
