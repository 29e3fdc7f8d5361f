package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/assist-by/shark/internal/domain"
)

// GetBalances는 보유 자산 목록을 조회합니다
func (c *Client) GetBalances(ctx context.Context) (domain.Balances, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/accounts", nil, true)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Currency     string  `json:"currency"`
		Balance      float64 `json:"balance,string"`
		Locked       float64 `json:"locked,string"`
		AvgBuyPrice  float64 `json:"avg_buy_price,string"`
		UnitCurrency string  `json:"unit_currency"`
	}
	if err := json.Unmarshal(resp, &raw); err != nil {
		return nil, fmt.Errorf("잔고 데이터 파싱 실패: %w", err)
	}

	balances := make(domain.Balances, len(raw))
	for i, b := range raw {
		balances[i] = domain.Balance{
			Currency:     b.Currency,
			Balance:      b.Balance,
			Locked:       b.Locked,
			AvgBuyPrice:  b.AvgBuyPrice,
			UnitCurrency: b.UnitCurrency,
		}
	}
	return balances, nil
}

// PlaceOrder는 주문을 생성합니다
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error) {
	params := url.Values{}
	params.Set("market", req.Ticker)
	params.Set("side", string(req.Side))
	params.Set("ord_type", string(req.Type))

	switch req.Type {
	case domain.OrderTypePrice:
		params.Set("price", req.Notional.String())
	case domain.OrderTypeMarket:
		params.Set("volume", req.Volume.String())
	case domain.OrderTypeLimit:
		params.Set("price", req.Price.String())
		params.Set("volume", req.Volume.String())
	default:
		return nil, fmt.Errorf("지원하지 않는 주문 유형: %s", req.Type)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/orders", params, true)
	if err != nil {
		return nil, err
	}
	return decodeOrder(resp)
}

// GetOrder는 주문 ID로 주문 상태를 조회합니다
func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error) {
	params := url.Values{}
	params.Set("uuid", orderID)

	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/order", params, true)
	if err != nil {
		return nil, err
	}
	return decodeOrder(resp)
}

// CancelOrder는 대기 중인 주문을 취소합니다
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error) {
	params := url.Values{}
	params.Set("uuid", orderID)

	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/order", params, true)
	if err != nil {
		return nil, err
	}
	return decodeOrder(resp)
}

func decodeOrder(body []byte) (*domain.OrderResponse, error) {
	var order domain.OrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("주문 응답 파싱 실패: %w", err)
	}
	order.Raw = append(json.RawMessage(nil), body...)
	return &order, nil
}
