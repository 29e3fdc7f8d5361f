package exchange

import (
	"context"

	"github.com/assist-by/shark/internal/domain"
)

// Exchange는 거래소와의 상호작용을 위한 인터페이스입니다.
type Exchange interface {
	// HasCredentials는 인증이 필요한 요청을 보낼 수 있는지 반환합니다
	HasCredentials() bool

	// 시장 데이터 조회
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	GetTickers(ctx context.Context, markets []string) ([]domain.Ticker, error)
	GetOHLCV(ctx context.Context, ticker string, interval domain.TimeInterval, count int) (domain.CandleList, error)
	GetMarkets(ctx context.Context) ([]domain.MarketInfo, error)

	// 계정 데이터 조회
	GetBalances(ctx context.Context) (domain.Balances, error)

	// 거래 기능
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string) (*domain.OrderResponse, error)
}
