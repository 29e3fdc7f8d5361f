package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assist-by/shark/internal/domain"
)

// volumePrecision은 업비트 주문 수량의 최대 소수점 자릿수입니다
const volumePrecision = 8

// Sizing은 매수 금액 계산을 위한 설정을 정의합니다
type Sizing struct {
	FullBalanceThreshold decimal.Decimal // 이 비율 이상이면 전액 매수로 간주
	FeeReserveRate       decimal.Decimal // 전액 매수 시 잔고에 곱할 비율 (수수료 여유분)
	MinOrderKRW          decimal.Decimal // 최소 주문 금액
}

// DefaultSizing은 0.99 / 0.9995 / 5000원 설정을 반환합니다
func DefaultSizing() Sizing {
	return Sizing{
		FullBalanceThreshold: decimal.RequireFromString("0.99"),
		FeeReserveRate:       decimal.RequireFromString("0.9995"),
		MinOrderKRW:          decimal.NewFromInt(5000),
	}
}

// BuySize는 매수 금액 계산 결과입니다
type BuySize struct {
	Requested decimal.Decimal // 요청 금액
	Notional  decimal.Decimal // 실제 주문 금액
	Adjusted  bool            // 전액 매수로 보정되었는지 여부
}

// SizeBuy는 요청 금액과 KRW 잔고로 주문 금액을 계산합니다.
// 요청 금액이 잔고의 FullBalanceThreshold 이상이면 잔고 × FeeReserveRate로 보정합니다.
func (s Sizing) SizeBuy(amount, krwBalance decimal.Decimal) (BuySize, error) {
	if !amount.IsPositive() {
		return BuySize{}, fmt.Errorf("%w: 유효하지 않은 매수 금액: %s", domain.ErrValidation, amount)
	}

	size := BuySize{Requested: amount, Notional: amount}
	if amount.GreaterThanOrEqual(krwBalance.Mul(s.FullBalanceThreshold)) {
		size.Notional = krwBalance.Mul(s.FeeReserveRate)
		size.Adjusted = true
	}

	if !size.Notional.IsPositive() || size.Notional.GreaterThan(krwBalance) {
		return size, fmt.Errorf("%w: %w (보유 KRW: %s)", domain.ErrInsufficientBalance, ErrNothingToSpend, krwBalance)
	}

	if size.Notional.LessThan(s.MinOrderKRW) {
		kind := domain.ErrValidation
		if size.Adjusted {
			kind = domain.ErrInsufficientBalance
		}
		return size, fmt.Errorf("%w: %w (주문 %s원, 최소 %s원)", kind, ErrBelowMinimum, size.Notional.StringFixed(0), s.MinOrderKRW)
	}

	return size, nil
}

// LimitVolume은 지정가 주문 금액을 수량으로 바꿉니다
func LimitVolume(notional, price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidPrice)
	}
	volume := notional.Div(price).Truncate(volumePrecision)
	if !volume.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidVolume)
	}
	return volume, nil
}
