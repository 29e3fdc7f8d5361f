package trading

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/order"
)

// positiveFinite는 NaN과 무한대를 제외한 양수인지 확인합니다
func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func parsePriceType(s string) (domain.PriceType, error) {
	switch pt := domain.PriceType(strings.ToLower(strings.TrimSpace(s))); pt {
	case domain.PriceMarket, domain.PriceLimit:
		return pt, nil
	default:
		return "", invalid("price_type", "지원하지 않는 주문 유형: %s. 'market' 또는 'limit'만 사용할 수 있습니다.", s)
	}
}

func isSellAll(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "전체", "전량":
		return true
	}
	return false
}

// BuyCoin은 시장가 또는 지정가로 코인을 매수합니다
func (d *Dispatcher) BuyCoin(ctx context.Context, raw any) Result {
	var args buyArgs
	if err := d.bind(ToolBuyCoin, raw, &args); err != nil {
		return fail(err)
	}

	ticker := domain.NormalizeTicker(args.Ticker)
	if ticker == "" {
		return fail(invalid("ticker", "티커(ticker)가 지정되지 않았습니다."))
	}
	priceType, err := parsePriceType(args.PriceType)
	if err != nil {
		return fail(err)
	}
	if !positiveFinite(args.Amount) {
		return fail(invalid("amount", "유효하지 않은 매수 금액: %v", args.Amount))
	}
	if priceType == domain.PriceLimit && !positiveFinite(args.LimitPrice) {
		return fail(invalid("limit_price", "지정가 주문에는 유효한 'limit_price'가 필요합니다."))
	}

	intent := TradeIntent{
		Action:     domain.ActionBuy,
		Ticker:     ticker,
		PriceType:  priceType,
		Amount:     args.Amount,
		AmountText: decimal.NewFromFloat(args.Amount).String(),
	}
	if priceType == domain.PriceLimit {
		lp := args.LimitPrice
		intent.LimitPrice = &lp
	}

	if d.hook != nil {
		if err := d.hook.BeforeTrade(ctx, intent); err != nil {
			return fail(err)
		}
	}

	balances, err := d.balances(ctx)
	if err != nil {
		return fail(&ExecutionError{Phase: "KRW 잔고 조회", Err: err})
	}
	krw := decimal.NewFromFloat(balances.Amount(domain.QuoteCurrency))

	size, err := d.sizing.SizeBuy(decimal.NewFromFloat(args.Amount), krw)
	if err != nil {
		return fail(err)
	}

	var placed *domain.Order
	if priceType == domain.PriceMarket {
		placed, err = d.executor.BuyMarket(ctx, ticker, size.Notional)
	} else {
		limitPrice := decimal.NewFromFloat(args.LimitPrice)
		volume, verr := order.LimitVolume(size.Notional, limitPrice)
		if verr != nil {
			return fail(verr)
		}
		placed, err = d.executor.BuyLimit(ctx, ticker, limitPrice, volume)
	}
	if err != nil {
		return fail(&ExecutionError{Phase: priceType.Label() + " 매수", Err: err})
	}

	msg := fmt.Sprintf("%s %s 매수 주문이 접수되었습니다. 주문 ID: %s", ticker, priceType.Label(), placed.ID)
	if size.Adjusted {
		msg += fmt.Sprintf(" (요청 금액이 보유 KRW의 %s%% 이상이어서 수수료를 고려해 주문 금액을 %s원으로 조정했습니다.)",
			d.sizing.FullBalanceThreshold.Shift(2).String(), size.Notional.StringFixed(0))
	}

	d.log.WithFields(logrus.Fields{
		"ticker":   ticker,
		"order_id": placed.ID,
		"notional": size.Notional.String(),
		"adjusted": size.Adjusted,
	}).Info("매수 주문 접수")

	if d.hook != nil {
		d.hook.AfterTrade(ctx, intent, placed)
	}

	return Result{Success: true, Message: msg, Ticker: ticker, OrderID: placed.ID, Order: placed}
}

// SellCoin은 보유 코인을 시장가 또는 지정가로 매도합니다
func (d *Dispatcher) SellCoin(ctx context.Context, raw any) Result {
	var args sellArgs
	if err := d.bind(ToolSellCoin, raw, &args); err != nil {
		return fail(err)
	}

	ticker := domain.NormalizeTicker(args.Ticker)
	if ticker == "" {
		return fail(invalid("ticker", "티커(ticker)가 지정되지 않았습니다."))
	}
	priceType, err := parsePriceType(args.PriceType)
	if err != nil {
		return fail(err)
	}
	if priceType == domain.PriceLimit && !positiveFinite(args.LimitPrice) {
		return fail(invalid("limit_price", "지정가 주문에는 유효한 'limit_price'가 필요합니다."))
	}

	amountText := strings.TrimSpace(args.Amount)
	sellAll := isSellAll(amountText)
	var requested decimal.Decimal
	if !sellAll {
		requested, err = decimal.NewFromString(amountText)
		if err != nil || !requested.IsPositive() {
			return fail(invalid("amount", "유효하지 않은 매도 수량: %q", amountText))
		}
	}

	intent := TradeIntent{
		Action:     domain.ActionSell,
		Ticker:     ticker,
		PriceType:  priceType,
		Amount:     requested.InexactFloat64(),
		AmountText: amountText,
	}
	if priceType == domain.PriceLimit {
		lp := args.LimitPrice
		intent.LimitPrice = &lp
	}

	if d.hook != nil {
		if err := d.hook.BeforeTrade(ctx, intent); err != nil {
			return fail(err)
		}
	}

	balances, err := d.balances(ctx)
	if err != nil {
		return fail(&ExecutionError{Phase: "보유량 조회", Err: err})
	}

	coin := domain.CoinOf(ticker)
	held := decimal.NewFromFloat(balances.Amount(coin))
	if !held.IsPositive() {
		return fail(&BalanceError{Currency: coin, Held: held.String()})
	}

	volume := requested
	if sellAll {
		volume = held
	} else if requested.GreaterThan(held) {
		return fail(&BalanceError{Currency: coin, Held: held.String(), Requested: requested.String()})
	}

	var placed *domain.Order
	if priceType == domain.PriceMarket {
		placed, err = d.executor.SellMarket(ctx, ticker, volume)
	} else {
		placed, err = d.executor.SellLimit(ctx, ticker, decimal.NewFromFloat(args.LimitPrice), volume)
	}
	if err != nil {
		return fail(&ExecutionError{Phase: priceType.Label() + " 매도", Err: err})
	}

	d.log.WithFields(logrus.Fields{
		"ticker":   ticker,
		"order_id": placed.ID,
		"volume":   volume.String(),
	}).Info("매도 주문 접수")

	if d.hook != nil {
		d.hook.AfterTrade(ctx, intent, placed)
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("%s %s 매도 주문이 접수되었습니다. 주문 ID: %s", ticker, priceType.Label(), placed.ID),
		Ticker:  ticker,
		OrderID: placed.ID,
		Order:   placed,
	}
}
