// Package store는 거래 기록 저장소 인터페이스를 정의합니다
package store

import (
	"context"
	"time"

	"github.com/assist-by/shark/internal/domain"
)

// TradeStore는 성공한 거래 기록을 영구 보관합니다
type TradeStore interface {
	// SaveTrade는 거래 한 건을 저장합니다
	SaveTrade(ctx context.Context, rec domain.TradeRecord) error
	// ListTrades는 since 이후 거래를 시간순으로 반환합니다. limit이 0 이하이면 전부 반환합니다.
	ListTrades(ctx context.Context, since time.Time, limit int) ([]domain.TradeRecord, error)
	Close() error
}

// Nop은 아무것도 저장하지 않는 저장소입니다
type Nop struct{}

func (Nop) SaveTrade(context.Context, domain.TradeRecord) error { return nil }

func (Nop) ListTrades(context.Context, time.Time, int) ([]domain.TradeRecord, error) {
	return nil, nil
}

func (Nop) Close() error { return nil }
