// Package sqlite는 gorm과 sqlite로 거래 기록을 저장합니다
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assist-by/shark/internal/domain"
	"github.com/assist-by/shark/internal/store"
)

// Store는 sqlite 파일에 거래 기록을 저장합니다
type Store struct {
	db *gorm.DB
}

var _ store.TradeStore = (*Store)(nil)

// Open은 path의 sqlite 파일을 열고 테이블을 준비합니다
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("데이터베이스 경로가 비어 있습니다")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("데이터베이스 디렉터리 생성 실패: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 열기 실패: %w", err)
	}

	if err := db.AutoMigrate(&TradeModel{}); err != nil {
		return nil, fmt.Errorf("테이블 마이그레이션 실패: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

// SaveTrade는 거래 한 건을 저장합니다
func (s *Store) SaveTrade(ctx context.Context, rec domain.TradeRecord) error {
	m := TradeModel{
		Timestamp:  rec.Timestamp.UnixMilli(),
		Action:     string(rec.Action),
		Ticker:     rec.Ticker,
		Amount:     rec.Amount,
		PriceType:  string(rec.PriceType),
		LimitPrice: rec.LimitPrice,
		OrderID:    rec.OrderID,
	}
	if rec.Order != nil {
		raw, err := json.Marshal(rec.Order)
		if err != nil {
			return fmt.Errorf("주문 직렬화 실패: %w", err)
		}
		m.OrderJSON = datatypes.JSON(raw)
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

// ListTrades는 since 이후 거래를 시간순으로 반환합니다
func (s *Store) ListTrades(ctx context.Context, since time.Time, limit int) ([]domain.TradeRecord, error) {
	var rows []TradeModel
	q := s.db.WithContext(ctx).
		Where("timestamp >= ?", since.UnixMilli()).
		Order("timestamp ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.TradeRecord, 0, len(rows))
	for _, m := range rows {
		rec := domain.TradeRecord{
			Timestamp:  time.UnixMilli(m.Timestamp),
			Action:     domain.TradeAction(m.Action),
			Ticker:     m.Ticker,
			Amount:     m.Amount,
			PriceType:  domain.PriceType(m.PriceType),
			LimitPrice: m.LimitPrice,
			OrderID:    m.OrderID,
		}
		if len(m.OrderJSON) > 0 {
			var o domain.Order
			if err := json.Unmarshal(m.OrderJSON, &o); err != nil {
				return nil, fmt.Errorf("주문 %s 역직렬화 실패: %w", m.OrderID, err)
			}
			rec.Order = &o
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close는 데이터베이스 연결을 닫습니다
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
