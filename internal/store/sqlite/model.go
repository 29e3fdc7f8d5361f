package sqlite

import "gorm.io/datatypes"

// TradeModel은 trade_records 테이블에 대응합니다
type TradeModel struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	Timestamp   int64          `gorm:"column:timestamp;index"` // unix millis
	Action      string         `gorm:"column:action"`
	Ticker      string         `gorm:"column:ticker;index"`
	Amount      string         `gorm:"column:amount"`
	PriceType   string         `gorm:"column:price_type"`
	LimitPrice  *float64       `gorm:"column:limit_price"`
	OrderID     string         `gorm:"column:order_id"`
	OrderJSON   datatypes.JSON `gorm:"column:order_json;type:TEXT"`
	CreatedUnix int64          `gorm:"column:created_at;autoCreateTime"`
}

func (TradeModel) TableName() string { return "trade_records" }
