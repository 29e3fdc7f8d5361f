package autotrader

import "time"

// Status는 자동매매 루프의 상태입니다
type Status string

const (
	StatusIdle      Status = "Idle"
	StatusRunning   Status = "Running"
	StatusAnalyzing Status = "Analyzing"
	StatusDeciding  Status = "Deciding"
	StatusExecuting Status = "Executing"
	StatusWaiting   Status = "Waiting"
	StatusStopped   Status = "Stopped"
	StatusError     Status = "Error"
)

// RunState는 외부에 노출되는 실행 상태 스냅샷입니다
type RunState struct {
	IsRunning         bool      `json:"is_running"`
	Status            Status    `json:"status"`
	LastCheckTime     time.Time `json:"last_check_time"`
	NextCheckTime     time.Time `json:"next_check_time"`
	DailyTradingCount int       `json:"daily_trading_count"`
	LastTradingDate   string    `json:"last_trading_date"` // YYYY-MM-DD
	LastError         string    `json:"last_error,omitempty"`
	LastDecision      string    `json:"last_decision,omitempty"`
}

const dateLayout = "2006-01-02"
