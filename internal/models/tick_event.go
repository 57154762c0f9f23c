package models

import (
	"time"

	"gorm.io/gorm"
)

// TickEvent records one keepalive attempt
type TickEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Backend   string         `gorm:"not null;index" json:"backend"`
	Success   bool           `gorm:"not null" json:"success"`
	ErrorMsg  string         `json:"error_msg,omitempty"`
	LatencyMs int64          `gorm:"not null;default:0" json:"latency_ms"`
	PID       int            `gorm:"not null;index" json:"pid"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type BackendSummary struct {
	Backend     string  `json:"backend"`
	Ticks       int64   `json:"ticks"`
	Failures    int64   `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period        ReportPeriod     `json:"period"`
	Backends      []BackendSummary `json:"backends"`
	TotalTicks    int64            `json:"total_ticks"`
	TotalFailures int64            `json:"total_failures"`
	Sessions      int64            `json:"sessions"`
	ActiveSeconds int64            `json:"active_seconds"`
	GeneratedAt   time.Time        `json:"generated_at"`
}
