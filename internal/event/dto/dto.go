package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type EventFilters struct {
	MerchantID    string
	ProductID     string
	LocationID    string
	EventType     model.EventType
	ReferenceType string
	ReferenceID   string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}

// EventTypeStat is one row of GetStats: per-type count and net quantity change.
type EventTypeStat struct {
	EventType model.EventType `db:"event_type" json:"event_type"`
	Count     int64           `db:"count" json:"count"`
	NetChange int64           `db:"net_change" json:"net_change"`
}

type ProductEventSummary struct {
	ProductID      string                 `json:"product_id"`
	CurrentBalance int64                  `json:"current_balance"`
	RecentEvents   []model.InventoryEvent `json:"recent_events"`
	Totals         []EventTypeStat        `json:"totals"`
}
