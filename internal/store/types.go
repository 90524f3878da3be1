package store

import (
	"errors"

	"parkkean-backend/internal/model"
)

// ErrNotFound is returned when a lot or user does not exist.
var ErrNotFound = errors.New("record not found")

// ReportView is a report joined with the reporter's username.
type ReportView struct {
	ID             int64           `json:"id"`
	LotID          int64           `json:"lot_id"`
	ReportedStatus model.LotStatus `json:"reported_status"`
	Note           string          `json:"note"`
	CreatedAt      int64           `json:"created_at"`
	User           string          `gorm:"column:reporter" json:"user"`
}

// StoredLot is a lot as served to clients, with its most recent report.
type StoredLot struct {
	model.Lot
	LastReport *ReportView `json:"lastReport"`
}

// LotFields is a partial update of a lot. Nil fields are left untouched.
type LotFields struct {
	Capacity    *int
	Occupancy   *int
	Status      *model.LotStatus
	WalkTime    *int
	FullBy      *string
	LastUpdated *int64
}

// Empty reports whether f would write nothing.
func (f LotFields) Empty() bool {
	return f.Capacity == nil && f.Occupancy == nil && f.Status == nil &&
		f.WalkTime == nil && f.FullBy == nil && f.LastUpdated == nil
}

func (f LotFields) columns() map[string]any {
	cols := make(map[string]any, 6)
	if f.Capacity != nil {
		cols["capacity"] = *f.Capacity
	}
	if f.Occupancy != nil {
		cols["occupancy"] = *f.Occupancy
	}
	if f.Status != nil {
		cols["status"] = *f.Status
	}
	if f.WalkTime != nil {
		cols["walk_time"] = *f.WalkTime
	}
	if f.FullBy != nil {
		cols["full_by"] = *f.FullBy
	}
	if f.LastUpdated != nil {
		cols["last_updated"] = *f.LastUpdated
	}
	return cols
}

// NewReport is a user-submitted status report.
type NewReport struct {
	Username string
	LotID    int64
	Status   model.LotStatus
	Note     string
	At       int64 // epoch millis
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}
