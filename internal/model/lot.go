package model

// LotStatus is the canonical occupancy tier of a parking lot.
type LotStatus string

const (
	StatusOpen    LotStatus = "OPEN"
	StatusLimited LotStatus = "LIMITED"
	StatusFull    LotStatus = "FULL"
)

// ValidStatus reports whether s is one of the canonical statuses.
func ValidStatus(s LotStatus) bool {
	switch s {
	case StatusOpen, StatusLimited, StatusFull:
		return true
	}
	return false
}

// FullByMaxLen matches the size of the full_by column.
const FullByMaxLen = 32

// Lot is the authoritative record of a parking lot.
type Lot struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	Occupancy   int       `gorm:"not null;default:0" json:"occupancy"`
	Status      LotStatus `gorm:"size:16;not null;default:OPEN" json:"status"`
	WalkTime    int       `gorm:"default:0" json:"walk_time"`
	FullBy      *string   `gorm:"size:32" json:"full_by"`
	LastUpdated int64     `gorm:"default:0" json:"last_updated"` // epoch millis
}
