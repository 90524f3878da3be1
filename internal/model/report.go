package model

// Report is a user-submitted status change for a lot.
type Report struct {
	ID             int64     `gorm:"primaryKey"`
	LotID          int64     `gorm:"index;not null"`
	UserID         int64     `gorm:"index;not null"`
	ReportedStatus LotStatus `gorm:"size:16;not null"`
	Note           string
	CreatedAt      int64 `gorm:"autoCreateTime:milli;index"`

	// Associations
	Lot  Lot  `gorm:"constraint:OnDelete:CASCADE"`
	User User `gorm:"constraint:OnDelete:CASCADE"`
}
