package model

// User is a reporter who earns points for submitting lot updates.
type User struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Points    int    `gorm:"not null;default:0" json:"points"`
	Reports   int    `gorm:"not null;default:0" json:"reports"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"-"`
}
