package models

// OrderSequence is the last order number suffix issued for a day.
type OrderSequence struct {
	Day   string `gorm:"primaryKey;size:8"`
	Value int    `gorm:"not null"`
}
