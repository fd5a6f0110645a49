package model

import "time"

// Worker represents a single workforce member.
type Worker struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	FirstName string    `json:"firstName" gorm:"size:128;not null"`
	LastName  string    `json:"lastName" gorm:"size:128;not null"`
	StartDate time.Time `json:"startDate" gorm:"not null"`
	BrigadeID *int64    `json:"brigadeId"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}
