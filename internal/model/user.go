package model

// User is an operator account. Passwords are stored as plain text, carried
// over from the system this replaces; there is no authentication layer yet.
type User struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;size:128;not null"`
	Password string `json:"-" gorm:"size:256;not null"`
	IsAdmin  bool   `json:"isAdmin" gorm:"not null;default:false"`
}
