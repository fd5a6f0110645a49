package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a slice of strings as a JSON-encoded text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	}
	return fmt.Errorf("model: cannot scan %T into StringList", src)
}

// Brigade represents a named crew of workers.
type Brigade struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Members   StringList `json:"members" gorm:"type:text;not null"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null"`
}

// MemberCount is derived from Members rather than stored, so the two can
// never drift apart.
func (b Brigade) MemberCount() int {
	return len(b.Members)
}

// MarshalJSON includes the derived memberCount field in API responses.
func (b Brigade) MarshalJSON() ([]byte, error) {
	type alias Brigade
	if b.Members == nil {
		b.Members = StringList{}
	}
	return json.Marshal(struct {
		alias
		MemberCount int `json:"memberCount"`
	}{alias(b), b.MemberCount()})
}
