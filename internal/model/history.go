package model

import "time"

// History is an append-only audit record of a machine status transition.
// PrevStatus is nil for a machine's first recorded transition.
type History struct {
	ID         int64          `json:"id" gorm:"primaryKey"`
	MachineID  int64          `json:"machineId" gorm:"index;not null"`
	PrevStatus *MachineStatus `json:"prevStatus" gorm:"size:16"`
	NewStatus  MachineStatus  `json:"newStatus" gorm:"size:16;not null"`
	UserID     int64          `json:"userId" gorm:"not null"`
	Timestamp  time.Time      `json:"timestamp" gorm:"index;not null"`
}
