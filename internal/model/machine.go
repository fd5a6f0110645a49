package model

import "time"

// MachineStatus is the operational state of a machine. Any status may follow
// any other; every change is recorded in History.
type MachineStatus string

const (
	StatusFree   MachineStatus = "free"
	StatusInUse  MachineStatus = "in_use"
	StatusRepair MachineStatus = "repair"
)

// Valid reports whether s is one of the known statuses.
func (s MachineStatus) Valid() bool {
	switch s {
	case StatusFree, StatusInUse, StatusRepair:
		return true
	}
	return false
}

// Machine represents a piece of construction equipment.
type Machine struct {
	ID           int64         `json:"id" gorm:"primaryKey"`
	Type         string        `json:"type" gorm:"size:128;not null"`
	Brand        string        `json:"brand" gorm:"size:128;not null"`
	Model        string        `json:"model" gorm:"size:128;not null"`
	SerialNumber string        `json:"serialNumber" gorm:"size:128;uniqueIndex;not null"`
	Status       MachineStatus `json:"status" gorm:"size:16;not null"`
	BrigadeID    *int64        `json:"brigadeId"`
	CreatedAt    time.Time     `json:"createdAt" gorm:"not null"`
}
