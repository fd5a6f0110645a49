package store

import (
	"encoding/json"
	"time"

	"fleet-management-backend/internal/model"
)

// NullableID distinguishes between an absent brigadeId, an explicit null
// (unassign), and a concrete id. A plain pointer cannot express all three.
type NullableID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON marks the field as set; a JSON null leaves Value nil.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// MachinePatch enumerates every updatable machine field. Nil fields are left
// untouched by the update.
type MachinePatch struct {
	Type         *string              `json:"type"`
	Brand        *string              `json:"brand"`
	Model        *string              `json:"model"`
	SerialNumber *string              `json:"serialNumber"`
	Status       *model.MachineStatus `json:"status" binding:"omitempty,oneof=free in_use repair"`
	BrigadeID    NullableID           `json:"brigadeId"`
}

// BrigadePatch enumerates every updatable brigade field. Member count is
// derived, so there is nothing to patch for it.
type BrigadePatch struct {
	Name    *string   `json:"name"`
	Members *[]string `json:"members"`
}

// WorkerPatch enumerates every updatable worker field.
type WorkerPatch struct {
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
	StartDate *time.Time `json:"startDate"`
	BrigadeID NullableID `json:"brigadeId"`
}

func (p MachinePatch) apply(m *model.Machine) {
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Brand != nil {
		m.Brand = *p.Brand
	}
	if p.Model != nil {
		m.Model = *p.Model
	}
	if p.SerialNumber != nil {
		m.SerialNumber = *p.SerialNumber
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.BrigadeID.Set {
		m.BrigadeID = p.BrigadeID.Value
	}
}

func (p BrigadePatch) apply(b *model.Brigade) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Members != nil {
		b.Members = model.StringList(*p.Members)
	}
}

func (p WorkerPatch) apply(w *model.Worker) {
	if p.FirstName != nil {
		w.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		w.LastName = *p.LastName
	}
	if p.StartDate != nil {
		w.StartDate = *p.StartDate
	}
	if p.BrigadeID.Set {
		w.BrigadeID = p.BrigadeID.Value
	}
}
