package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-management-backend/internal/model"
)

// GormStore implements Store on top of a GORM database. The status-change
// and history-append pairing runs in a single transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// --- Machines ---

func (s *GormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	machines := make([]model.Machine, 0)
	if err := s.db.WithContext(ctx).Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return machines, nil
}

func (s *GormStore) GetMachine(ctx context.Context, id int64) (*model.Machine, error) {
	var m model.Machine
	err := s.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get machine %d: %w", id, err)
	}
	return &m, nil
}

func (s *GormStore) CreateMachine(ctx context.Context, m model.Machine) (*model.Machine, error) {
	m.ID = 0
	m.CreatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}
	return &m, nil
}

func (s *GormStore) UpdateMachine(ctx context.Context, id int64, patch MachinePatch) (*model.Machine, error) {
	var m model.Machine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("machine %d: %w", id, ErrNotFound)
			}
			return err
		}
		patch.apply(&m)
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) DeleteMachine(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Machine{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete machine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("machine %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) UpdateMachineStatus(ctx context.Context, id int64, status model.MachineStatus, userID int64) (*model.Machine, error) {
	var m model.Machine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("machine %d: %w", id, ErrNotFound)
			}
			return err
		}

		prev := m.Status
		m.Status = status
		if err := tx.Save(&m).Error; err != nil {
			return err
		}

		record := model.History{
			MachineID:  id,
			PrevStatus: &prev,
			NewStatus:  status,
			UserID:     userID,
			Timestamp:  time.Now().UTC(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GormStore) UpdateMachineBrigade(ctx context.Context, id int64, brigadeID *int64) (*model.Machine, error) {
	var m model.Machine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("machine %d: %w", id, ErrNotFound)
			}
			return err
		}
		m.BrigadeID = brigadeID
		return tx.Save(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Brigades ---

func (s *GormStore) ListBrigades(ctx context.Context) ([]model.Brigade, error) {
	brigades := make([]model.Brigade, 0)
	if err := s.db.WithContext(ctx).Find(&brigades).Error; err != nil {
		return nil, fmt.Errorf("list brigades: %w", err)
	}
	return brigades, nil
}

func (s *GormStore) GetBrigade(ctx context.Context, id int64) (*model.Brigade, error) {
	var b model.Brigade
	err := s.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get brigade %d: %w", id, err)
	}
	return &b, nil
}

func (s *GormStore) CreateBrigade(ctx context.Context, b model.Brigade) (*model.Brigade, error) {
	b.ID = 0
	b.CreatedAt = time.Now().UTC()
	if b.Members == nil {
		b.Members = model.StringList{}
	}
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, fmt.Errorf("create brigade: %w", err)
	}
	return &b, nil
}

func (s *GormStore) UpdateBrigade(ctx context.Context, id int64, patch BrigadePatch) (*model.Brigade, error) {
	var b model.Brigade
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("brigade %d: %w", id, ErrNotFound)
			}
			return err
		}
		patch.apply(&b)
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *GormStore) DeleteBrigade(ctx context.Context, id int64) error {
	// No cascade: machines and workers keep their brigadeId.
	res := s.db.WithContext(ctx).Delete(&model.Brigade{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete brigade %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("brigade %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- Workers ---

func (s *GormStore) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	workers := make([]model.Worker, 0)
	if err := s.db.WithContext(ctx).Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return workers, nil
}

func (s *GormStore) GetWorker(ctx context.Context, id int64) (*model.Worker, error) {
	var w model.Worker
	err := s.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get worker %d: %w", id, err)
	}
	return &w, nil
}

func (s *GormStore) CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error) {
	w.ID = 0
	w.CreatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Create(&w).Error; err != nil {
		return nil, fmt.Errorf("create worker: %w", err)
	}
	return &w, nil
}

func (s *GormStore) UpdateWorker(ctx context.Context, id int64, patch WorkerPatch) (*model.Worker, error) {
	var w model.Worker
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&w, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("worker %d: %w", id, ErrNotFound)
			}
			return err
		}
		patch.apply(&w)
		return tx.Save(&w).Error
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *GormStore) DeleteWorker(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Worker{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete worker %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- History ---

func (s *GormStore) ListMachineHistory(ctx context.Context, machineID int64) ([]model.History, error) {
	records := make([]model.History, 0)
	err := s.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("timestamp DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list history for machine %d: %w", machineID, err)
	}
	return records, nil
}

func (s *GormStore) AppendHistory(ctx context.Context, h model.History) (*model.History, error) {
	h.ID = 0
	h.Timestamp = time.Now().UTC()
	if err := s.db.WithContext(ctx).Create(&h).Error; err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	return &h, nil
}

// --- Users ---

func (s *GormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	u.ID = 0
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// --- Push subscriptions ---

func (s *GormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription, machineIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		var machines []*model.Machine
		if len(machineIDs) > 0 {
			if err := tx.Find(&machines, machineIDs).Error; err != nil {
				return err
			}
		}

		return tx.Model(&sub).Association("Machines").Replace(&machines)
	})
}

func (s *GormStore) GetSubscriptionMachines(ctx context.Context, endpoint string) ([]int64, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Machines").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("subscription %q: %w", endpoint, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	machineIDs := make([]int64, len(sub.Machines))
	for i, machine := range sub.Machines {
		machineIDs[i] = machine.ID
	}
	return machineIDs, nil
}

func (s *GormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Select(clause.Associations).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *GormStore) SubscriptionsForMachine(ctx context.Context, machineID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_machine_mapping smm ON smm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("smm.machine_id = ?", machineID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscriptions for machine %d: %w", machineID, err)
	}
	return subs, nil
}
