package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fleet-management-backend/internal/model"
)

// memSubscription pairs a push subscription with the machine ids it watches.
type memSubscription struct {
	sub      model.PushSubscription
	machines []int64
}

// MemStore is the in-memory Store implementation. All state lives in maps
// guarded by a single mutex, so id assignment and the status-change/history
// pairing are atomic. Ids are monotonic per entity type and never reused,
// even after deletion.
type MemStore struct {
	mu sync.Mutex

	machines map[int64]model.Machine
	brigades map[int64]model.Brigade
	workers  map[int64]model.Worker
	history  map[int64]model.History
	users    map[int64]model.User
	subs     map[string]memSubscription

	nextMachineID int64
	nextBrigadeID int64
	nextWorkerID  int64
	nextHistoryID int64
	nextUserID    int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		machines:      make(map[int64]model.Machine),
		brigades:      make(map[int64]model.Brigade),
		workers:       make(map[int64]model.Worker),
		history:       make(map[int64]model.History),
		users:         make(map[int64]model.User),
		subs:          make(map[string]memSubscription),
		nextMachineID: 1,
		nextBrigadeID: 1,
		nextWorkerID:  1,
		nextHistoryID: 1,
		nextUserID:    1,
	}
}

// --- Machines ---

func (s *MemStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	machines := make([]model.Machine, 0, len(s.machines))
	for _, m := range s.machines {
		machines = append(machines, m)
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].ID < machines[j].ID })
	return machines, nil
}

func (s *MemStore) GetMachine(ctx context.Context, id int64) (*model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemStore) CreateMachine(ctx context.Context, m model.Machine) (*model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextMachineID
	s.nextMachineID++
	m.CreatedAt = time.Now().UTC()
	s.machines[m.ID] = m
	return &m, nil
}

func (s *MemStore) UpdateMachine(ctx context.Context, id int64, patch MachinePatch) (*model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[id]
	if !ok {
		return nil, fmt.Errorf("machine %d: %w", id, ErrNotFound)
	}
	patch.apply(&m)
	s.machines[id] = m
	return &m, nil
}

func (s *MemStore) DeleteMachine(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.machines[id]; !ok {
		return fmt.Errorf("machine %d: %w", id, ErrNotFound)
	}
	delete(s.machines, id)
	return nil
}

// UpdateMachineStatus applies the new status and appends the matching history
// record under one mutex hold, so neither is ever visible without the other.
func (s *MemStore) UpdateMachineStatus(ctx context.Context, id int64, status model.MachineStatus, userID int64) (*model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[id]
	if !ok {
		return nil, fmt.Errorf("machine %d: %w", id, ErrNotFound)
	}

	prev := m.Status
	m.Status = status
	s.machines[id] = m

	s.appendHistoryLocked(model.History{
		MachineID:  id,
		PrevStatus: &prev,
		NewStatus:  status,
		UserID:     userID,
	})
	return &m, nil
}

func (s *MemStore) UpdateMachineBrigade(ctx context.Context, id int64, brigadeID *int64) (*model.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[id]
	if !ok {
		return nil, fmt.Errorf("machine %d: %w", id, ErrNotFound)
	}
	m.BrigadeID = brigadeID
	s.machines[id] = m
	return &m, nil
}

// --- Brigades ---

func (s *MemStore) ListBrigades(ctx context.Context) ([]model.Brigade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brigades := make([]model.Brigade, 0, len(s.brigades))
	for _, b := range s.brigades {
		brigades = append(brigades, b)
	}
	sort.Slice(brigades, func(i, j int) bool { return brigades[i].ID < brigades[j].ID })
	return brigades, nil
}

func (s *MemStore) GetBrigade(ctx context.Context, id int64) (*model.Brigade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.brigades[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *MemStore) CreateBrigade(ctx context.Context, b model.Brigade) (*model.Brigade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextBrigadeID
	s.nextBrigadeID++
	b.CreatedAt = time.Now().UTC()
	if b.Members == nil {
		b.Members = model.StringList{}
	}
	s.brigades[b.ID] = b
	return &b, nil
}

func (s *MemStore) UpdateBrigade(ctx context.Context, id int64, patch BrigadePatch) (*model.Brigade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.brigades[id]
	if !ok {
		return nil, fmt.Errorf("brigade %d: %w", id, ErrNotFound)
	}
	patch.apply(&b)
	s.brigades[id] = b
	return &b, nil
}

func (s *MemStore) DeleteBrigade(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brigades[id]; !ok {
		return fmt.Errorf("brigade %d: %w", id, ErrNotFound)
	}
	// Machines and workers referencing the brigade keep their brigadeId;
	// there are no cascade deletes.
	delete(s.brigades, id)
	return nil
}

// --- Workers ---

func (s *MemStore) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := make([]model.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}

func (s *MemStore) GetWorker(ctx context.Context, id int64) (*model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *MemStore) CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.ID = s.nextWorkerID
	s.nextWorkerID++
	w.CreatedAt = time.Now().UTC()
	s.workers[w.ID] = w
	return &w, nil
}

func (s *MemStore) UpdateWorker(ctx context.Context, id int64, patch WorkerPatch) (*model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[id]
	if !ok {
		return nil, fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	patch.apply(&w)
	s.workers[id] = w
	return &w, nil
}

func (s *MemStore) DeleteWorker(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workers[id]; !ok {
		return fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	delete(s.workers, id)
	return nil
}

// --- History ---

func (s *MemStore) ListMachineHistory(ctx context.Context, machineID int64) ([]model.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]model.History, 0)
	for _, h := range s.history {
		if h.MachineID == machineID {
			records = append(records, h)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

func (s *MemStore) AppendHistory(ctx context.Context, h model.History) (*model.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.appendHistoryLocked(h)
	return &stored, nil
}

func (s *MemStore) appendHistoryLocked(h model.History) model.History {
	h.ID = s.nextHistoryID
	s.nextHistoryID++
	h.Timestamp = time.Now().UTC()
	s.history[h.ID] = h
	return h
}

// --- Users ---

func (s *MemStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStore) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = u
	return &u, nil
}

// --- Push subscriptions ---

func (s *MemStore) SaveSubscription(ctx context.Context, sub model.PushSubscription, machineIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.subs[sub.Endpoint]; ok {
		sub.CreatedAt = existing.sub.CreatedAt
	} else {
		sub.CreatedAt = time.Now().UTC()
	}
	sub.Machines = nil
	machines := make([]int64, len(machineIDs))
	copy(machines, machineIDs)
	s.subs[sub.Endpoint] = memSubscription{sub: sub, machines: machines}
	return nil
}

func (s *MemStore) GetSubscriptionMachines(ctx context.Context, endpoint string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[endpoint]
	if !ok {
		return nil, fmt.Errorf("subscription %q: %w", endpoint, ErrNotFound)
	}
	machines := make([]int64, len(sub.machines))
	copy(machines, sub.machines)
	return machines, nil
}

// DeleteSubscription is idempotent: removing an unknown endpoint is not an
// error, since the client is only expressing "stop notifying me".
func (s *MemStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, endpoint)
	return nil
}

func (s *MemStore) SubscriptionsForMachine(ctx context.Context, machineID int64) ([]model.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []model.PushSubscription
	for _, entry := range s.subs {
		for _, id := range entry.machines {
			if id == machineID {
				subs = append(subs, entry.sub)
				break
			}
		}
	}
	return subs, nil
}
