package store

import (
	"context"
	"errors"

	"fleet-management-backend/internal/model"
)

// ErrNotFound is returned by update and delete operations when the target id
// does not exist. Lookups report a miss as a nil result, not an error.
var ErrNotFound = errors.New("not found")

// Store is the single authority over entity state. Implementations must make
// each operation atomic with respect to concurrent callers; in particular a
// status change and its history record must never be observable apart.
type Store interface {
	// Machines
	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, id int64) (*model.Machine, error)
	CreateMachine(ctx context.Context, m model.Machine) (*model.Machine, error)
	UpdateMachine(ctx context.Context, id int64, patch MachinePatch) (*model.Machine, error)
	DeleteMachine(ctx context.Context, id int64) error
	UpdateMachineStatus(ctx context.Context, id int64, status model.MachineStatus, userID int64) (*model.Machine, error)
	UpdateMachineBrigade(ctx context.Context, id int64, brigadeID *int64) (*model.Machine, error)

	// Brigades
	ListBrigades(ctx context.Context) ([]model.Brigade, error)
	GetBrigade(ctx context.Context, id int64) (*model.Brigade, error)
	CreateBrigade(ctx context.Context, b model.Brigade) (*model.Brigade, error)
	UpdateBrigade(ctx context.Context, id int64, patch BrigadePatch) (*model.Brigade, error)
	DeleteBrigade(ctx context.Context, id int64) error

	// Workers
	ListWorkers(ctx context.Context) ([]model.Worker, error)
	GetWorker(ctx context.Context, id int64) (*model.Worker, error)
	CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error)
	UpdateWorker(ctx context.Context, id int64, patch WorkerPatch) (*model.Worker, error)
	DeleteWorker(ctx context.Context, id int64) error

	// History
	ListMachineHistory(ctx context.Context, machineID int64) ([]model.History, error)
	AppendHistory(ctx context.Context, h model.History) (*model.History, error)

	// Users
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u model.User) (*model.User, error)

	// Push subscriptions
	SaveSubscription(ctx context.Context, sub model.PushSubscription, machineIDs []int64) error
	GetSubscriptionMachines(ctx context.Context, endpoint string) ([]int64, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForMachine(ctx context.Context, machineID int64) ([]model.PushSubscription, error)
}
