package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-management-backend/internal/model"
	"fleet-management-backend/internal/store"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func pushResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, store.NewMemStore(), &webpush.Options{})

	wp.Dispatch(Job{MachineID: 123, Status: model.StatusFree})

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job.MachineID)
		assert.Equal(t, model.StatusFree, job.Status)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchNeverBlocks(t *testing.T) {
	// No workers are started, so the channel fills up; excess jobs must be
	// dropped rather than stall the caller.
	wp := NewWorkerPool(1, store.NewMemStore(), &webpush.Options{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			wp.Dispatch(Job{MachineID: int64(i), Status: model.StatusFree})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

func TestWorkerPool_SendsNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewMemStore()
	machine, err := s.CreateMachine(ctx, model.Machine{Type: "Excavator", Brand: "CAT", Model: "320", SerialNumber: "SN1", Status: model.StatusInUse})
	require.NoError(t, err)
	require.NoError(t, s.SaveSubscription(ctx, model.PushSubscription{
		Endpoint: "https://push.example/1", P256DH: "key", Auth: "auth",
	}, []int64{machine.ID}))

	wp := NewWorkerPool(1, s, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://push.example/1", sub.Endpoint)
			assert.Equal(t, "Machine CAT 320 (SN1) is now free", string(payload))
			wg.Done()
			return pushResponse(http.StatusCreated), nil
		},
	}
	wp.Start(ctx)

	wp.Dispatch(Job{MachineID: machine.ID, Status: model.StatusFree})
	wg.Wait()
}

func TestWorkerPool_SkipsMachinesWithoutSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewMemStore()
	wp := NewWorkerPool(1, s, &webpush.Options{})

	var sent bool
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			sent = true
			return pushResponse(http.StatusCreated), nil
		},
	}
	wp.Start(ctx)

	wp.Dispatch(Job{MachineID: 55, Status: model.StatusFree})
	time.Sleep(100 * time.Millisecond)
	assert.False(t, sent)
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewMemStore()
	machine, err := s.CreateMachine(ctx, model.Machine{Type: "Crane", Brand: "Liebherr", Model: "LTM", SerialNumber: "C1", Status: model.StatusFree})
	require.NoError(t, err)
	require.NoError(t, s.SaveSubscription(ctx, model.PushSubscription{
		Endpoint: "https://push.example/expired", P256DH: "key", Auth: "auth",
	}, []int64{machine.ID}))

	wp := NewWorkerPool(1, s, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			wg.Done()
			return pushResponse(http.StatusGone), nil
		},
	}
	wp.Start(ctx)

	wp.Dispatch(Job{MachineID: machine.ID, Status: model.StatusRepair})
	wg.Wait()

	// the 410 response removes the subscription; poll briefly since the
	// delete happens after the sender returns
	assert.Eventually(t, func() bool {
		_, err := s.GetSubscriptionMachines(ctx, "https://push.example/expired")
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerPool_FallsBackToMachineID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := store.NewMemStore()
	// subscription exists, but the machine itself was deleted
	require.NoError(t, s.SaveSubscription(ctx, model.PushSubscription{
		Endpoint: "https://push.example/fallback", P256DH: "key", Auth: "auth",
	}, []int64{103}))

	wp := NewWorkerPool(1, s, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "Machine 103 is now in use", string(payload))
			wg.Done()
			return pushResponse(http.StatusCreated), nil
		},
	}
	wp.Start(ctx)

	wp.Dispatch(Job{MachineID: 103, Status: model.StatusInUse})
	wg.Wait()
}
