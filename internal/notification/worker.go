package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"fleet-management-backend/internal/model"
	"fleet-management-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job describes one status change to announce.
type Job struct {
	MachineID int64
	Status    model.MachineStatus
}

// WorkerPool fans status-change notifications out to subscribed browsers.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*4),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case job := <-wp.jobs:
			wp.notifyMachineSubscribers(ctx, job)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job without blocking the caller. When the queue is full
// the job is dropped; a missed push is preferable to a stalled HTTP handler.
func (wp *WorkerPool) Dispatch(job Job) {
	select {
	case wp.jobs <- job:
	default:
		log.Printf("notification queue full, dropping job for machine %d", job.MachineID)
	}
}

func statusText(s model.MachineStatus) string {
	switch s {
	case model.StatusFree:
		return "free"
	case model.StatusInUse:
		return "in use"
	case model.StatusRepair:
		return "under repair"
	}
	return string(s)
}

// notifyMachineSubscribers fetches subscriptions for the job's machine and
// sends one push per subscriber.
func (wp *WorkerPool) notifyMachineSubscribers(ctx context.Context, job Job) {
	subs, err := wp.store.SubscriptionsForMachine(ctx, job.MachineID)
	if err != nil {
		log.Printf("error fetching subscriptions for machine %d: %v", job.MachineID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	label := fmt.Sprintf("%d", job.MachineID)
	if machine, err := wp.store.GetMachine(ctx, job.MachineID); err != nil {
		log.Printf("error fetching machine %d: %v", job.MachineID, err)
	} else if machine != nil {
		label = fmt.Sprintf("%s %s (%s)", machine.Brand, machine.Model, machine.SerialNumber)
	}

	message := fmt.Sprintf("Machine %s is now %s", label, statusText(job.Status))
	for _, sub := range subs {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// The push service reports expired subscriptions with 410.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
