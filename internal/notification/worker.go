package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"parkkean-backend/internal/model"
	"parkkean-backend/internal/observability"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans reopened-lot notifications out to subscribers.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	metrics *observability.Metrics
}

// NewWorkerPool creates a new worker pool whose queue holds up to queueSize lot ids.
// metrics may be nil.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options, metrics *observability.Metrics) *WorkerPool {
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		metrics: metrics,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case lotID := <-wp.jobs:
			log.Printf("Worker %d processing lot %d", id, lotID)
			wp.sendNotificationsForLot(ctx, lotID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a lot for notification. It never blocks: when the queue is
// full the job is dropped.
func (wp *WorkerPool) Dispatch(lotID int64) {
	select {
	case wp.jobs <- lotID:
		if wp.metrics != nil {
			wp.metrics.NotificationsQueued.Inc()
		}
	default:
		log.Printf("Warning: notification queue full; dropping reopen notice for lot %d", lotID)
		if wp.metrics != nil {
			wp.metrics.NotificationsDropped.Inc()
		}
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForLot(ctx context.Context, lotID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_lot_mapping slm ON slm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("slm.lot_id = ?", lotID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for lot %d: %v", lotID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for lot %d", len(subscriptions), lotID)

	var lot model.Lot
	lotLabel := fmt.Sprintf("Lot %d", lotID)
	if err := wp.db.WithContext(ctx).
		Select("name").
		First(&lot, lotID).Error; err != nil {
		log.Printf("Error fetching lot %d: %v", lotID, err)
	} else if lot.Name != "" {
		lotLabel = lot.Name
	}

	message := fmt.Sprintf("%s has open spaces again", lotLabel)
	for _, sub := range subscriptions {
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
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Gone: the browser revoked the subscription.
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
