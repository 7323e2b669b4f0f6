package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

const (
	// maxDequeue is the service limit for one DequeueMessages call.
	maxDequeue = 32
	// skipVisibility hides a message left for another session only briefly.
	skipVisibility = 2 * time.Second
	// eventTTL outlives the default cache duration.
	eventTTL = 10 * time.Minute
)

// QueueService handles interactions with Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient
}

// NewQueueService connects to the queue endpoint at serviceURL.
func NewQueueService(serviceURL string) (*QueueService, error) {
	auth, err := resolveAuth("queue", serviceURL)
	if err != nil {
		return nil, err
	}

	var client *azqueue.ServiceClient
	if auth.sharedKey() {
		cred, err := azqueue.NewSharedKeyCredential(auth.accountName, auth.accountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		client, err = azqueue.NewServiceClient(serviceURL, auth.token, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	slog.Info("queue service initialized", "queue_url", serviceURL)
	return &QueueService{serviceClient: client}, nil
}

func (s *QueueService) queue(ctx context.Context, queueName string) *azqueue.QueueClient {
	queueClient := s.serviceClient.NewQueueClient(queueName)
	_, err := queueClient.Create(ctx, nil)
	var respErr *azcore.ResponseError
	if err != nil && !(errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists") {
		slog.Warn("failed to create queue", "queue", queueName, "error", err)
	}
	return queueClient
}

// EnqueueMessage adds a JSON message to a queue. Bodies are base64 encoded,
// matching what Azure Functions queue triggers expect. A zero ttl keeps the
// service default.
func (s *QueueService) EnqueueMessage(ctx context.Context, queueName string, message any, ttl time.Duration) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var opts *azqueue.EnqueueMessageOptions
	if ttl > 0 {
		opts = &azqueue.EnqueueMessageOptions{TimeToLive: to.Ptr(int32(ttl / time.Second))}
	}

	encoded := base64.StdEncoding.EncodeToString(msgBytes)
	if _, err := s.queue(ctx, queueName).EnqueueMessage(ctx, encoded, opts); err != nil {
		slog.Error("failed to enqueue message", "queue", queueName, "error", err)
		return fmt.Errorf("failed to enqueue message to %s: %w", queueName, err)
	}

	slog.Debug("enqueued message", "queue", queueName)
	return nil
}

// ReceiveMessages reads every visible message once. Messages accepted by keep
// are deleted from the queue; the rest become visible again after
// skipVisibility.
func (s *QueueService) ReceiveMessages(ctx context.Context, queueName string, keep func(body []byte) bool) error {
	queueClient := s.queue(ctx, queueName)
	seen := make(map[string]bool)
	for {
		resp, err := queueClient.DequeueMessages(ctx, &azqueue.DequeueMessagesOptions{
			NumberOfMessages:  to.Ptr(int32(maxDequeue)),
			VisibilityTimeout: to.Ptr(int32(skipVisibility / time.Second)),
		})
		if err != nil {
			return fmt.Errorf("failed to dequeue messages from %s: %w", queueName, err)
		}

		fresh := 0
		for _, msg := range resp.Messages {
			if msg.MessageText == nil || msg.MessageID == nil || msg.PopReceipt == nil {
				continue
			}
			// Skipped messages reappear quickly and may come back in a later batch.
			if seen[*msg.MessageID] {
				continue
			}
			seen[*msg.MessageID] = true
			fresh++

			body, err := decodeMessageText(*msg.MessageText)
			if err != nil {
				slog.Warn("dropping undecodable queue message", "queue", queueName, "message_id", *msg.MessageID, "error", err)
			} else if !keep(body) {
				continue
			}
			if _, err := queueClient.DeleteMessage(ctx, *msg.MessageID, *msg.PopReceipt, nil); err != nil {
				slog.Warn("failed to delete queue message", "queue", queueName, "message_id", *msg.MessageID, "error", err)
			}
		}

		if fresh == 0 || len(resp.Messages) < maxDequeue {
			return nil
		}
	}
}

func decodeMessageText(text string) ([]byte, error) {
	body, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		// Messages written by other tools may be plain JSON.
		if json.Valid([]byte(text)) {
			return []byte(text), nil
		}
		return nil, err
	}
	return body, nil
}

// messageQueue is the part of QueueService used by QueueEvents.
type messageQueue interface {
	EnqueueMessage(ctx context.Context, queueName string, message any, ttl time.Duration) error
	ReceiveMessages(ctx context.Context, queueName string, keep func(body []byte) bool) error
}

// QueueEvents publishes and drains transaction events on one Azure queue.
// Each event is consumed by the first other session of the same user that
// drains it.
type QueueEvents struct {
	queue     messageQueue
	queueName string
}

// NewQueueEvents binds an event stream to queueName.
func NewQueueEvents(queue messageQueue, queueName string) *QueueEvents {
	return &QueueEvents{queue: queue, queueName: queueName}
}

// Publish enqueues evt. Events nobody else drains expire with the cache.
func (e *QueueEvents) Publish(ctx context.Context, evt models.TransactionEvent) error {
	return e.queue.EnqueueMessage(ctx, e.queueName, evt, eventTTL)
}

// Drain removes and returns the pending events for userID published by
// sessions other than origin. Events for other users, and origin's own
// events, are left on the queue.
func (e *QueueEvents) Drain(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error) {
	var events []models.TransactionEvent
	err := e.queue.ReceiveMessages(ctx, e.queueName, func(body []byte) bool {
		evt, err := decodeEvent(body)
		if err != nil {
			slog.Warn("dropping malformed transaction event", "queue", e.queueName, "error", err)
			return true
		}
		if !evt.Relevant(userID, origin) {
			return false
		}
		events = append(events, evt)
		return true
	})
	return events, err
}

func decodeEvent(body []byte) (models.TransactionEvent, error) {
	var evt models.TransactionEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("decode transaction event: %w", err)
	}
	return evt, nil
}
