package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rabbitmq/amqp091-go"
)

// MockMessageQueue is an in-memory messageQueue. Messages accepted by keep are
// removed, like QueueService deletes them.
type MockMessageQueue struct {
	Bodies [][]byte
	TTLs   []time.Duration
}

func (m *MockMessageQueue) EnqueueMessage(ctx context.Context, queueName string, message any, ttl time.Duration) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	m.Bodies = append(m.Bodies, body)
	m.TTLs = append(m.TTLs, ttl)
	return nil
}

func (m *MockMessageQueue) ReceiveMessages(ctx context.Context, queueName string, keep func(body []byte) bool) error {
	var remaining [][]byte
	for _, body := range m.Bodies {
		if !keep(body) {
			remaining = append(remaining, body)
		}
	}
	m.Bodies = remaining
	return nil
}

// MockChannel is a mock implementation of amqpChannel backed by a slice of
// deliveries.
type MockChannel struct {
	Deliveries []amqp091.Delivery
	GetErr     error

	Published []amqp091.Publishing
	Exchanges []string
	Keys      []string
	GetQueues []string
}

func (m *MockChannel) Get(queue string, autoAck bool) (amqp091.Delivery, bool, error) {
	m.GetQueues = append(m.GetQueues, queue)
	if m.GetErr != nil {
		return amqp091.Delivery{}, false, m.GetErr
	}
	if len(m.Deliveries) == 0 {
		return amqp091.Delivery{}, false, nil
	}
	d := m.Deliveries[0]
	m.Deliveries = m.Deliveries[1:]
	return d, true, nil
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	m.Exchanges = append(m.Exchanges, exchange)
	m.Keys = append(m.Keys, key)
	m.Published = append(m.Published, msg)
	return nil
}

func (m *MockChannel) Close() error { return nil }

// MockAcknowledger records the delivery tags it was asked to settle.
type MockAcknowledger struct {
	Acked    []uint64
	Requeued []uint64
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	m.Acked = append(m.Acked, tag)
	return nil
}

func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	if requeue {
		m.Requeued = append(m.Requeued, tag)
	}
	return nil
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Nack(tag, false, requeue)
}

// MockEntityClient is a mock implementation of entityClient. Entities lists
// what every query returns.
type MockEntityClient struct {
	Entities [][]byte

	AddEntityFunc         func(ctx context.Context, entity []byte) error
	DeleteEntityFunc      func(ctx context.Context, partitionKey, rowKey string) error
	SubmitTransactionFunc func(ctx context.Context, actions []aztables.TransactionAction) error

	Added   [][]byte
	Deleted [][2]string
	Batches [][]aztables.TransactionAction
}

func (m *MockEntityClient) AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error) {
	m.Added = append(m.Added, entity)
	if m.AddEntityFunc != nil {
		return aztables.AddEntityResponse{}, m.AddEntityFunc(ctx, entity)
	}
	return aztables.AddEntityResponse{}, nil
}

func (m *MockEntityClient) UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error) {
	return aztables.UpdateEntityResponse{}, nil
}

func (m *MockEntityClient) DeleteEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error) {
	m.Deleted = append(m.Deleted, [2]string{partitionKey, rowKey})
	if m.DeleteEntityFunc != nil {
		return aztables.DeleteEntityResponse{}, m.DeleteEntityFunc(ctx, partitionKey, rowKey)
	}
	return aztables.DeleteEntityResponse{}, nil
}

func (m *MockEntityClient) SubmitTransaction(ctx context.Context, actions []aztables.TransactionAction, options *aztables.SubmitTransactionOptions) (aztables.TransactionResponse, error) {
	m.Batches = append(m.Batches, actions)
	if m.SubmitTransactionFunc != nil {
		return aztables.TransactionResponse{}, m.SubmitTransactionFunc(ctx, actions)
	}
	return aztables.TransactionResponse{}, nil
}

func (m *MockEntityClient) NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse] {
	return runtime.NewPager(runtime.PagingHandler[aztables.ListEntitiesResponse]{
		More: func(aztables.ListEntitiesResponse) bool { return false },
		Fetcher: func(ctx context.Context, _ *aztables.ListEntitiesResponse) (aztables.ListEntitiesResponse, error) {
			return aztables.ListEntitiesResponse{Entities: m.Entities}, nil
		},
	})
}
