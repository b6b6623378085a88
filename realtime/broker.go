package realtime

import (
	"OcuCare/models"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Broker pushes message appends and call-status changes to subscribed
// observers over redis pub/sub. Subscriptions are explicit handles the
// consumer must close; their lifetime is tied to the observer, never left
// implicit.
type Broker struct {
	client *redis.Client
}

func NewBroker(client *redis.Client) *Broker {
	return &Broker{client: client}
}

func messageChannel(conversationID string) string {
	return fmt.Sprintf("conversations:%s:messages", conversationID)
}

func callChannel(patientID string) string {
	return fmt.Sprintf("calls:%s", patientID)
}

// PublishMessage fans a freshly appended message out to subscribers.
func (b *Broker) PublishMessage(ctx context.Context, conversationID string, message models.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.client.Publish(ctx, messageChannel(conversationID), payload).Err()
}

// PublishCallStatus fans a call-status change out to subscribers. The
// notification carries status "ended" on the final frame before the record
// is deleted.
func (b *Broker) PublishCallStatus(ctx context.Context, patientID string, notification *models.CallNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal call notification: %w", err)
	}
	return b.client.Publish(ctx, callChannel(patientID), payload).Err()
}

// MessageSubscription is a cancellable stream of messages for one
// conversation. The channel closes when the subscription terminates.
type MessageSubscription struct {
	pubsub *redis.PubSub
	ch     chan models.Message
	done   chan struct{}
	once   sync.Once
}

// SubscribeMessages opens a message stream for a conversation. The caller
// must Close the returned subscription when it stops observing; a leaked
// subscription keeps consuming the connection and re-delivers into a
// disposed consumer.
func (b *Broker) SubscribeMessages(ctx context.Context, conversationID string) (*MessageSubscription, error) {
	pubsub := b.client.Subscribe(ctx, messageChannel(conversationID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to conversation %s: %w", conversationID, err)
	}

	sub := &MessageSubscription{
		pubsub: pubsub,
		ch:     make(chan models.Message, 16),
		done:   make(chan struct{}),
	}
	go sub.run(conversationID, pubsub.Channel())
	return sub, nil
}

// run forwards frames until the source closes or the subscription is closed.
// Sends race Close so a forwarder blocked on a full buffer with no consumer
// left still terminates instead of leaking.
func (s *MessageSubscription) run(conversationID string, frames <-chan *redis.Message) {
	defer close(s.ch)
	for frame := range frames {
		var message models.Message
		if err := json.Unmarshal([]byte(frame.Payload), &message); err != nil {
			// Degrade to an empty frame instead of tearing the stream down.
			log.Printf("Dropping undecodable frame on conversation %s: %v", conversationID, err)
			message = models.Message{}
		}
		select {
		case s.ch <- message:
		case <-s.done:
			return
		}
	}
}

// C returns the stream of appended messages.
func (s *MessageSubscription) C() <-chan models.Message {
	return s.ch
}

// Close releases the subscription. Safe to call more than once.
func (s *MessageSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.pubsub != nil {
			err = s.pubsub.Close()
		}
	})
	return err
}

// CallSubscription is a cancellable stream of call-status frames for one
// patient. A nil frame means the observed state could not be decoded.
type CallSubscription struct {
	pubsub *redis.PubSub
	ch     chan *models.CallNotification
	done   chan struct{}
	once   sync.Once
}

// SubscribeCallStatus opens a call-status stream for a patient. Same
// lifetime contract as SubscribeMessages.
func (b *Broker) SubscribeCallStatus(ctx context.Context, patientID string) (*CallSubscription, error) {
	pubsub := b.client.Subscribe(ctx, callChannel(patientID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to calls for patient %s: %w", patientID, err)
	}

	sub := &CallSubscription{
		pubsub: pubsub,
		ch:     make(chan *models.CallNotification, 16),
		done:   make(chan struct{}),
	}
	go sub.run(patientID, pubsub.Channel())
	return sub, nil
}

func (s *CallSubscription) run(patientID string, frames <-chan *redis.Message) {
	defer close(s.ch)
	for frame := range frames {
		var out *models.CallNotification
		var notification models.CallNotification
		if err := json.Unmarshal([]byte(frame.Payload), &notification); err != nil {
			log.Printf("Dropping undecodable call frame for patient %s: %v", patientID, err)
		} else {
			out = &notification
		}
		select {
		case s.ch <- out:
		case <-s.done:
			return
		}
	}
}

// C returns the stream of call-status frames.
func (s *CallSubscription) C() <-chan *models.CallNotification {
	return s.ch
}

// Close releases the subscription. Safe to call more than once.
func (s *CallSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.pubsub != nil {
			err = s.pubsub.Close()
		}
	})
	return err
}
