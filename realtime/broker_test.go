package realtime

import (
	"OcuCare/models"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageFrames(t *testing.T, n int) chan *redis.Message {
	t.Helper()
	frames := make(chan *redis.Message, n)
	for i := 0; i < n; i++ {
		payload, err := json.Marshal(models.Message{ID: "m", ConversationID: "p1", Text: "hi"})
		require.NoError(t, err)
		frames <- &redis.Message{Payload: string(payload)}
	}
	close(frames)
	return frames
}

func TestMessageSubscriptionCloseUnblocksFullBuffer(t *testing.T) {
	sub := &MessageSubscription{
		ch:   make(chan models.Message, 16),
		done: make(chan struct{}),
	}

	frames := messageFrames(t, 25)
	finished := make(chan struct{})
	go func() {
		sub.run("p1", frames)
		close(finished)
	}()

	// With no consumer the forwarder fills the buffer and blocks on the
	// 17th send. Close must still terminate it.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, sub.Close())

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("forwarder still blocked after Close")
	}
}

func TestMessageSubscriptionDeliversAndClosesOnSourceEnd(t *testing.T) {
	sub := &MessageSubscription{
		ch:   make(chan models.Message, 16),
		done: make(chan struct{}),
	}
	go sub.run("p1", messageFrames(t, 3))

	received := 0
	for message := range sub.C() {
		assert.Equal(t, "hi", message.Text)
		received++
	}
	assert.Equal(t, 3, received, "channel closes once the source ends")
}

func TestMessageSubscriptionDegradesOnBadFrame(t *testing.T) {
	frames := make(chan *redis.Message, 1)
	frames <- &redis.Message{Payload: "{not json"}
	close(frames)

	sub := &MessageSubscription{
		ch:   make(chan models.Message, 16),
		done: make(chan struct{}),
	}
	go sub.run("p1", frames)

	message, ok := <-sub.C()
	require.True(t, ok)
	assert.Equal(t, models.Message{}, message, "an undecodable frame degrades to an empty one")
}

func TestCallSubscriptionCloseUnblocksFullBuffer(t *testing.T) {
	frames := make(chan *redis.Message, 25)
	payload, err := json.Marshal(models.CallNotification{PatientID: "p1", Status: models.CallStatusCalling})
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		frames <- &redis.Message{Payload: string(payload)}
	}
	close(frames)

	sub := &CallSubscription{
		ch:   make(chan *models.CallNotification, 16),
		done: make(chan struct{}),
	}

	finished := make(chan struct{})
	go func() {
		sub.run("p1", frames)
		close(finished)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, sub.Close())

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("forwarder still blocked after Close")
	}
}
