package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	ch1, cancel1 := b.Subscribe(TopicNotification, 4)
	defer cancel1()
	ch2, cancel2 := b.Subscribe(TopicNotification, 4)
	defer cancel2()

	b.Publish(TopicNotification, "hello")

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, TopicNotification, ev.Topic)
			assert.Equal(t, "hello", ev.Payload)
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(TopicWindowMounted, 1)
	defer cancel()

	b.Publish(TopicNotification, "noise")
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	b := New()
	_, cancel := b.Subscribe(TopicLogRecord, 1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(TopicLogRecord, i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCancelClosesChannelAndIsIdempotent(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(TopicShellReady, 1)
	require.Equal(t, 1, b.SubscriberCount(TopicShellReady))

	cancel()
	cancel()
	assert.Equal(t, 0, b.SubscriberCount(TopicShellReady))

	_, open := <-ch
	assert.False(t, open)
}
