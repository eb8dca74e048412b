// Package events provides the in-process publish/subscribe bus that connects
// the services layer to the desktop UI. Publishing never blocks: a subscriber
// that falls behind loses events rather than stalling a service.
package events

import "sync"

// Topic routes events to interested subscribers.
type Topic string

const (
	// TopicServicesStarted fires once when all services report success.
	TopicServicesStarted Topic = "services.started"

	// TopicWindowMounted carries a window ready to be placed on the desktop.
	TopicWindowMounted Topic = "window.mounted"

	// TopicWindowUnregistered fires when the user closes a window.
	TopicWindowUnregistered Topic = "window.unregistered"

	// TopicNotification carries transient desktop toasts.
	TopicNotification Topic = "desktop.notification"

	// TopicLogRecord is the live log signal consumed by log viewers.
	TopicLogRecord Topic = "log.record"

	// TopicScreenPushed carries a new screen for the root program.
	TopicScreenPushed Topic = "screen.pushed"

	// TopicShellReady carries the shell session's furniture widgets.
	TopicShellReady Topic = "shell.ready"
)

// Event is a published payload tagged with its topic.
type Event struct {
	Topic   Topic
	Payload any
}

// Bus is a topic-keyed fan-out hub.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[int]chan Event
	next int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]chan Event)}
}

// Subscribe registers a buffered subscription to a topic. The returned cancel
// function removes the subscription and closes the channel; it is safe to
// call more than once.
func (b *Bus) Subscribe(topic Topic, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	key := b.next
	b.next++
	b.subs[topic][key] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[topic]; ok {
				delete(set, key)
				if len(set) == 0 {
					delete(b.subs, topic)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the payload to every current subscriber of the topic.
// Full subscriber buffers are skipped.
func (b *Bus) Publish(topic Topic, payload any) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports how many subscriptions a topic currently has.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
