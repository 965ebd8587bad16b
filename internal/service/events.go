package service

// EventType names a topology lifecycle event
type EventType string

const (
	EventTopologyUpdated EventType = "topology_updated"
	EventTopologyChanged EventType = "topology_changed"
	EventCycleFailed     EventType = "cycle_failed"
)

// Event pairs an event type with its payload
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus fans events out to subscriber channels. Publishing never
// blocks; a subscriber that cannot keep up misses events.
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a channel to receive events. Subscribe is not
// safe to call concurrently with Publish; register channels at wiring
// time.
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish delivers an event to every subscriber that has buffer room
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
