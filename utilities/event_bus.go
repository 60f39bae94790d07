package utilities

import "sync"

// Event names published on the bus.
const (
	EventResultCreated = "result_created"
	EventUserCreated   = "user_registered"
)

type EventHandler func(interface{})

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if handlers, found := eb.handlers[event]; found {
		for _, handler := range handlers {
			eb.wg.Add(1)
			go func(h EventHandler) { // Run handlers asynchronously
				defer eb.wg.Done()
				defer func() {
					if r := recover(); r != nil {
						Error("event handler for %s panicked: %v", event, r)
					}
				}()
				h(data)
			}(handler)
		}
	}
}

// Wait blocks until every handler started so far has returned.
func (eb *EventBus) Wait() {
	eb.wg.Wait()
}

// Global instance
var GlobalEventBus = NewEventBus()
