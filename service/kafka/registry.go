package kafka

import (
	"sync"

	"github.com/pkg/errors"
)

// MessageHandler processes one consumed record. Handlers must tolerate
// duplicate delivery: the group is at-least-once.
type MessageHandler func(topic string, key, value []byte) error

type handlerRegistry struct {
	mu  sync.RWMutex
	byT map[string]MessageHandler
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{byT: make(map[string]MessageHandler)}
}

func (r *handlerRegistry) register(topic string, h MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byT[topic] = h
}

func (r *handlerRegistry) get(topic string) (MessageHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.byT[topic]; ok {
		return h, nil
	}
	return nil, errors.Errorf("no handler registered for topic: %s", topic)
}
