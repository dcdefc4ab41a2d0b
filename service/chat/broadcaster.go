package chat

import (
	"encoding/json"

	"chat-relay/logger"
	"chat-relay/module/chat/model"
)

// Broadcaster turns consumed log events into pushes. It delivers every
// event to every live connection without filtering by room: room isolation
// is the consumer's responsibility (see HandleWS). The log is at-least-once,
// so the same event may go out twice; clients de-duplicate by id.
type Broadcaster struct {
	mgr *ConnManager
}

func NewBroadcaster(mgr *ConnManager) *Broadcaster {
	return &Broadcaster{mgr: mgr}
}

// HandleEvent is the relay topic handler. A record that does not decode as
// a message event is logged and discarded — a poison record must never take
// the consumer loop down. The raw bytes, not a re-encoding, are what gets
// forwarded.
func (b *Broadcaster) HandleEvent(topic string, key, value []byte) error {
	var ev model.Message
	if err := json.Unmarshal(value, &ev); err != nil {
		sample := value
		if len(sample) > 256 {
			sample = sample[:256]
		}
		logger.Errorf("[broadcast] malformed event on %s, discarding: %v sample=%q", topic, err, sample)
		return nil
	}

	conns := b.mgr.Snapshot()
	dropped := 0
	for _, c := range conns {
		if !c.Enqueue(value) {
			// This connection only; the rest of the fan-out continues. A
			// dead connection is removed by its own read-loop exit, not here.
			dropped++
		}
	}
	if dropped > 0 {
		logger.Warnf("[broadcast] event id=%s room=%s dropped for %d/%d conns",
			ev.ID.Hex(), ev.RoomID, dropped, len(conns))
	} else {
		logger.Debug("[broadcast] event fanned out room=" + ev.RoomID)
	}
	return nil
}
