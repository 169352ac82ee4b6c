package ws

import (
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/planwright/floorplan-engine/internal/protocol"
)

// Broadcaster stamps patches with a session-monotonic sequence number
// and fans them out through the hub.
type Broadcaster struct {
	hub *Hub
	seq atomic.Uint64
}

// NewBroadcaster wraps a hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Send marshals one patch and broadcasts it. Marshal failures are
// logged and dropped; patch payloads are plain data and should never
// fail to encode.
func (b *Broadcaster) Send(patchType string, payload any) {
	env := protocol.PatchEnvelope{
		Sequence: b.seq.Add(1),
		Type:     patchType,
		Payload:  payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("broadcast %s: marshal failed: %v", patchType, err)
		return
	}
	b.hub.Broadcast(data)
}
