package workers

import (
	"context"
	"log"

	"brainbytes-arena/realtime"

	"github.com/redis/go-redis/v9"
)

// EventRelayWorker bridges Redis pub/sub onto the websocket hub, so a match
// event published by any instance reaches the sockets connected to this one.
type EventRelayWorker struct {
	rdb *redis.Client
	hub *realtime.Hub
}

func NewEventRelayWorker(rdb *redis.Client, hub *realtime.Hub) *EventRelayWorker {
	return &EventRelayWorker{rdb: rdb, hub: hub}
}

func (w *EventRelayWorker) Run(ctx context.Context) {
	log.Println("🔁 Starting match event relay worker…")
	pubsub := w.rdb.PSubscribe(ctx, realtime.MatchChannelPattern)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				log.Println("⏹️ Match event relay stopped: pub/sub channel closed")
				return
			}
			w.hub.Broadcast(msg.Channel, []byte(msg.Payload))
		case <-ctx.Done():
			log.Println("⏹️ Match event relay stopped")
			return
		}
	}
}
