package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/puttparty/backend/internal/game"
	"github.com/redis/go-redis/v9"
)

const gameEventsChannel = "game_events"

// StartEventSubscriber subscribes to the game_events channel and relays
// incoming events to the connected clients of each game.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; game events are delivered in-process")
		return
	}

	pubsub := rdb.Subscribe(ctx, gameEventsChannel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()
	go func() {
		log.Println("[WS] game_events subscriber started")
		for msg := range ch {
			var payload game.GameEventMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			if payload.GameToken == "" {
				continue
			}

			switch payload.Event.Type {
			case game.EventHoleFinished, game.EventGameOver, game.EventSessionCancelled:
				log.Printf("[WS] event %s for game %s (room_size=%d)", payload.Event.Type, payload.GameToken, h.RoomSize(payload.GameToken))
			}
			h.BroadcastEvent(payload.GameToken, payload.Event)
		}
		log.Println("[WS] game_events subscriber stopped")
	}()
}
