package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleReaper starts a background worker that cancels sessions without
// input for longer than the configured idle window.
func StartIdleReaper(ctx context.Context, m *Manager) {
	if m == nil || m.config.SessionIdleMinutes <= 0 {
		log.Println("[IDLE] Idle window disabled; idle reaper not started")
		return
	}
	poll := time.Duration(m.config.IdleWorkerPollInterval) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}

	log.Println("[IDLE] Idle reaper started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle reaper stopping")
				return
			case <-ticker.C:
				m.ReapIdle(ctx, time.Now())
			}
		}
	}()
}

// ReapIdle cancels idle sessions and returns how many were reaped. With Redis
// the candidates come from the session_idle sorted set, otherwise from memory.
func (m *Manager) ReapIdle(ctx context.Context, now time.Time) int {
	window := m.idleWindow()
	var candidates []string

	if m.rdb != nil {
		members, err := m.rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
		if err != nil {
			log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
			return 0
		}
		for _, token := range members {
			// Attempt to remove (race-safe)
			if removed, _ := m.rdb.ZRem(ctx, idleSetKey, token).Result(); removed > 0 {
				candidates = append(candidates, token)
			}
		}
	} else {
		for _, s := range m.Sessions() {
			candidates = append(candidates, s.Token)
		}
	}

	reaped := 0
	for _, token := range candidates {
		s, err := m.GetSession(token)
		if err != nil {
			continue
		}
		if !s.Idle(window) {
			m.touchIdle(token)
			continue
		}
		log.Printf("[IDLE] Cancelling session %s due to inactivity", token)
		m.publishEvent(token, Event{Type: EventSessionCancelled})
		if err := m.EndSession(token); err == nil {
			reaped++
		}
	}
	return reaped
}
