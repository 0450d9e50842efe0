package common

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventSessionEstablished EventType = "session.established"
	EventSessionExpired     EventType = "session.expired"
	EventSessionLoggedOut   EventType = "session.loggedout"
	EventAuthFailed         EventType = "auth.failed"
	EventAnalysisStored     EventType = "analysis.stored"
	EventSettingsUpdated    EventType = "settings.updated"
	EventTabOpen            EventType = "tab.open"
	EventTabClose           EventType = "tab.close"
)

type Event struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// EventBus fans events out to the UI surfaces. Redis-backed when a client is
// provided so surfaces in other processes see them; otherwise dispatches
// locally in-process.
type EventBus struct {
	rdb      *RedisClient
	channel  string
	handlers map[EventType][]func(Event)
	mu       sync.RWMutex
	ctx      context.Context
}

func NewEventBus(ctx context.Context, rdb *RedisClient) *EventBus {
	return &EventBus{
		rdb:      rdb,
		channel:  Keys.EventsChannel(),
		handlers: make(map[EventType][]func(Event)),
		ctx:      ctx,
	}
}

func (eb *EventBus) On(t EventType, fn func(Event)) {
	eb.mu.Lock()
	eb.handlers[t] = append(eb.handlers[t], fn)
	eb.mu.Unlock()
}

func (eb *EventBus) Emit(e Event) {
	if eb.rdb == nil {
		eb.dispatch(e)
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	eb.rdb.Publish(eb.ctx, eb.channel, data)
}

func (eb *EventBus) dispatch(e Event) {
	eb.mu.RLock()
	handlers := eb.handlers[e.Type]
	eb.mu.RUnlock()
	for _, fn := range handlers {
		fn(e)
	}
}

// Start blocks, delivering published events to registered handlers until the
// bus context is cancelled. Call as a goroutine.
func (eb *EventBus) Start() {
	if eb.rdb == nil {
		<-eb.ctx.Done()
		return
	}
	log.Info().Str("channel", eb.channel).Msg("eventbus started")
	eb.listen()
}

func (eb *EventBus) listen() {
	for {
		if eb.ctx.Err() != nil {
			return
		}
		msgs, errs := eb.rdb.Subscribe(eb.ctx, eb.channel)
		eb.recv(msgs, errs)

		select {
		case <-eb.ctx.Done():
			return
		case <-time.After(time.Second):
			// resubscribe after a dropped connection
		}
	}
}

func (eb *EventBus) recv(msgs <-chan *redis.Message, errs <-chan error) {
	for {
		select {
		case <-eb.ctx.Done():
			return
		case err := <-errs:
			if err != nil && eb.ctx.Err() == nil {
				log.Warn().Err(err).Msg("eventbus subscription lost")
			}
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Warn().Err(err).Msg("eventbus: dropping undecodable event")
				continue
			}
			eb.dispatch(e)
		}
	}
}
