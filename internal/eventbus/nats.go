/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/telemetry"
)

// SubjectPrefix prefixes every forwarded subject.
const SubjectPrefix = "radiostream.events."

// Conn is the part of a NATS connection the forwarder needs.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Forwarder copies in-process events onto NATS subjects so other
// instances and tools can follow playlist activity.
type Forwarder struct {
	bus    *events.Bus
	conn   Conn
	logger zerolog.Logger
	nodeID string

	mu   sync.Mutex
	subs map[events.EventType]events.Subscriber
	wg   sync.WaitGroup
}

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		MaxReconnects: 10,
		ReconnectWait: time.Second,
		Timeout:       5 * time.Second,
	}
}

// Dial connects to NATS and keeps retrying in the background when the
// server is not up yet.
func Dial(cfg NATSConfig, logger zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("radiostream"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// NewForwarder creates a forwarder. Call Start to begin forwarding.
func NewForwarder(bus *events.Bus, conn Conn, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		bus:    bus,
		conn:   conn,
		logger: logger.With().Str("component", "eventbus").Logger(),
		nodeID: generateNodeID(),
		subs:   make(map[events.EventType]events.Subscriber),
	}
}

// Start subscribes to every event type.
func (f *Forwarder) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, eventType := range events.Types() {
		if _, ok := f.subs[eventType]; ok {
			continue
		}
		sub := f.bus.Subscribe(eventType)
		f.subs[eventType] = sub

		f.wg.Add(1)
		go f.forward(eventType, sub)
	}
	f.logger.Info().Str("node_id", f.nodeID).Int("types", len(f.subs)).Msg("event forwarding started")
}

func (f *Forwarder) forward(eventType events.EventType, sub events.Subscriber) {
	defer f.wg.Done()
	subject := SubjectPrefix + string(eventType)

	for payload := range sub {
		data, err := marshalNATSMessage(eventType, payload, f.nodeID)
		if err != nil {
			telemetry.EventsForwarded.WithLabelValues("error").Inc()
			f.logger.Warn().Err(err).Str("event", string(eventType)).Msg("encode event")
			continue
		}
		if err := f.conn.Publish(subject, data); err != nil {
			telemetry.EventsForwarded.WithLabelValues("error").Inc()
			f.logger.Warn().Err(err).Str("subject", subject).Msg("publish event")
			continue
		}
		telemetry.EventsForwarded.WithLabelValues("ok").Inc()
	}
}

// Close unsubscribes from the bus, waits for in-flight events and drains
// the NATS connection.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	for eventType, sub := range f.subs {
		f.bus.Unsubscribe(eventType, sub)
		delete(f.subs, eventType)
	}
	f.mu.Unlock()

	f.wg.Wait()
	return f.conn.Drain()
}

// natsMessage represents a message published to NATS.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"` // For deduplication
}

// marshalNATSMessage converts payload to NATS message format.
func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}

// unmarshalNATSMessage parses a NATS message.
func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "radiostream"
	}
	return host + "-" + uuid.NewString()[:8]
}
