/*
Package chat contains the core logic for the single-writer chat channel: the writer lock,
the live connection registry, message broadcasting and the profile rename exchange.

This file defines the Coordinator, a single event loop that processes connect, message and
disconnect events strictly one at a time. Every writer lock transition and every registry
insert or removal happens inside that loop, so they are never interleaved.
*/
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
)

const (
	// eventChannelBuffer bounds the number of queued, not yet processed events.
	eventChannelBuffer = 1024

	// DefaultQueueSize is the per-connection outbound queue capacity.
	DefaultQueueSize = 256

	// DefaultMaxMessageBytes is the maximum accepted length of a chat message.
	DefaultMaxMessageBytes = 5000
)

// Options tunes the coordinator's per-connection limits.
type Options struct {
	// QueueSize is the capacity of each connection's outbound queue.
	QueueSize int

	// MaxMessageBytes is the largest chat text the writer may send.
	MaxMessageBytes int
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = DefaultMaxMessageBytes
	}
	return o
}

// Stats is a consistent view of the coordinator state, taken inside the event loop.
type Stats struct {
	WriterActive   bool   `json:"writerActive"`
	Writer         string `json:"writer,omitempty"`
	WriterSessions int    `json:"writerSessions"`
	Readers        int    `json:"readers"`
	Transient      int    `json:"transient"`
	LastSeq        uint64 `json:"lastSeq"`
}

type registerResult struct {
	session *Session
	err     error
}

type registerEvent struct {
	identity Identity
	purpose  Purpose
	reply    chan registerResult
}

type unregisterEvent struct {
	sessionID string
	done      chan struct{}
}

type messageEvent struct {
	sessionID string
	text      string
	tempID    string
}

type snapshotEvent struct {
	reply chan Stats
}

// Coordinator owns the connection registry and mediates all chat traffic.
type Coordinator struct {
	// lock is the injected writer lock; admission reads it, only the event loop mutates it.
	lock *WriterLock

	// registry holds live sessions; touched only by the event loop.
	registry *Registry

	// seq is the sequence number of the last accepted chat message.
	seq uint64

	// events carries register, message, unregister and snapshot events in FIFO order.
	events chan any

	// stop asks the event loop to exit; done is closed once it has.
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	opts   Options
	logger zerolog.Logger
}

// NewCoordinator constructs a Coordinator around lock and starts its event loop.
func NewCoordinator(lock *WriterLock, opts Options) *Coordinator {
	c := &Coordinator{
		lock:     lock,
		registry: NewRegistry(),
		events:   make(chan any, eventChannelBuffer),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		opts:     opts.withDefaults(),
		logger:   logx.Component("Coordinator"),
	}

	go c.run()

	return c
}

// Lock returns the writer lock guarded by this coordinator.
func (c *Coordinator) Lock() *WriterLock {
	return c.lock
}

// Register admits a live connection. Writer-role chat connections must acquire the
// writer lock; if another writer holds it the call fails with ErrWriterConflict.
// Reader and profile-update connections always succeed.
func (c *Coordinator) Register(ctx context.Context, identity Identity, purpose Purpose) (*Session, error) {
	ev := registerEvent{
		identity: identity,
		purpose:  purpose,
		reply:    make(chan registerResult, 1),
	}

	if err := c.enqueue(ctx, ev); err != nil {
		return nil, err
	}

	// Once enqueued, the reply is awaited regardless of ctx so an accepted
	// registration is never abandoned while holding the lock.
	select {
	case res := <-ev.reply:
		return res.session, res.err
	case <-c.done:
		return nil, errs.NewError(errs.ErrCoordinatorStopped)
	}
}

// Unregister removes a connection and, if it was the writer, releases the lock and
// notifies readers. It returns after the event has been processed. Unknown ids are ignored.
func (c *Coordinator) Unregister(sessionID string) {
	ev := unregisterEvent{sessionID: sessionID, done: make(chan struct{})}

	select {
	case c.events <- ev:
	case <-c.done:
		return
	}

	select {
	case <-ev.done:
	case <-c.done:
	}
}

// Submit queues a chat message from the given connection. Validation happens in the
// event loop; rejected messages are logged and dropped.
func (c *Coordinator) Submit(ctx context.Context, sessionID, text, tempID string) error {
	return c.enqueue(ctx, messageEvent{sessionID: sessionID, text: text, tempID: tempID})
}

// Snapshot returns the current coordinator state.
func (c *Coordinator) Snapshot(ctx context.Context) (Stats, error) {
	ev := snapshotEvent{reply: make(chan Stats, 1)}

	if err := c.enqueue(ctx, ev); err != nil {
		return Stats{}, err
	}

	select {
	case stats := <-ev.reply:
		return stats, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	case <-c.done:
		return Stats{}, errs.NewError(errs.ErrCoordinatorStopped)
	}
}

// Shutdown stops the event loop, closes every connection's outbound queue and
// releases the writer lock. It is safe to call more than once.
func (c *Coordinator) Shutdown() {
	c.stopOnce.Do(func() {
		c.logger.Info().Msg("Shutting down coordinator...")
		close(c.stop)
	})

	<-c.done
}

func (c *Coordinator) enqueue(ctx context.Context, ev any) error {
	select {
	case <-c.done:
		return errs.NewError(errs.ErrCoordinatorStopped)
	default:
	}

	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return errs.NewError(errs.ErrCoordinatorStopped)
	}
}

// run is the event loop. Every case runs to completion before the next event is read.
func (c *Coordinator) run() {
	defer close(c.done)

	c.logger.Info().Msg("Coordinator event loop started.")

	for {
		select {
		case ev := <-c.events:
			c.handle(ev)

		case <-c.stop:
			c.closeAll()
			c.logger.Info().Msg("Coordinator event loop stopped.")
			return
		}
	}
}

func (c *Coordinator) handle(ev any) {
	switch e := ev.(type) {
	case registerEvent:
		c.handleRegister(e)
	case unregisterEvent:
		c.handleUnregister(e)
	case messageEvent:
		c.handleMessage(e)
	case snapshotEvent:
		e.reply <- c.stats()
	default:
		c.logger.Error().Interface("event", ev).Msg("Unknown coordinator event.")
	}
}

func (c *Coordinator) handleRegister(e registerEvent) {
	session := newSession(e.identity, e.purpose, c.opts.QueueSize)

	if session.IsWriter() && !c.lock.TryAcquire(session.ID) {
		holder, _ := c.lock.Holder()
		c.logger.Warn().
			Str("identity_id", e.identity.ID).
			Str("holder_session_id", holder).
			Msg("Writer registration rejected: writer slot occupied.")

		e.reply <- registerResult{err: errs.NewError(errs.ErrWriterConflict)}
		return
	}

	c.registry.Add(session)

	c.logger.Info().
		Str("session_id", session.ID).
		Str("identity_id", session.Identity.ID).
		Str("role", string(session.Identity.Role)).
		Str("purpose", string(session.Purpose)).
		Str("state", session.State()).
		Int("total_sessions", c.registry.Len()).
		Msg("Connection registered.")

	e.reply <- registerResult{session: session}
}

func (c *Coordinator) handleUnregister(e unregisterEvent) {
	defer close(e.done)

	session, ok := c.registry.Remove(e.sessionID)
	if !ok {
		c.logger.Debug().Str("session_id", e.sessionID).Msg("Unregister ignored for unknown or already removed connection.")
		return
	}

	session.outbox.Close()

	released := c.lock.Release(session.ID)

	c.logger.Info().
		Str("session_id", session.ID).
		Str("state", session.State()).
		Bool("released_writer_lock", released).
		Int("total_sessions", c.registry.Len()).
		Msg("Connection unregistered.")

	if released {
		c.broadcast(WriterDeparted{Type: TypeWriterDeparted, SentAt: time.Now().UnixMilli()})
	}
}

func (c *Coordinator) handleMessage(e messageEvent) {
	session, ok := c.registry.Get(e.sessionID)
	if !ok {
		c.logger.Warn().Str("session_id", e.sessionID).Msg("Message from unregistered connection ignored.")
		return
	}

	if !session.IsWriter() {
		c.logger.Warn().
			Str("session_id", session.ID).
			Str("role", string(session.Identity.Role)).
			Str("purpose", string(session.Purpose)).
			Msg("Protocol error: chat message from a connection without write access ignored.")
		return
	}

	if strings.TrimSpace(e.text) == "" {
		c.logger.Debug().Str("session_id", session.ID).Msg("Empty chat message ignored.")
		return
	}

	if len(e.text) > c.opts.MaxMessageBytes {
		c.logger.Warn().Str("session_id", session.ID).Int("bytes", len(e.text)).Msg("Chat message too long.")
		if err := session.SendError(errs.NewError(errs.ErrMessageContentTooLong)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to queue error frame.")
		}
		return
	}

	c.seq++
	sentAt := time.Now().UnixMilli()

	c.broadcast(ChatMessage{
		Type:   TypeChatMessage,
		Text:   e.text,
		SentAt: sentAt,
		Seq:    c.seq,
		From:   session.Identity.Name,
	})

	if e.tempID != "" {
		ack := Confirm{Type: TypeConfirm, TempID: e.tempID, Seq: c.seq, SentAt: sentAt}
		if err := session.Send(ack); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to queue confirmation.")
		}
	}
}

// broadcast encodes frame once and pushes it to every reader without blocking.
func (c *Coordinator) broadcast(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling frame for broadcast.")
		return
	}

	for _, reader := range c.registry.Readers() {
		evicted, err := reader.outbox.Push(data)
		if err != nil {
			c.logger.Warn().Err(err).Str("session_id", reader.ID).Msg("Reader outbox closed during broadcast.")
			continue
		}
		if evicted {
			c.logger.Warn().
				Str("session_id", reader.ID).
				Uint64("dropped_total", reader.outbox.Dropped()).
				Msg("Reader queue full, oldest frame dropped.")
		}
	}
}

func (c *Coordinator) stats() Stats {
	s := Stats{
		WriterActive:   c.lock.Occupied(),
		WriterSessions: len(c.registry.Writers()),
		Readers:        len(c.registry.Readers()),
		Transient:      c.registry.CountPurpose(PurposeProfileUpdate),
		LastSeq:        c.seq,
	}

	if holder, ok := c.lock.Holder(); ok {
		if session, found := c.registry.Get(holder); found {
			s.Writer = session.Identity.Name
		}
	}

	return s
}

// closeAll drops every session on shutdown, releasing the writer lock if held.
func (c *Coordinator) closeAll() {
	for _, session := range c.registry.All() {
		c.registry.Remove(session.ID)
		session.outbox.Close()
		c.lock.Release(session.ID)
	}
}
