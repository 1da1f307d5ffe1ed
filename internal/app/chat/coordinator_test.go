package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
)

const frameTimeout = time.Second

func newTestCoordinator(t *testing.T, opts Options) *Coordinator {
	t.Helper()
	logx.Discard()

	c := NewCoordinator(NewWriterLock(), opts)
	t.Cleanup(c.Shutdown)
	return c
}

func register(t *testing.T, c *Coordinator, id string, role user.Role, purpose Purpose) *Session {
	t.Helper()

	s, err := c.Register(context.Background(), Identity{ID: id, Name: id, Role: role}, purpose)
	require.NoError(t, err)
	return s
}

// flush waits until every event queued before it has been handled.
func flush(t *testing.T, c *Coordinator) Stats {
	t.Helper()

	stats, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	return stats
}

func nextFrame(t *testing.T, s *Session) map[string]any {
	t.Helper()

	select {
	case data, ok := <-s.Outbound():
		require.True(t, ok, "outbound queue closed")
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(frameTimeout):
		t.Fatalf("no frame for session %s", s.Identity.ID)
		return nil
	}
}

func requireNoFrame(t *testing.T, s *Session) {
	t.Helper()

	select {
	case data, ok := <-s.Outbound():
		if ok {
			t.Fatalf("unexpected frame for session %s: %s", s.Identity.ID, data)
		}
	default:
	}
}

func TestCoordinator_SecondWriterConflicts(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)

	_, err := c.Register(context.Background(), Identity{ID: "bob", Role: user.RoleWriter}, PurposeChat)
	req.True(errs.HasCode(err, errs.ErrWriterConflict), "got %v", err)

	holder, ok := c.Lock().Holder()
	req.True(ok)
	req.Equal(alice.ID, holder)

	stats := flush(t, c)
	req.True(stats.WriterActive)
	req.Equal(1, stats.WriterSessions)
	req.Equal("alice", stats.Writer)
}

func TestCoordinator_ConcurrentWriterRegistration(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	const candidates = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)

	for i := range candidates {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := c.Register(context.Background(), Identity{ID: fmt.Sprintf("w%d", n), Role: user.RoleWriter}, PurposeChat)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errs.HasCode(err, errs.ErrWriterConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	req.Equal(1, winners)
	req.Equal(candidates-1, conflicts)

	stats := flush(t, c)
	req.Equal(1, stats.WriterSessions)
	req.True(stats.WriterActive)
}

func TestCoordinator_WriterDepartureReleasesLockThenNotifies(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)
	req.True(c.Lock().Occupied())

	c.Unregister(alice.ID)
	req.False(c.Lock().Occupied(), "lock is free once Unregister returns")

	frame := nextFrame(t, carol)
	req.Equal(string(TypeWriterDeparted), frame["type"])

	c.Unregister(alice.ID)
	flush(t, c)
	requireNoFrame(t, carol)

	bob := register(t, c, "bob", user.RoleWriter, PurposeChat)
	holder, _ := c.Lock().Holder()
	req.Equal(bob.ID, holder)
}

func TestCoordinator_ReaderDepartureKeepsLock(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	register(t, c, "alice", user.RoleWriter, PurposeChat)
	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	dave := register(t, c, "dave", user.RoleReader, PurposeChat)

	c.Unregister(carol.ID)

	req.True(c.Lock().Occupied())
	requireNoFrame(t, dave)

	_, ok := <-carol.Outbound()
	req.False(ok, "departed reader's queue is closed")

	stats := flush(t, c)
	req.Equal(1, stats.Readers)
}

func TestCoordinator_BroadcastReachesEveryReaderInOrder(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	dave := register(t, c, "dave", user.RoleReader, PurposeChat)
	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)

	ctx := context.Background()
	req.NoError(c.Submit(ctx, alice.ID, "hello", ""))
	req.NoError(c.Submit(ctx, alice.ID, "world", ""))

	for _, reader := range []*Session{carol, dave} {
		first := nextFrame(t, reader)
		req.Equal(string(TypeChatMessage), first["type"])
		req.Equal("hello", first["text"])
		req.EqualValues(1, first["seq"])
		req.Equal("alice", first["from"])
		req.NotZero(first["sentAt"])

		second := nextFrame(t, reader)
		req.Equal("world", second["text"])
		req.EqualValues(2, second["seq"])
	}

	requireNoFrame(t, alice)
	req.EqualValues(2, flush(t, c).LastSeq)
}

func TestCoordinator_IgnoresMessagesWithoutWriteAccess(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	dave := register(t, c, "dave", user.RoleReader, PurposeChat)
	renamer := register(t, c, "alice", user.RoleWriter, PurposeProfileUpdate)

	ctx := context.Background()
	req.NoError(c.Submit(ctx, carol.ID, "from a reader", ""))
	req.NoError(c.Submit(ctx, renamer.ID, "from a profile channel", ""))
	req.NoError(c.Submit(ctx, "no-such-session", "ghost", ""))

	stats := flush(t, c)
	req.Zero(stats.LastSeq)
	req.Equal(2, stats.Readers)
	req.Equal(1, stats.Transient)

	requireNoFrame(t, carol)
	requireNoFrame(t, dave)
	requireNoFrame(t, renamer)
}

func TestCoordinator_ProfileSessionNeverTouchesLock(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)
	carol := register(t, c, "carol", user.RoleReader, PurposeChat)

	renamer := register(t, c, "alice", user.RoleWriter, PurposeProfileUpdate)
	holder, _ := c.Lock().Holder()
	req.Equal(alice.ID, holder)

	req.NoError(c.Submit(context.Background(), alice.ID, "hi", ""))
	nextFrame(t, carol)
	requireNoFrame(t, renamer)

	c.Unregister(renamer.ID)
	req.True(c.Lock().Occupied())
	requireNoFrame(t, carol)
}

func TestCoordinator_RejectsOversizedMessage(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{MaxMessageBytes: 5})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)

	req.NoError(c.Submit(context.Background(), alice.ID, strings.Repeat("x", 6), "t-1"))

	frame := nextFrame(t, alice)
	req.Equal(string(TypeError), frame["type"])
	req.EqualValues(errs.ErrMessageContentTooLong, frame["code"])

	flush(t, c)
	requireNoFrame(t, carol)
}

func TestCoordinator_IgnoresBlankMessage(t *testing.T) {
	c := newTestCoordinator(t, Options{})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)

	require.NoError(t, c.Submit(context.Background(), alice.ID, "   ", "t-1"))

	require.Zero(t, flush(t, c).LastSeq)
	requireNoFrame(t, carol)
	requireNoFrame(t, alice)
}

func TestCoordinator_ConfirmsTempID(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)

	req.NoError(c.Submit(context.Background(), alice.ID, "hello", "tmp-42"))

	ack := nextFrame(t, alice)
	req.Equal(string(TypeConfirm), ack["type"])
	req.Equal("tmp-42", ack["tempId"])
	req.EqualValues(1, ack["seq"])

	msg := nextFrame(t, carol)
	req.Equal(ack["sentAt"], msg["sentAt"])
}

func TestCoordinator_SlowReaderLosesOldestFrames(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{QueueSize: 2})

	carol := register(t, c, "carol", user.RoleReader, PurposeChat)
	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)

	for _, text := range []string{"one", "two", "three"} {
		req.NoError(c.Submit(context.Background(), alice.ID, text, ""))
	}
	flush(t, c)

	req.Equal("two", nextFrame(t, carol)["text"])
	req.Equal("three", nextFrame(t, carol)["text"])
}

func TestCoordinator_Shutdown(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{})

	alice := register(t, c, "alice", user.RoleWriter, PurposeChat)
	carol := register(t, c, "carol", user.RoleReader, PurposeChat)

	c.Shutdown()
	c.Shutdown()

	req.False(c.Lock().Occupied())

	for _, s := range []*Session{alice, carol} {
		_, ok := <-s.Outbound()
		req.False(ok)
	}

	_, err := c.Register(context.Background(), Identity{ID: "dave", Role: user.RoleReader}, PurposeChat)
	req.True(errs.HasCode(err, errs.ErrCoordinatorStopped))

	_, err = c.Snapshot(context.Background())
	req.Error(err)

	c.Unregister(alice.ID)
}

func TestCoordinator_ChurnKeepsWriterInvariant(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(t, Options{QueueSize: 4})
	ctx := context.Background()

	const (
		workers = 32
		rounds  = 50
	)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		observed []Stats
	)

	stop := make(chan struct{})
	checked := make(chan struct{})
	go func() {
		defer close(checked)
		for {
			select {
			case <-stop:
				return
			default:
			}
			stats, err := c.Snapshot(ctx)
			if err != nil {
				return
			}
			mu.Lock()
			observed = append(observed, stats)
			mu.Unlock()
		}
	}()

	for w := range workers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			role := user.RoleReader
			if n%2 == 0 {
				role = user.RoleWriter
			}

			for i := range rounds {
				s, err := c.Register(ctx, Identity{ID: fmt.Sprintf("p%d", n), Role: role}, PurposeChat)
				if err != nil {
					continue
				}
				if s.IsWriter() {
					_ = c.Submit(ctx, s.ID, fmt.Sprintf("m%d-%d", n, i), "")
				}
				c.Unregister(s.ID)
			}
		}(w)
	}

	wg.Wait()
	close(stop)
	<-checked

	final := flush(t, c)
	observed = append(observed, final)

	for _, stats := range observed {
		req.LessOrEqual(stats.WriterSessions, 1)
		req.Equal(stats.WriterSessions == 1, stats.WriterActive)
	}

	req.False(final.WriterActive)
	req.Zero(final.Readers)
	req.False(c.Lock().Occupied())
}
