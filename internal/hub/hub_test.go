package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory stand-in for the relational layer.
type fakeStorage struct {
	mu          sync.Mutex
	memberships map[uuid.UUID][]uuid.UUID // user → conversations
	summaries   map[uuid.UUID][]dto.ConversationSummary
	lastRead    map[uuid.UUID]map[uuid.UUID]time.Time // user → conversation → at
	lastSeen    map[uuid.UUID]time.Time

	failMembership bool
	failMarkRead   bool
	recomputes     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		memberships: make(map[uuid.UUID][]uuid.UUID),
		summaries:   make(map[uuid.UUID][]dto.ConversationSummary),
		lastRead:    make(map[uuid.UUID]map[uuid.UUID]time.Time),
		lastSeen:    make(map[uuid.UUID]time.Time),
	}
}

func (s *fakeStorage) addMember(userID uuid.UUID, conversationIDs ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[userID] = append(s.memberships[userID], conversationIDs...)
}

func (s *fakeStorage) MembershipOf(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMembership {
		return nil, errStorageDown
	}
	return append([]uuid.UUID(nil), s.memberships[userID]...), nil
}

func (s *fakeStorage) MembersOf(_ context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []uuid.UUID
	for userID, convs := range s.memberships {
		for _, id := range convs {
			if id == conversationID {
				users = append(users, userID)
				break
			}
		}
	}
	return users, nil
}

func (s *fakeStorage) RecomputeUnread(_ context.Context, userID uuid.UUID) ([]dto.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputes++
	return append([]dto.ConversationSummary(nil), s.summaries[userID]...), nil
}

func (s *fakeStorage) MarkRead(_ context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMarkRead {
		return errStorageDown
	}
	if s.lastRead[userID] == nil {
		s.lastRead[userID] = make(map[uuid.UUID]time.Time)
	}
	s.lastRead[userID][conversationID] = at
	return nil
}

func (s *fakeStorage) SetLastSeen(_ context.Context, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen[userID] = at
	return nil
}

var errStorageDown = errTest("storage down")

type errTest string

func (e errTest) Error() string { return string(e) }

// ------------------------------------------------------------------
// harness helpers
// ------------------------------------------------------------------

func newTestHub(t *testing.T, store *fakeStorage, opts Options) *Hub {
	t.Helper()
	if opts.WriteQueue == 0 {
		opts.WriteQueue = 64
	}
	return New(store, opts)
}

// connect bootstraps a connection without a real websocket; frames land in
// the conn's out channel.
func connect(t *testing.T, h *Hub, userID uuid.UUID) *Conn {
	t.Helper()
	c, err := h.Bootstrap(context.Background(), userID, nil)
	require.NoError(t, err)
	return c
}

// drain empties the connection's outbound queue and returns the decoded
// frames received so far.
func drain(t *testing.T, c *Conn) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case frame, ok := <-c.out:
			if !ok {
				return out
			}
			var env Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

// eventsOfType filters drained frames by event type.
func eventsOfType(frames []Envelope, eventType string) []Envelope {
	var out []Envelope
	for _, f := range frames {
		if f.Type == eventType {
			out = append(out, f)
		}
	}
	return out
}

// waitForFrame blocks until the connection receives a frame of the given
// type or the timeout passes. Used for timer-driven broadcasts.
func waitForFrame(t *testing.T, c *Conn, eventType string, timeout time.Duration) Envelope {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case frame, ok := <-c.out:
			require.True(t, ok, "connection closed while waiting for %s", eventType)
			var env Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			if env.Type == eventType {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}
