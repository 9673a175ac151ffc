package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesAndReuses(t *testing.T) {
	s := NewStore(0)
	defer s.Close()

	sess, release := s.Acquire("s1", 7)
	require.NotNil(t, sess)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, 7, sess.UserID)
	assert.IsType(t, Idle{}, sess.Mode)

	sess.Mode = AwaitingLocations{Destination: "Delhi"}
	release()

	again, release := s.Acquire("s1", 7)
	defer release()
	assert.Same(t, sess, again)
	m, ok := again.Mode.(AwaitingLocations)
	require.True(t, ok)
	assert.Equal(t, "Delhi", m.Destination)
	assert.Equal(t, 1, s.Len())
}

func TestAcquireSerializesTurns(t *testing.T) {
	s := NewStore(0)
	defer s.Close()

	sess, release := s.Acquire("s1", 1)

	acquired := make(chan *Session)
	go func() {
		other, rel := s.Acquire("s1", 1)
		defer rel()
		acquired <- other
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while the first turn holds the lock")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case other := <-acquired:
		assert.Same(t, sess, other)
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed")
	}
}

func TestEvictIdle(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	_, release := s.Acquire("stale", 1)
	release()
	require.Equal(t, 1, s.Len())

	s.evictIdle(time.Now())
	assert.Equal(t, 1, s.Len(), "fresh session must survive a sweep")

	s.evictIdle(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, s.Len())
}

func TestEvictSkipsSessionMidTurn(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	_, release := s.Acquire("busy", 1)
	s.evictIdle(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 1, s.Len(), "a locked session must not be evicted")

	release()
	s.evictIdle(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, s.Len())
}

func TestResetDropsFlowButKeepsLastSearch(t *testing.T) {
	sess := &Session{ID: "x", Mode: CollectingPNR{Purpose: PNRForCancel, Digits: []string{"1"}}}
	sess.Last = &LastSearch{Source: "Mumbai CST"}
	sess.Reset()
	assert.IsType(t, Idle{}, sess.Mode)
	assert.NotNil(t, sess.Last)
}
