package confirm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	cases := []struct {
		in   string
		want Reply
	}{
		{"yes", ReplyAffirmative},
		{"Y", ReplyAffirmative},
		{"  CONFIRM  ", ReplyAffirmative},
		{"ok", ReplyAffirmative},
		{"do it", ReplyAffirmative},
		{"no", ReplyNegative},
		{"N", ReplyNegative},
		{"cancel", ReplyNegative},
		{"abort", ReplyNegative},
		{"yes please", ReplyUnknown}, // exact match only, never fuzzy
		{"nope", ReplyUnknown},
		{"", ReplyUnknown},
		{"maybe", ReplyUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseReply(tc.in), "input %q", tc.in)
	}
}

func TestMemoryStorePutGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	p := Pending{Capability: "launcher.run_command", Params: map[string]any{"command": "ls"}}
	require.NoError(t, s.Put(ctx, "alice", p))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.Capability, got.Capability)
	assert.Equal(t, p.Params, got.Params)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, s.Clear(ctx, "alice"))
	_, err = s.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoPending)
	assert.ErrorIs(t, s.Clear(ctx, "alice"), ErrNoPending)
}

func TestMemoryStoreRejectsSecondPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Put(ctx, "alice", Pending{Capability: "remote.run_command"}))
	err := s.Put(ctx, "alice", Pending{Capability: "launcher.run_command"})
	assert.ErrorIs(t, err, ErrAlreadyPending)

	// The original slot is untouched.
	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "remote.run_command", got.Capability)
}

func TestMemoryStoreIsolatesRequesters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Put(ctx, "alice", Pending{Capability: "a.x"}))
	require.NoError(t, s.Put(ctx, "bob", Pending{Capability: "b.y"}))

	gotA, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	gotB, err := s.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "a.x", gotA.Capability)
	assert.Equal(t, "b.y", gotB.Capability)

	require.NoError(t, s.Clear(ctx, "alice"))
	_, err = s.Get(ctx, "bob")
	assert.NoError(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put(ctx, "alice", Pending{Capability: "a.x"}))

	// Still live just inside the TTL.
	s.now = func() time.Time { return now.Add(59 * time.Second) }
	_, err := s.Get(ctx, "alice")
	require.NoError(t, err)

	// Gone past the TTL, and the slot frees up for a new Put.
	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = s.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoPending)
	assert.NoError(t, s.Put(ctx, "alice", Pending{Capability: "b.y"}))
}
