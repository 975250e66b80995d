package confirm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Pending is a parked confirmable action awaiting a yes/no reply.
type Pending struct {
	Capability string         `json:"capability"`
	Params     map[string]any `json:"params,omitempty"`
	Dangerous  bool           `json:"dangerous"`
	CreatedAt  time.Time      `json:"created_at"`
}

var (
	// ErrAlreadyPending is returned by Put while the requester has a live
	// slot. New confirmable dispatches are rejected rather than silently
	// replacing the parked action, so a quick "yes" can never confirm the
	// wrong request.
	ErrAlreadyPending = errors.New("confirm: a confirmation is already pending")
	// ErrNoPending is returned by Get/Clear when no slot exists.
	ErrNoPending = errors.New("confirm: no pending confirmation")
)

// DefaultTTL bounds how long a parked action stays confirmable.
const DefaultTTL = 5 * time.Minute

// Store holds at most one pending confirmation per requester. Both
// implementations expire slots after a TTL so an abandoned prompt cannot
// wedge the requester.
type Store interface {
	Put(ctx context.Context, requester string, p Pending) error
	Get(ctx context.Context, requester string) (Pending, error)
	Clear(ctx context.Context, requester string) error
}

// Reply classifies a confirmation answer.
type Reply int

const (
	ReplyUnknown Reply = iota
	ReplyAffirmative
	ReplyNegative
)

var (
	affirmatives = map[string]struct{}{
		"yes": {}, "y": {}, "confirm": {}, "ok": {}, "do it": {},
	}
	negatives = map[string]struct{}{
		"no": {}, "n": {}, "cancel": {}, "abort": {},
	}
)

// ParseReply matches text against the fixed confirmation vocabulary:
// case-insensitive exact match after trimming, never fuzzy.
func ParseReply(text string) Reply {
	t := strings.ToLower(strings.TrimSpace(text))
	if _, ok := affirmatives[t]; ok {
		return ReplyAffirmative
	}
	if _, ok := negatives[t]; ok {
		return ReplyNegative
	}
	return ReplyUnknown
}
