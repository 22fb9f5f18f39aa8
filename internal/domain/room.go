package domain

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	maxSides       = 2
	joinCodeLength = 6

	// No 0/O or 1/I: codes are read aloud and typed by hand.
	joinCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var charsetLen = big.NewInt(int64(len(joinCodeChars)))

// Room is a two-sided pairing. ID, Code and CreatedAt never change after
// construction; everything else is guarded by mu.
type Room struct {
	ID        string
	Code      string
	CreatedAt time.Time

	mu          sync.Mutex
	messages    []Message
	sides       map[Side]struct{}
	subscribers map[uint64]Subscriber
	nextSubID   uint64
	entropy     *ulid.MonotonicEntropy
	now         func() time.Time
}

type RoomRepository interface {
	Create(ctx context.Context) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	Join(ctx context.Context, code string) (*Room, Side, error)
	Stats(ctx context.Context) (RegistryStats, error)
}

type RegistryStats struct {
	Rooms       int `json:"rooms"`
	Subscribers int `json:"subscribers"`
	Messages    int `json:"messages"`
}

// DeliveryReport describes the fan-out of a single accepted message.
type DeliveryReport struct {
	Delivered int
	Dropped   int
}

func NewRoom(code string) *Room {
	return &Room{
		ID:          uuid.NewString(),
		Code:        code,
		CreatedAt:   time.Now(),
		messages:    make([]Message, 0, 32),
		sides:       make(map[Side]struct{}, maxSides),
		subscribers: make(map[uint64]Subscriber),
		entropy:     ulid.Monotonic(rand.Reader, 0),
		now:         time.Now,
	}
}

// ClaimSide occupies the free side, preferring A.
func (r *Room) ClaimSide() (Side, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, side := range []Side{SideA, SideB} {
		if _, taken := r.sides[side]; !taken {
			r.sides[side] = struct{}{}
			return side, nil
		}
	}

	return "", ErrRoomFull
}

func (r *Room) Sides() []Side {
	r.mu.Lock()
	defer r.mu.Unlock()

	sides := make([]Side, 0, len(r.sides))
	for _, side := range []Side{SideA, SideB} {
		if _, ok := r.sides[side]; ok {
			sides = append(sides, side)
		}
	}
	return sides
}

// Append stamps msg with an id and the acceptance time, records it and hands
// it to every current subscriber. Subscribers that fail are removed; that
// never undoes the append.
func (r *Room) Append(msg Message) (Message, DeliveryReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Round(0) drops the monotonic reading so the comparison below, and the
	// stored time, follow the wall clock.
	at := r.now().Round(0)
	if n := len(r.messages); n > 0 && at.Before(r.messages[n-1].At) {
		at = r.messages[n-1].At
	}

	// at never decreases and the entropy is monotonic within a millisecond,
	// so ids ascend in acceptance order.
	msg.ID = ulid.MustNew(ulid.Timestamp(at), r.entropy).String()
	msg.At = at
	r.messages = append(r.messages, msg)

	var report DeliveryReport
	for id, sub := range r.subscribers {
		if err := sub.Deliver(msg); err != nil {
			delete(r.subscribers, id)
			report.Dropped++
			continue
		}
		report.Delivered++
	}

	return msg, report
}

// Messages returns a copy of the history in arrival order.
func (r *Room) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := make([]Message, len(r.messages))
	copy(cpy, r.messages)
	return cpy
}

func (r *Room) MessageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.messages)
}

// Subscribe registers sub and, when afterID is set, returns the messages
// accepted after that id. Both happen under the same lock as Append, so the
// backlog and the live feed neither overlap nor leave a gap.
func (r *Room) Subscribe(sub Subscriber, afterID string) ([]Message, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = sub

	var backlog []Message
	if afterID != "" {
		for _, msg := range r.messages {
			// ULIDs sort lexically in creation order.
			if msg.ID > afterID {
				backlog = append(backlog, msg)
			}
		}
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
		})
	}

	return backlog, unsubscribe
}

func (r *Room) SubscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.subscribers)
}

func GenerateJoinCode() (string, error) {
	var sb strings.Builder
	sb.Grow(joinCodeLength)

	for i := 0; i < joinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(joinCodeChars[n.Int64()])
	}

	return sb.String(), nil
}

// NormalizeJoinCode makes user input comparable with generated codes.
func NormalizeJoinCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
