package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/hilthontt/relay/internal/domain"
)

// roomRepository keeps every live room in memory for the lifetime of the
// process. There is no eviction: a room disappears only on restart.
type roomRepository struct {
	rooms         map[string]*domain.Room // ID -> Room
	joinCodeIndex map[string]string       // JoinCode -> ID
	generateCode  func() (string, error)
	mu            *sync.RWMutex
}

func NewRoomRepository() domain.RoomRepository {
	return newRoomRepository(domain.GenerateJoinCode)
}

func newRoomRepository(generateCode func() (string, error)) *roomRepository {
	return &roomRepository{
		rooms:         make(map[string]*domain.Room),
		joinCodeIndex: make(map[string]string),
		generateCode:  generateCode,
		mu:            &sync.RWMutex{},
	}
}

// Create mints a room with a join code that no live room is using. The code
// is drawn and registered under the write lock so two concurrent creates can
// never end up with the same code.
func (r *roomRepository) Create(ctx context.Context) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		candidate, err := r.generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate join code: %w", err)
		}
		if _, taken := r.joinCodeIndex[candidate]; !taken {
			code = candidate
			break
		}
	}

	room := domain.NewRoom(code)
	r.rooms[room.ID] = room
	r.joinCodeIndex[room.Code] = room.ID

	return room, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrRoomNotFound
	}

	r.mu.RLock()
	room, exists := r.rooms[id]
	r.mu.RUnlock()
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	return room, nil
}

// Join resolves a user-typed code and claims the free side of its room.
func (r *roomRepository) Join(ctx context.Context, code string) (*domain.Room, domain.Side, error) {
	code = domain.NormalizeJoinCode(code)
	if code == "" {
		return nil, "", domain.ErrInvalidCode
	}

	r.mu.RLock()
	id, exists := r.joinCodeIndex[code]
	room := r.rooms[id]
	r.mu.RUnlock()
	if !exists || room == nil {
		return nil, "", domain.ErrRoomNotFound
	}

	side, err := room.ClaimSide()
	if err != nil {
		return nil, "", err
	}

	return room, side, nil
}

func (r *roomRepository) Stats(ctx context.Context) (domain.RegistryStats, error) {
	r.mu.RLock()
	rooms := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	stats := domain.RegistryStats{Rooms: len(rooms)}
	for _, room := range rooms {
		stats.Subscribers += room.SubscriberCount()
		stats.Messages += room.MessageCount()
	}

	return stats, nil
}
