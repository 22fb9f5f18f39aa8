package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepository_CreateUniqueCodes(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	const n = 200
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[string]struct{}, n)
		ids   = make(map[string]struct{}, n)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := repo.Create(ctx)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			codes[room.Code] = struct{}{}
			ids[room.ID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Len(t, codes, n)
	assert.Len(t, ids, n)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, stats.Rooms)
}

func TestRoomRepository_CreateRetriesOnCollision(t *testing.T) {
	sequence := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	i := 0
	repo := newRoomRepository(func() (string, error) {
		code := sequence[i]
		i++
		return code, nil
	})
	ctx := context.Background()

	first, err := repo.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Code)

	second, err := repo.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second.Code)
	assert.Equal(t, 4, i, "two collisions were retried")
}

func TestRoomRepository_CreateEntropyFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	repo := newRoomRepository(func() (string, error) { return "", boom })

	_, err := repo.Create(context.Background())
	assert.ErrorIs(t, err, boom)

	stats, _ := repo.Stats(context.Background())
	assert.Zero(t, stats.Rooms)
}

func TestRoomRepository_Join(t *testing.T) {
	repo := newRoomRepository(func() (string, error) { return "AB12CD", nil })
	ctx := context.Background()

	room, err := repo.Create(ctx)
	require.NoError(t, err)

	tests := []struct {
		name     string
		code     string
		wantSide domain.Side
		wantErr  error
	}{
		{name: "lower-case code claims A", code: "ab12cd", wantSide: domain.SideA},
		{name: "padded code claims B", code: "  AB12CD ", wantSide: domain.SideB},
		{name: "third join is rejected", code: "AB12CD", wantErr: domain.ErrRoomFull},
		{name: "unknown code", code: "ZZZZZZ", wantErr: domain.ErrRoomNotFound},
		{name: "blank code", code: "   ", wantErr: domain.ErrInvalidCode},
	}

	// Cases share the room and run in order.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined, side, err := repo.Join(ctx, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, room.ID, joined.ID)
			assert.Equal(t, tt.wantSide, side)
		})
	}
}

func TestRoomRepository_GetByID(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	room, err := repo.Create(ctx)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Same(t, room, got)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, err = repo.GetByID(ctx, "")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomRepository_Stats(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	room, err := repo.Create(ctx)
	require.NoError(t, err)
	_, err = repo.Create(ctx)
	require.NoError(t, err)

	msg, err := domain.NewMessage(domain.SideA, "hi", "")
	require.NoError(t, err)
	room.Append(msg)
	room.Subscribe(domain.SubscriberFunc(func(domain.Message) error { return nil }), "")

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistryStats{Rooms: 2, Subscribers: 1, Messages: 1}, stats)
}
