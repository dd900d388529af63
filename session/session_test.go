package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories returns the backends to exercise. Redis runs only when REDIS_TEST_ADDR is set.
func storeFactories(t *testing.T) map[string]func() Store {
	factories := map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
	}
	if addr := os.Getenv("REDIS_TEST_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		require.NoError(t, client.Ping(context.Background()).Err())
		t.Cleanup(func() { _ = client.Close() })
		factories["redis"] = func() Store { return NewRedisStore(client, time.Minute) }
	}
	return factories
}

func newID() string { return "test-" + uuid.NewString() }

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			id := newID()
			t.Cleanup(func() { _ = store.Delete(ctx, id) })

			s, err := store.Create(ctx, id, Turn{Role: RoleSystem, Content: "persona"})
			require.NoError(t, err)
			assert.Equal(t, id, s.ID)
			assert.Len(t, s.Turns, 1)

			_, err = store.Create(ctx, id)
			assert.ErrorIs(t, err, ErrExists)

			require.NoError(t, store.Append(ctx, id,
				Turn{Role: RoleUser, Content: "I like drawing", Language: "en", Original: "i like drawin"},
				Turn{Role: RoleAssistant, Content: "Try Graphic Design.", Language: "en"},
			))

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			require.Len(t, got.Turns, 3)
			assert.Equal(t, "i like drawin", got.Turns[1].Original)
			assert.Len(t, got.History(), 2)

			require.NoError(t, store.Delete(ctx, id))
			require.NoError(t, store.Delete(ctx, id))
			_, err = store.Get(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_RejectsRepeatedRole(t *testing.T) {
	ctx := context.Background()
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			id := newID()
			t.Cleanup(func() { _ = store.Delete(ctx, id) })

			_, err := store.Create(ctx, id, Turn{Role: RoleSystem, Content: "persona"})
			require.NoError(t, err)
			require.NoError(t, store.Append(ctx, id, Turn{Role: RoleUser, Content: "hi"}))

			err = store.Append(ctx, id, Turn{Role: RoleUser, Content: "hello?"})
			assert.ErrorIs(t, err, ErrRoleOrder)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Len(t, got.Turns, 2)
		})
	}
}

func TestStore_AppendUnknownSession(t *testing.T) {
	ctx := context.Background()
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			err := factory().Append(ctx, newID(), Turn{Role: RoleUser, Content: "hi"})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Create(ctx, "CA1", Turn{Role: RoleSystem, Content: "persona"})
	require.NoError(t, err)

	got, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	got.Turns[0].Content = "tampered"
	got.Turns = append(got.Turns, Turn{Role: RoleUser, Content: "x"})

	again, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.Equal(t, "persona", again.Turns[0].Content)
	assert.Len(t, again.Turns, 1)
}

func TestMemoryStore_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("CA%d", i)
			_, err := store.Create(ctx, id, Turn{Role: RoleSystem, Content: "p"})
			assert.NoError(t, err)
			assert.NoError(t, store.Append(ctx, id, Turn{Role: RoleUser, Content: "u"}, Turn{Role: RoleAssistant, Content: "a"}))
		}(i)
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestCheckOrder(t *testing.T) {
	assert.NoError(t, checkOrder(nil, []Turn{{Role: RoleSystem}, {Role: RoleUser}, {Role: RoleAssistant}}))
	assert.ErrorIs(t, checkOrder([]Turn{{Role: RoleAssistant}}, []Turn{{Role: RoleAssistant}}), ErrRoleOrder)
	assert.Error(t, checkOrder(nil, []Turn{{Role: "tool"}}))
}
