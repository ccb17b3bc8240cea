package generation

import (
	"context"
	"os"
	"testing"
	"time"

	"fridge-recommender/internal/core/corpus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedRecipe(id string) *corpus.Recipe {
	return &corpus.Recipe{
		ID:                  id,
		Name:                "Generated " + id,
		RequiredIngredients: []string{"beetroot"},
		Steps:               []string{"Cook"},
		Servings:            2,
		ServingSizeG:        200,
		Nutrition:           corpus.Nutrition{Calories: 100},
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(time.Hour, 10, 0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storedRecipe("ai-a")))

	got, err := s.Get(ctx, "ai-a")
	require.NoError(t, err)
	assert.Equal(t, "Generated ai-a", got.Name)

	_, err = s.Get(ctx, "ai-missing")
	assert.ErrorIs(t, err, ErrNotStored)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(10*time.Millisecond, 10, 0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storedRecipe("ai-a")))
	time.Sleep(30 * time.Millisecond)

	_, err := s.Get(ctx, "ai-a")
	assert.ErrorIs(t, err, ErrNotStored)
	assert.Equal(t, 0, s.Stats().Size)
}

func TestMemoryStoreEvictsLeastUsed(t *testing.T) {
	s := NewMemoryStore(time.Hour, 2, 0)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, storedRecipe("ai-a")))
	require.NoError(t, s.Save(ctx, storedRecipe("ai-b")))
	_, err := s.Get(ctx, "ai-a")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, storedRecipe("ai-c")))

	_, err = s.Get(ctx, "ai-b")
	assert.ErrorIs(t, err, ErrNotStored, "least used entry evicted")
	_, err = s.Get(ctx, "ai-a")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "ai-c")
	assert.NoError(t, err)
}

func TestMemoryStoreCleanupLoop(t *testing.T) {
	s := NewMemoryStore(5*time.Millisecond, 10, 5*time.Millisecond)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), storedRecipe("ai-a")))
	require.Eventually(t, func() bool { return s.Stats().Size == 0 }, time.Second, 5*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis store test")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	id := "ai-test-" + time.Now().Format("150405.000000")
	require.NoError(t, s.Save(ctx, storedRecipe(id)))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, storedRecipe(id), got)

	_, err = s.Get(ctx, "ai-definitely-missing")
	assert.ErrorIs(t, err, ErrNotStored)
}
