package quotes

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quotebuy/internal/database"
	"github.com/mrlokans/quotebuy/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "quotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB)
}

func insertQuote(t *testing.T, repo *Repository, text, author string) *entities.Quote {
	t.Helper()
	q, err := repo.Insert(context.Background(), NewQuote{
		Text:       text,
		Normalized: text,
		Author:     author,
		Created:    time.Now(),
	})
	require.NoError(t, err)
	return q
}

func TestRepository_Insert(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	quote, err := repo.Insert(ctx, NewQuote{
		Text:       `<span class="spoiler">secret</span>`,
		Normalized: "secret",
		Author:     "Ada",
		Created:    created,
	})
	require.NoError(t, err)
	assert.NotZero(t, quote.ID)
	assert.Equal(t, Digest("secret"), quote.Digest)

	stored, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, `<span class="spoiler">secret</span>`, stored.Text)
	assert.Equal(t, "Ada", stored.Author)
	assert.True(t, created.Equal(stored.Created))
}

func TestRepository_Insert_Duplicate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	insertQuote(t, repo, "only once", "Ada")

	_, err := repo.Insert(ctx, NewQuote{
		Text:       "<strong>only once</strong>",
		Normalized: "only once",
		Author:     "Bob",
		Created:    time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Insert_ConcurrentDuplicates(t *testing.T) {
	repo := setupTestRepo(t)

	const writers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
		others     []error
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Insert(context.Background(), NewQuote{
				Text:       "race",
				Normalized: "race",
				Author:     fmt.Sprintf("writer-%d", i),
				Created:    time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == ErrDuplicate:
				duplicates++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, duplicates)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	quote, err := repo.GetByID(context.Background(), 999)

	assert.NoError(t, err)
	assert.Nil(t, quote)
}

func TestRepository_ExistsNormalized(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	insertQuote(t, repo, "present", "Ada")

	exists, err := repo.ExistsNormalized(ctx, "present")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsNormalized(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_GetByAuthor(t *testing.T) {
	repo := setupTestRepo(t)

	first := insertQuote(t, repo, "first", "Ada")
	insertQuote(t, repo, "other", "Bob")
	second := insertQuote(t, repo, "second", "Ada")

	quotes, err := repo.GetByAuthor(context.Background(), "Ada")

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, first.ID, quotes[0].ID)
	assert.Equal(t, second.ID, quotes[1].ID)
}

func TestRepository_GetAllAndCountDistinctAuthors(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	insertQuote(t, repo, "one", "Ada")
	insertQuote(t, repo, "two", "Bob")
	insertQuote(t, repo, "three", "Ada")
	insertQuote(t, repo, "four", entities.DefaultAuthor)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "one", all[0].Text)
	assert.Equal(t, "four", all[3].Text)

	authors, err := repo.CountDistinctAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), authors)
}

func TestRepository_GetRandom(t *testing.T) {
	t.Run("empty store returns nothing", func(t *testing.T) {
		repo := setupTestRepo(t)

		quote, err := repo.GetRandom(context.Background())

		assert.NoError(t, err)
		assert.Nil(t, quote)
	})

	t.Run("draws are approximately uniform", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		ids := make([]uint, 0, 4)
		for _, text := range []string{"a", "b", "c", "d"} {
			ids = append(ids, insertQuote(t, repo, text, "Ada").ID)
		}

		const draws = 4000
		counts := make(map[uint]int)
		for i := 0; i < draws; i++ {
			quote, err := repo.GetRandom(ctx)
			require.NoError(t, err)
			require.NotNil(t, quote)
			counts[quote.ID]++
		}

		expected := draws / len(ids)
		for _, id := range ids {
			assert.InDelta(t, expected, counts[id], float64(expected)*0.3, "quote %d drawn %d times", id, counts[id])
		}
	})
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest("anything"), 64)
	assert.Equal(t, Digest("same"), Digest("same"))
	assert.NotEqual(t, Digest("same"), Digest("Same"))
}
