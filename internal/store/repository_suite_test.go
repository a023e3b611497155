package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniqueCode returns an alphanumeric code unlikely to exist in a shared backend.
func uniqueCode(prefix string) shortener.Code {
	id := uuid.New()

	return shortener.Code(fmt.Sprintf("%s%x", prefix, id[:6]))
}

func newRecord(code shortener.Code) *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:        code,
		OriginalURL: "https://example.com/" + string(code),
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// runRepositorySuite checks the behavior every shortener.Repository shares.
func runRepositorySuite(t *testing.T, repo shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("insert assigns id and zero click count", func(t *testing.T) {
		record := newRecord(uniqueCode("ins"))
		record.ClickCount = 7

		saved, err := repo.Insert(ctx, record)

		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, record.Code, saved.Code)
		assert.Equal(t, record.OriginalURL, saved.OriginalURL)
		assert.Equal(t, int64(0), saved.ClickCount)
		assert.True(t, record.CreatedAt.Equal(saved.CreatedAt))
	})

	t.Run("find by code returns inserted record", func(t *testing.T) {
		record := newRecord(uniqueCode("find"))
		_, err := repo.Insert(ctx, record)
		require.NoError(t, err)

		found, err := repo.FindByCode(ctx, record.Code)

		require.NoError(t, err)
		assert.Equal(t, record.OriginalURL, found.OriginalURL)
	})

	t.Run("find by code returns ErrNotFound when absent", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, uniqueCode("none"))

		assert.Nil(t, found)
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("duplicate code is rejected and original kept", func(t *testing.T) {
		record := newRecord(uniqueCode("dup"))
		_, err := repo.Insert(ctx, record)
		require.NoError(t, err)

		other := newRecord(record.Code)
		other.OriginalURL = "https://other.example.com"

		_, err = repo.Insert(ctx, other)

		require.ErrorIs(t, err, shortener.ErrDuplicateCode)

		found, err := repo.FindByCode(ctx, record.Code)
		require.NoError(t, err)
		assert.Equal(t, record.OriginalURL, found.OriginalURL)
	})

	t.Run("invalid record is rejected", func(t *testing.T) {
		record := newRecord("")

		_, err := repo.Insert(ctx, record)

		require.ErrorIs(t, err, shortener.ErrInvalidRecord)
	})

	t.Run("increment and fetch returns post-increment count", func(t *testing.T) {
		record := newRecord(uniqueCode("inc"))
		_, err := repo.Insert(ctx, record)
		require.NoError(t, err)

		first, err := repo.IncrementAndFetch(ctx, record.Code)
		require.NoError(t, err)
		second, err := repo.IncrementAndFetch(ctx, record.Code)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.ClickCount)
		assert.Equal(t, int64(2), second.ClickCount)
		assert.Equal(t, record.OriginalURL, second.OriginalURL)
	})

	t.Run("increment and fetch returns ErrNotFound when absent", func(t *testing.T) {
		_, err := repo.IncrementAndFetch(ctx, uniqueCode("none"))

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("find analytics does not count", func(t *testing.T) {
		record := newRecord(uniqueCode("ana"))
		_, err := repo.Insert(ctx, record)
		require.NoError(t, err)

		_, err = repo.IncrementAndFetch(ctx, record.Code)
		require.NoError(t, err)

		for range 3 {
			stats, err := repo.FindAnalytics(ctx, record.Code)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.ClickCount)
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		const n = 50

		record := newRecord(uniqueCode("conc"))
		_, err := repo.Insert(ctx, record)
		require.NoError(t, err)

		var wg sync.WaitGroup

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := repo.IncrementAndFetch(ctx, record.Code)
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		stats, err := repo.FindAnalytics(ctx, record.Code)
		require.NoError(t, err)
		assert.Equal(t, int64(n), stats.ClickCount)
	})

	t.Run("concurrent inserts of one code admit exactly one", func(t *testing.T) {
		const n = 20

		code := uniqueCode("race")

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			succeeded  int
			duplicates int
		)

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := repo.Insert(ctx, newRecord(code))

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					succeeded++
				case assert.ErrorIs(t, err, shortener.ErrDuplicateCode):
					duplicates++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, n-1, duplicates)
	})
}
