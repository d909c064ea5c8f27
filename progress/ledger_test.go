package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"empowerher/db"
	"empowerher/logger"
	"empowerher/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend counts saves and fails on demand.
type countingBackend struct {
	*db.MemoryBackend
	mu          sync.Mutex
	saves       int
	failSave    bool
	failLoadKey string
}

func (b *countingBackend) Save(ctx context.Context, entries map[string][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSave {
		return errors.New("disk full")
	}
	b.saves++
	return b.MemoryBackend.Save(ctx, entries)
}

func (b *countingBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if b.failLoadKey != "" && key == b.failLoadKey {
		return nil, errors.New("read error")
	}
	return b.MemoryBackend.Load(ctx, key)
}

func (b *countingBackend) saveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, 0, n)
}

const testPrefix = "empowerher_"

// setupLedger returns a ledger on a fresh in-memory store, with the clock at
// 2024-03-10 09:00 UTC.
func setupLedger(t *testing.T) (*db.Store, *Ledger, *fakeClock, *countingBackend) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	backend := &countingBackend{MemoryBackend: db.NewMemoryBackend()}
	store := db.NewStore(backend, testPrefix, logger.NewNop(), db.WithClock(clock.Now))
	evaluator := NewEvaluator(DefaultRules(), logger.NewNop())
	ledger := NewLedger(evaluator, logger.NewNop(), WithClock(clock.Now), WithLocation(time.UTC))
	return store, ledger, clock, backend
}

func TestLevel(t *testing.T) {
	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{1, 1},
		{199, 1},
		{200, 2},
		{399, 2},
		{400, 3},
		{1115, 6},
		{-1, 0},
		{-200, 0},
		{-201, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.points), "Level(%d)", tt.points)
	}

	prev := Level(-1000)
	for p := -999; p <= 5000; p += 7 {
		cur := Level(p)
		require.GreaterOrEqual(t, cur, prev, "level decreased at %d", p)
		prev = cur
	}
}

func TestNextStreak(t *testing.T) {
	const today, yesterday = "2024-03-10", "2024-03-09"
	tests := []struct {
		name    string
		last    string
		current int
		want    int
	}{
		{"same day keeps streak", today, 4, 4},
		{"yesterday continues", yesterday, 4, 5},
		{"gap resets", "2024-03-07", 9, 1},
		{"never active starts at one", "", 0, 1},
		{"future date resets", "2024-03-11", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.last, today, yesterday, tt.current))
		})
	}
}

func TestLedger_UninitializedIsNoop(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, backend := setupLedger(t)

	stats, err := ledger.UpdateUserStats(ctx, store, 50, nil)
	require.NoError(t, err)
	assert.Nil(t, stats)
	assert.Zero(t, backend.saveCount(), "nothing written")

	got, err := ledger.UserStats(ctx, store)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLedger_EnsureUserStatsCreatesOnce(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, _ := setupLedger(t)

	first, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, 0, first.TotalPoints)
	assert.Equal(t, "", first.LastActivity)
	assert.Empty(t, first.BadgesEarned)
	assert.NotEmpty(t, first.ID)

	second, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.List(ctx, models.EntityUserStats)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLedger_EnsureUserStatsConcurrentInsideTransact(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, _ := setupLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Transact(ctx, func(tx *db.Tx) error {
				_, err := ledger.EnsureUserStats(ctx, tx)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.List(ctx, models.EntityUserStats)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLedger_WorkedScenario(t *testing.T) {
	ctx := context.Background()
	store, ledger, clock, _ := setupLedger(t)
	_, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)

	// Day D
	stats, err := ledger.UpdateUserStats(ctx, store, 100, nil)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 100, stats.TotalPoints)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, "2024-03-10", stats.LastActivity)
	assert.Equal(t, []string{"century"}, stats.BadgesEarned)

	// Day D+1
	clock.advanceDays(1)
	stats, err = ledger.UpdateUserStats(ctx, store, 15, nil)
	require.NoError(t, err)
	assert.Equal(t, 115, stats.TotalPoints)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, []string{"century"}, stats.BadgesEarned)

	// Day D+3, D+2 skipped
	clock.advanceDays(2)
	stats, err = ledger.UpdateUserStats(ctx, store, 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, 1115, stats.TotalPoints)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Equal(t, 6, stats.Level)
	assert.Equal(t, "2024-03-13", stats.LastActivity)
	assert.Equal(t, []string{"century", "high_achiever"}, stats.BadgesEarned)

	persisted, err := ledger.UserStats(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalPoints, persisted.TotalPoints)
	assert.Equal(t, stats.BadgesEarned, persisted.BadgesEarned)
}

func TestLedger_SameDayKeepsStreak(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, _ := setupLedger(t)
	_, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)

	first, err := ledger.UpdateUserStats(ctx, store, 10, nil)
	require.NoError(t, err)
	second, err := ledger.UpdateUserStats(ctx, store, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, 20, second.TotalPoints)
}

func TestLedger_LongestNeverBelowCurrent(t *testing.T) {
	ctx := context.Background()
	store, ledger, clock, _ := setupLedger(t)
	_, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)

	gaps := []int{0, 1, 1, 0, 1, 3, 1, 1, 1, 1, 0, 5, 1}
	longestSeen := 0
	for i, gap := range gaps {
		clock.advanceDays(gap)
		stats, err := ledger.UpdateUserStats(ctx, store, 5, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, stats.LongestStreak, stats.CurrentStreak, "step %d", i)
		require.GreaterOrEqual(t, stats.LongestStreak, longestSeen, "longest shrank at step %d", i)
		longestSeen = stats.LongestStreak
	}
	assert.Equal(t, 5, longestSeen)
}

func TestLedger_StreakUsesConfiguredLocation(t *testing.T) {
	ctx := context.Background()
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2024-03-10 20:00 UTC is already 2024-03-11 in Tokyo.
	clock := &fakeClock{t: time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)}
	store := db.NewStore(db.NewMemoryBackend(), testPrefix, logger.NewNop())
	ledger := NewLedger(nil, logger.NewNop(), WithClock(clock.Now), WithLocation(tokyo))

	_, err := store.Create(ctx, models.EntityUserStats, map[string]any{
		"total_points": 0, "current_streak": 1, "longest_streak": 1, "level": 1,
		"badges_earned": []string{}, "last_activity": "2024-03-10",
	})
	require.NoError(t, err)

	stats, err := ledger.UpdateUserStats(ctx, store, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", stats.LastActivity)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestLedger_ExtraFieldsMergedVerbatim(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, _ := setupLedger(t)
	_, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)

	stats, err := ledger.UpdateUserStats(ctx, store, 0, map[string]any{
		"modules_completed": 2,
		"favorite_module":   "self_defense",
		"id":                "hijacked",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ModulesCompleted)
	assert.NotEqual(t, "hijacked", stats.ID)

	all, err := store.List(ctx, models.EntityUserStats)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "self_defense", all[0]["favorite_module"])
}

func TestLedger_ExtraBadgesAreUnioned(t *testing.T) {
	tests := []struct {
		name  string
		extra any
		want  []string
	}{
		{"empty list keeps earned", []any{}, []string{"streak_3"}},
		{"nil keeps earned", nil, []string{"streak_3"}},
		{"string slice adds", []string{"custom"}, []string{"streak_3", "custom"}},
		{"decoded json adds without duplicates", []any{"custom", "streak_3"}, []string{"streak_3", "custom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, ledger, clock, _ := setupLedger(t)
			_, err := ledger.EnsureUserStats(ctx, store)
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err := ledger.UpdateUserStats(ctx, store, 1, nil)
				require.NoError(t, err)
				clock.advanceDays(1)
			}
			clock.advanceDays(5)

			stats, err := ledger.UpdateUserStats(ctx, store, 1, map[string]any{"badges_earned": tt.extra})
			require.NoError(t, err)
			assert.Equal(t, 1, stats.CurrentStreak)
			assert.Equal(t, tt.want, stats.BadgesEarned)

			persisted, err := ledger.UserStats(ctx, store)
			require.NoError(t, err)
			assert.Equal(t, tt.want, persisted.BadgesEarned)
		})
	}
}

func TestLedger_ExtraBadgesRejectsNonStrings(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, _ := setupLedger(t)
	_, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)

	for _, bad := range []any{"century", []any{"century", 7}, map[string]any{"a": "b"}} {
		_, err := ledger.UpdateUserStats(ctx, store, 10, map[string]any{"badges_earned": bad})
		assert.ErrorIs(t, err, ErrInvalidInput, "%v", bad)
	}

	stats, err := ledger.UserStats(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPoints)
}

func TestLedger_FirstRecordIsTheSingleton(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, _ := setupLedger(t)

	first, err := store.Create(ctx, models.EntityUserStats, map[string]any{"total_points": 10, "level": 1})
	require.NoError(t, err)
	_, err = store.Create(ctx, models.EntityUserStats, map[string]any{"total_points": 999, "level": 5})
	require.NoError(t, err)

	stats, err := ledger.UpdateUserStats(ctx, store, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), stats.ID)
	assert.Equal(t, 15, stats.TotalPoints)
}

func TestLedger_SaveFailurePropagates(t *testing.T) {
	ctx := context.Background()
	store, ledger, _, backend := setupLedger(t)
	_, err := ledger.EnsureUserStats(ctx, store)
	require.NoError(t, err)

	backend.mu.Lock()
	backend.failSave = true
	backend.mu.Unlock()

	_, err = ledger.UpdateUserStats(ctx, store, 100, nil)
	require.Error(t, err)

	stats, err := ledger.UserStats(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalPoints, "failed write left the previous state")
}
