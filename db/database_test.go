package db

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"empowerher/logger"
	"empowerher/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "empowerher_"

// failingBackend wraps a MemoryBackend and fails Save on demand.
type failingBackend struct {
	*MemoryBackend
	mu       sync.Mutex
	failSave bool
	failLoad bool
	saves    int
}

func (f *failingBackend) Save(ctx context.Context, entries map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("quota exceeded")
	}
	f.saves++
	return f.MemoryBackend.Save(ctx, entries)
}

func (f *failingBackend) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failLoad
	f.mu.Unlock()
	if fail {
		return nil, errors.New("disk on fire")
	}
	return f.MemoryBackend.Load(ctx, key)
}

// Helper function to set up a store over an in-memory backend
func setupTestStore(t *testing.T) (*Store, *failingBackend) {
	t.Helper()
	backend := &failingBackend{MemoryBackend: NewMemoryBackend()}
	return NewStore(backend, testPrefix, logger.NewNop()), backend
}

// readCollection decodes what the backend holds for entityType.
func readCollection(t *testing.T, b Backend, entityType string) []models.Record {
	t.Helper()
	raw, err := b.Load(context.Background(), testPrefix+entityType)
	require.NoError(t, err)
	var out []models.Record
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)

	first, err := store.Create(ctx, "Widget", map[string]any{"name": "a", "n": 1})
	require.NoError(t, err)
	second, err := store.Create(ctx, "Widget", map[string]any{"name": "b", "n": 2})
	require.NoError(t, err)

	assert.Len(t, first.ID(), 32)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, first[models.FieldCreatedAt], first[models.FieldUpdatedAt])
	_, err = time.Parse(time.RFC3339Nano, first[models.FieldCreatedAt].(string))
	assert.NoError(t, err)

	list, err := store.List(ctx, "Widget")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0]["name"])
	assert.Equal(t, "b", list[1]["name"])
	// Values are stored JSON-normalized.
	assert.Equal(t, float64(1), list[0]["n"])

	persisted := readCollection(t, backend, "Widget")
	assert.Equal(t, list, persisted)
}

func TestStore_CreateIgnoresReservedFields(t *testing.T) {
	store, _ := setupTestStore(t)
	rec, err := store.Create(context.Background(), "Widget", map[string]any{
		"id": "mine", "createdAt": "yesterday", "updatedAt": "never", "name": "x",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "mine", rec.ID())
	assert.NotEqual(t, "yesterday", rec[models.FieldCreatedAt])
	assert.Equal(t, "x", rec["name"])
}

func TestStore_CreateUniqueIDsUnderRapidCalls(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(NewMemoryBackend(), testPrefix, logger.NewNop(), WithClock(func() time.Time { return frozen }))

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		rec, err := store.Create(ctx, "Tick", map[string]any{"i": i})
		require.NoError(t, err)
		require.False(t, seen[rec.ID()], "duplicate id")
		seen[rec.ID()] = true
	}
}

func TestStore_ListAbsentIsEmpty(t *testing.T) {
	store, backend := setupTestStore(t)
	list, err := store.List(context.Background(), "Nothing")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Zero(t, backend.saves, "reads never write")
}

func TestStore_Filter(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	for _, m := range []string{"legal_rights", "self_defense", "legal_rights"} {
		_, err := store.Create(ctx, "P", map[string]any{"module_type": m})
		require.NoError(t, err)
	}

	got, err := store.Filter(ctx, "P", FieldEquals("module_type", "legal_rights"))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := store.Filter(ctx, "P", FieldEquals("module_type", "voice_assertiveness"))
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.List(ctx, "P")
	require.NoError(t, err)
	assert.Len(t, all, 3, "filter never mutates")
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore(NewMemoryBackend(), testPrefix, logger.NewNop(), WithClock(func() time.Time { return now }))

	rec, err := store.Create(ctx, "W", map[string]any{"a": 1, "b": "keep"})
	require.NoError(t, err)

	now = now.Add(time.Minute)
	updated, found, err := store.Update(ctx, "W", rec.ID(), map[string]any{"a": 2, "c": true, "id": "hijack"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.ID(), updated.ID())
	assert.Equal(t, float64(2), updated["a"])
	assert.Equal(t, "keep", updated["b"])
	assert.Equal(t, true, updated["c"])
	assert.Equal(t, rec[models.FieldCreatedAt], updated[models.FieldCreatedAt])
	assert.NotEqual(t, rec[models.FieldUpdatedAt], updated[models.FieldUpdatedAt])
}

func TestStore_UpdateMissingIsNoOp(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)
	_, err := store.Create(ctx, "W", map[string]any{"a": 1})
	require.NoError(t, err)
	saves := backend.saves

	rec, found, err := store.Update(ctx, "W", "nope", map[string]any{"a": 2})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
	assert.Equal(t, saves, backend.saves, "no write for a missing id")
}

func TestStore_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)
	a, _ := store.Create(ctx, "W", map[string]any{"n": "a"})
	b, _ := store.Create(ctx, "W", map[string]any{"n": "b"})

	require.NoError(t, store.Delete(ctx, "W", a.ID()))
	require.NoError(t, store.Delete(ctx, "W", a.ID()))
	require.NoError(t, store.Delete(ctx, "Empty", "whatever"))

	list, err := store.List(ctx, "W")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID(), list[0].ID())
	assert.Empty(t, readCollection(t, backend, "Empty"), "delete on absent type still persists")
}

func TestStore_Upsert(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	match := AllOf(FieldEquals("module_type", "legal_rights"), FieldEquals("lesson_id", "l1"))

	first, err := store.Upsert(ctx, "TP", match, map[string]any{"module_type": "legal_rights", "lesson_id": "l1", "pct": 50})
	require.NoError(t, err)
	second, err := store.Upsert(ctx, "TP", match, map[string]any{"module_type": "legal_rights", "lesson_id": "l1", "pct": 100})
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	list, _ := store.List(ctx, "TP")
	require.Len(t, list, 1)
	assert.Equal(t, float64(100), list[0]["pct"])

	// Same fields again: still one record.
	_, err = store.Upsert(ctx, "TP", match, map[string]any{"module_type": "legal_rights", "lesson_id": "l1", "pct": 100})
	require.NoError(t, err)
	list, _ = store.List(ctx, "TP")
	assert.Len(t, list, 1)
}

func TestStore_UpsertFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	a, _ := store.Create(ctx, "D", map[string]any{"k": "dup", "v": 1})
	b, _ := store.Create(ctx, "D", map[string]any{"k": "dup", "v": 2})

	got, err := store.Upsert(ctx, "D", FieldEquals("k", "dup"), map[string]any{"v": 9})
	require.NoError(t, err)
	assert.Equal(t, a.ID(), got.ID())

	untouched, err := store.Get(ctx, "D", b.ID())
	require.NoError(t, err)
	assert.Equal(t, float64(2), untouched["v"])
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	rec, _ := store.Create(ctx, "W", map[string]any{"x": 1})

	got, err := store.Get(ctx, "W", rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = store.Get(ctx, "W", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReturnedRecordsAreSnapshots(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)
	rec, err := store.Create(ctx, "W", map[string]any{"tags": []string{"a"}, "nested": map[string]any{"k": "v"}})
	require.NoError(t, err)

	rec["tags"].([]any)[0] = "mutated"
	rec["nested"].(map[string]any)["k"] = "mutated"
	rec["extra"] = true

	list, _ := store.List(ctx, "W")
	list[0]["also"] = 1

	fresh, err := store.Get(ctx, "W", rec.ID())
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, fresh["tags"])
	assert.Equal(t, "v", fresh["nested"].(map[string]any)["k"])
	assert.NotContains(t, fresh, "extra")
	assert.NotContains(t, fresh, "also")
}

func TestStore_FailedSaveLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)
	rec, err := store.Create(ctx, "W", map[string]any{"v": 1})
	require.NoError(t, err)
	before := readCollection(t, backend, "W")

	backend.failSave = true

	_, err = store.Create(ctx, "W", map[string]any{"v": 2})
	assert.Error(t, err)
	_, _, err = store.Update(ctx, "W", rec.ID(), map[string]any{"v": 3})
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "W", rec.ID()))

	list, err := store.List(ctx, "W")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, float64(1), list[0]["v"])
	assert.Equal(t, before, readCollection(t, backend, "W"))
}

func TestStore_UnserializableFieldsFail(t *testing.T) {
	store, backend := setupTestStore(t)
	_, err := store.Create(context.Background(), "W", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
	assert.Zero(t, backend.saves)
}

func TestStore_LoadErrorPropagates(t *testing.T) {
	store, backend := setupTestStore(t)
	backend.failLoad = true

	_, err := store.List(context.Background(), "W")
	assert.Error(t, err)
	_, err = store.Create(context.Background(), "W", map[string]any{})
	assert.Error(t, err)
}

func TestStore_CorruptCollectionIsAnError(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Save(context.Background(), map[string][]byte{testPrefix + "W": []byte("{not json")}))
	store := NewStore(backend, testPrefix, logger.NewNop())

	_, err := store.List(context.Background(), "W")
	assert.Error(t, err)
}

func TestStore_ReadsPersistedData(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	first := NewStore(backend, testPrefix, logger.NewNop())
	rec, err := first.Create(ctx, "W", map[string]any{"v": "persisted"})
	require.NoError(t, err)

	second := NewStore(backend, testPrefix, logger.NewNop())
	got, err := second.Get(ctx, "W", rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "persisted", got["v"])
}

func TestStore_Transact(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)

	err := store.Transact(ctx, func(tx *Tx) error {
		a, err := tx.Create(ctx, "A", map[string]any{"v": 1})
		if err != nil {
			return err
		}
		if _, err := tx.Create(ctx, "B", map[string]any{"ref": a.ID()}); err != nil {
			return err
		}
		// The tx sees its own writes.
		list, err := tx.List(ctx, "A")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		// The store does not, until commit.
		outside, err := store.List(ctx, "A")
		require.NoError(t, err)
		assert.Empty(t, outside)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.saves, "one save for the whole unit of work")

	a, _ := store.List(ctx, "A")
	b, _ := store.List(ctx, "B")
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].ID(), b[0]["ref"])
}

func TestStore_TransactRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)

	boom := errors.New("boom")
	err := store.Transact(ctx, func(tx *Tx) error {
		_, err := tx.Create(ctx, "A", map[string]any{"v": 1})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, backend.saves)

	list, err := store.List(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_TransactSaveFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)
	backend.failSave = true

	err := store.Transact(ctx, func(tx *Tx) error {
		if _, err := tx.Create(ctx, "A", map[string]any{}); err != nil {
			return err
		}
		_, err := tx.Create(ctx, "B", map[string]any{})
		return err
	})
	require.Error(t, err)

	backend.failSave = false
	a, _ := store.List(ctx, "A")
	b, _ := store.List(ctx, "B")
	assert.Empty(t, a)
	assert.Empty(t, b)
}

func TestStore_ReadOnlyTransactDoesNotSave(t *testing.T) {
	ctx := context.Background()
	store, backend := setupTestStore(t)
	require.NoError(t, store.Transact(ctx, func(tx *Tx) error {
		_, err := tx.List(ctx, "A")
		return err
	}))
	assert.Zero(t, backend.saves)
}

func TestStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Create(ctx, "C", map[string]any{"i": i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx, "C")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
