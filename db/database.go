package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"empowerher/logger"
	"empowerher/models"
	"empowerher/utils"
)

// TimestampLayout is RFC 3339 UTC with fixed-width milliseconds, so stamps
// sort lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Predicate selects records for Filter and Upsert.
type Predicate func(models.Record) bool

// Records is the CRUD surface shared by *Store and *Tx.
type Records interface {
	Create(ctx context.Context, entityType string, fields map[string]any) (models.Record, error)
	List(ctx context.Context, entityType string) ([]models.Record, error)
	Filter(ctx context.Context, entityType string, pred Predicate) ([]models.Record, error)
	Get(ctx context.Context, entityType, id string) (models.Record, error)
	Update(ctx context.Context, entityType, id string, partial map[string]any) (models.Record, bool, error)
	Delete(ctx context.Context, entityType, id string) error
	Upsert(ctx context.Context, entityType string, pred Predicate, fields map[string]any) (models.Record, error)
}

var (
	_ Records = (*Store)(nil)
	_ Records = (*Tx)(nil)
)

// Store holds one ordered collection per entity type on top of a Backend.
// Collections are cached after first load; every write goes through to the
// backend before the cache is touched, so a failed write changes nothing.
type Store struct {
	mu      sync.RWMutex // guards cache
	writeMu sync.Mutex   // one unit of work at a time
	backend Backend
	prefix  string
	log     *logger.Logger
	now     func() time.Time
	cache   map[string][]models.Record
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore wraps backend. Keys are "<prefix><entity type>".
func NewStore(backend Backend, prefix string, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  prefix,
		log:     log.With("component", "store"),
		now:     time.Now,
		cache:   make(map[string][]models.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key used for entityType.
func (s *Store) Key(entityType string) string {
	return s.prefix + entityType
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// collection returns the cached slice for entityType, loading it on first use.
// The returned slice and its records must be treated as read-only.
func (s *Store) collection(ctx context.Context, entityType string) ([]models.Record, error) {
	s.mu.RLock()
	records, ok := s.cache[entityType]
	s.mu.RUnlock()
	if ok {
		return records, nil
	}

	raw, err := s.backend.Load(ctx, s.Key(entityType))
	switch {
	case errors.Is(err, ErrKeyNotFound):
		records = []models.Record{}
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", entityType, err)
	default:
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode %s collection: %w", entityType, err)
		}
		if records == nil {
			records = []models.Record{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another reader may have loaded it meanwhile; keep the first copy.
	if cached, ok := s.cache[entityType]; ok {
		return cached, nil
	}
	s.cache[entityType] = records
	return records, nil
}

// Transact runs fn as one unit of work. Every collection fn changes is saved
// with a single Backend.Save after fn returns nil. If fn or the save fails,
// neither the backend nor the cache changes.
func (s *Store) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx := &Tx{store: s, staged: make(map[string][]models.Record), dirty: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

func (s *Store) Create(ctx context.Context, entityType string, fields map[string]any) (models.Record, error) {
	var out models.Record
	err := s.Transact(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Create(ctx, entityType, fields)
		return err
	})
	return out, err
}

func (s *Store) List(ctx context.Context, entityType string) ([]models.Record, error) {
	records, err := s.collection(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return cloneAll(records, nil), nil
}

func (s *Store) Filter(ctx context.Context, entityType string, pred Predicate) ([]models.Record, error) {
	records, err := s.collection(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return cloneAll(records, pred), nil
}

func (s *Store) Get(ctx context.Context, entityType, id string) (models.Record, error) {
	records, err := s.collection(ctx, entityType)
	if err != nil {
		return nil, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i].Clone(), nil
	}
	return nil, ErrNotFound
}

func (s *Store) Update(ctx context.Context, entityType, id string, partial map[string]any) (models.Record, bool, error) {
	var (
		out   models.Record
		found bool
	)
	err := s.Transact(ctx, func(tx *Tx) error {
		var err error
		out, found, err = tx.Update(ctx, entityType, id, partial)
		return err
	})
	return out, found, err
}

func (s *Store) Delete(ctx context.Context, entityType, id string) error {
	return s.Transact(ctx, func(tx *Tx) error {
		return tx.Delete(ctx, entityType, id)
	})
}

func (s *Store) Upsert(ctx context.Context, entityType string, pred Predicate, fields map[string]any) (models.Record, error) {
	var out models.Record
	err := s.Transact(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Upsert(ctx, entityType, pred, fields)
		return err
	})
	return out, err
}

// Tx is a unit of work over staged copies of the collections it touches.
// A Tx is only valid inside the Transact callback that received it.
type Tx struct {
	store  *Store
	staged map[string][]models.Record
	dirty  map[string]bool
}

// working returns the staged slice for entityType. Records inside are shared
// with the cache and replaced, never mutated.
func (tx *Tx) working(ctx context.Context, entityType string) ([]models.Record, error) {
	if records, ok := tx.staged[entityType]; ok {
		return records, nil
	}
	records, err := tx.store.collection(ctx, entityType)
	if err != nil {
		return nil, err
	}
	staged := make([]models.Record, len(records))
	copy(staged, records)
	tx.staged[entityType] = staged
	return staged, nil
}

func (tx *Tx) stage(entityType string, records []models.Record) {
	tx.staged[entityType] = records
	tx.dirty[entityType] = true
}

func (tx *Tx) timestamp() string {
	return tx.store.now().UTC().Format(TimestampLayout)
}

func (tx *Tx) Create(ctx context.Context, entityType string, fields map[string]any) (models.Record, error) {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return nil, err
	}
	rec, err := copyFields(fields)
	if err != nil {
		return nil, err
	}
	now := tx.timestamp()
	rec[models.FieldID] = utils.GenerateDashlessUUID()
	rec[models.FieldCreatedAt] = now
	rec[models.FieldUpdatedAt] = now

	tx.stage(entityType, append(records, rec))
	return rec.Clone(), nil
}

func (tx *Tx) List(ctx context.Context, entityType string) ([]models.Record, error) {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return cloneAll(records, nil), nil
}

func (tx *Tx) Filter(ctx context.Context, entityType string, pred Predicate) ([]models.Record, error) {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return nil, err
	}
	return cloneAll(records, pred), nil
}

func (tx *Tx) Get(ctx context.Context, entityType, id string) (models.Record, error) {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return nil, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i].Clone(), nil
	}
	return nil, ErrNotFound
}

// Update merges partial over the record with id. A missing id is reported
// through the bool and writes nothing.
func (tx *Tx) Update(ctx context.Context, entityType, id string, partial map[string]any) (models.Record, bool, error) {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return nil, false, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, false, nil
	}
	updated, err := tx.merge(records[i], partial)
	if err != nil {
		return nil, false, err
	}
	next := make([]models.Record, len(records))
	copy(next, records)
	next[i] = updated
	tx.stage(entityType, next)
	return updated.Clone(), true, nil
}

// Delete removes the record with id. Deleting a missing id still saves the collection.
func (tx *Tx) Delete(ctx context.Context, entityType, id string) error {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return err
	}
	next := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.ID() != id {
			next = append(next, r)
		}
	}
	tx.stage(entityType, next)
	return nil
}

// Upsert updates the first record matching pred, or creates one from fields.
func (tx *Tx) Upsert(ctx context.Context, entityType string, pred Predicate, fields map[string]any) (models.Record, error) {
	records, err := tx.working(ctx, entityType)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if pred(r.Clone()) {
			updated, _, err := tx.Update(ctx, entityType, r.ID(), fields)
			return updated, err
		}
	}
	return tx.Create(ctx, entityType, fields)
}

func (tx *Tx) merge(existing models.Record, partial map[string]any) (models.Record, error) {
	fields, err := copyFields(partial)
	if err != nil {
		return nil, err
	}
	merged := existing.Clone()
	for k, v := range fields {
		merged[k] = v
	}
	merged[models.FieldUpdatedAt] = tx.timestamp()
	return merged, nil
}

func (tx *Tx) commit(ctx context.Context) error {
	if len(tx.dirty) == 0 {
		return nil
	}
	entries := make(map[string][]byte, len(tx.dirty))
	for entityType := range tx.dirty {
		raw, err := json.Marshal(tx.staged[entityType])
		if err != nil {
			return fmt.Errorf("encode %s collection: %w", entityType, err)
		}
		entries[tx.store.Key(entityType)] = raw
	}
	if err := tx.store.backend.Save(ctx, entries); err != nil {
		tx.store.log.Error("save failed, nothing committed", "collections", len(entries), "error", err)
		return fmt.Errorf("save: %w", err)
	}

	tx.store.mu.Lock()
	for entityType := range tx.dirty {
		tx.store.cache[entityType] = tx.staged[entityType]
	}
	tx.store.mu.Unlock()
	return nil
}

// copyFields deep-copies caller fields through JSON so stored values always
// have the types a reload produces, and drops the reserved ones.
func copyFields(fields map[string]any) (models.Record, error) {
	rec := models.Record{}
	if len(fields) > 0 {
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encode fields: %w", err)
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode fields: %w", err)
		}
	}
	delete(rec, models.FieldID)
	delete(rec, models.FieldCreatedAt)
	delete(rec, models.FieldUpdatedAt)
	return rec, nil
}

func indexOf(records []models.Record, id string) int {
	for i, r := range records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func cloneAll(records []models.Record, pred Predicate) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		c := r.Clone()
		if pred == nil || pred(c) {
			out = append(out, c)
		}
	}
	return out
}
