// Package storage persists the full thesis and message collections as two
// JSON values in a capacity-limited pebble key/value store. Writes replace
// the whole collection at once; there is no per-record persistence.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/pebble"

	"thesis-management-api/models"
)

var (
	// ErrStorageExhausted means the capacity ceiling was hit even after
	// pruning superseded version artifacts. The attempted write is lost and
	// the persisted content is unchanged.
	ErrStorageExhausted = errors.New("storage capacity exhausted")

	// ErrConflict means another writer saved the collection after the caller
	// loaded it. The caller should re-load and re-apply its change.
	ErrConflict = errors.New("revision conflict")
)

// Event identifies which collection changed on a successful write.
type Event string

const (
	EventThesesChanged   Event = "theses-changed"
	EventMessagesChanged Event = "messages-changed"
)

// Config carries everything the store needs; there is no package-level state.
type Config struct {
	// Path is the pebble database directory.
	Path string
	// CapacityBytes is the shared byte ceiling for both collections'
	// serialized values. Zero means no ceiling.
	CapacityBytes int64
	// ThesesKey and MessagesKey default to "theses" and "messages".
	ThesesKey   string
	MessagesKey string
}

func (c Config) withDefaults() Config {
	if c.ThesesKey == "" {
		c.ThesesKey = "theses"
	}
	if c.MessagesKey == "" {
		c.MessagesKey = "messages"
	}
	return c
}

// thesesDoc is the persisted value at the theses key. The revision stamp
// makes concurrent-writer races detectable: SaveTheses rejects a write whose
// expected revision no longer matches.
type thesesDoc struct {
	Revision uint64                `json:"revision"`
	Records  []models.ThesisRecord `json:"records"`
}

// Store owns the pebble handle and the observer list.
type Store struct {
	cfg Config

	mu sync.Mutex
	db *pebble.DB

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObsID int
}

// Open opens (or creates) the pebble database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	db, err := pebble.Open(cfg.Path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open record store at %s: %w", cfg.Path, err)
	}
	return &Store{
		cfg:       cfg,
		db:        db,
		observers: make(map[int]func(Event)),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Subscribe registers a callback invoked after every successful write. The
// returned function unregisters it. Callbacks run synchronously on the
// writing goroutine and should re-read the collection they care about.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.obsMu.Lock()
	fns := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// LoadTheses returns the persisted collection and its revision. A missing or
// unreadable value re-seeds the store: corrupt data is deliberately discarded
// rather than surfaced, and initialization failure is swallowed so the caller
// always gets a usable collection.
func (s *Store) LoadTheses() ([]models.ThesisRecord, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.readThesesDoc()
	if !ok {
		seed := SeedTheses()
		doc = thesesDoc{Revision: 1, Records: seed}
		if err := s.writeValue(s.cfg.ThesesKey, doc); err != nil {
			log.Printf("Warning: failed to seed record store: %v", err)
			return seed, 0
		}
		return cloneRecords(seed), 1
	}
	return doc.Records, doc.Revision
}

// readThesesDoc reads and decodes the theses value. mu must be held.
func (s *Store) readThesesDoc() (thesesDoc, bool) {
	raw, ok := s.readRaw(s.cfg.ThesesKey)
	if !ok {
		return thesesDoc{}, false
	}
	var doc thesesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Printf("Warning: discarding unreadable theses data: %v", err)
		return thesesDoc{}, false
	}
	return doc, true
}

func (s *Store) readRaw(key string) ([]byte, bool) {
	if s.db == nil {
		return nil, false
	}
	raw, closer, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	_ = closer.Close()
	return buf, true
}

// SaveTheses replaces the persisted collection in one write. expectedRev must
// be the revision returned by the load that produced records; a mismatch
// fails with ErrConflict and writes nothing. When the serialized collections
// would exceed the capacity ceiling, superseded version artifacts are pruned
// and the write retried once; if still over the ceiling the save fails with
// ErrStorageExhausted and the persisted content is unchanged. On success the
// new revision is returned and theses-changed observers are notified.
func (s *Store) SaveTheses(records []models.ThesisRecord, expectedRev uint64) (uint64, error) {
	s.mu.Lock()
	current, ok := s.readThesesDoc()
	if ok && current.Revision != expectedRev {
		s.mu.Unlock()
		metricConflicts.Inc()
		return 0, fmt.Errorf("save theses: expected revision %d, have %d: %w",
			expectedRev, current.Revision, ErrConflict)
	}

	doc := thesesDoc{Revision: expectedRev + 1, Records: records}
	err := s.writeWithinCapacity(doc)
	if errors.Is(err, ErrStorageExhausted) {
		doc.Records = PruneVersions(records)
		metricPrunes.Inc()
		err = s.writeWithinCapacity(doc)
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrStorageExhausted) {
			metricQuotaFailures.Inc()
		}
		return 0, err
	}
	metricSaves.Inc()
	s.notify(EventThesesChanged)
	return doc.Revision, nil
}

// writeWithinCapacity serializes doc and writes it unless doing so would push
// the combined theses+messages footprint over the ceiling. mu must be held.
func (s *Store) writeWithinCapacity(doc thesesDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal theses: %w", err)
	}
	other := int64(0)
	if raw, ok := s.readRaw(s.cfg.MessagesKey); ok {
		other = int64(len(raw))
	}
	if s.cfg.CapacityBytes > 0 && int64(len(data))+other > s.cfg.CapacityBytes {
		return fmt.Errorf("theses payload %d bytes, messages %d bytes, ceiling %d: %w",
			len(data), other, s.cfg.CapacityBytes, ErrStorageExhausted)
	}
	if err := s.db.Set([]byte(s.cfg.ThesesKey), data, pebble.Sync); err != nil {
		return fmt.Errorf("write theses: %w", err)
	}
	metricUsageBytes.Set(float64(int64(len(data)) + other))
	return nil
}

func (s *Store) writeValue(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Set([]byte(key), data, pebble.Sync)
}

// SubmitNewThesis appends one record: load, append, save. Revision conflicts
// from interleaved writers are retried a few times before giving up.
func (s *Store) SubmitNewThesis(rec models.ThesisRecord) error {
	for attempt := 0; attempt < 3; attempt++ {
		records, rev := s.LoadTheses()
		records = append(records, rec)
		_, err := s.SaveTheses(records, rev)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return err
	}
	return ErrConflict
}

// LoadMessages returns the persisted message collection. Missing or
// unreadable data yields an empty collection.
func (s *Store) LoadMessages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.readRaw(s.cfg.MessagesKey)
	if !ok {
		return nil
	}
	var msgs []models.Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		log.Printf("Warning: discarding unreadable message data: %v", err)
		return nil
	}
	return msgs
}

// SaveMessages replaces the persisted message collection. Messages draw from
// the same byte ceiling as theses but carry no binary payloads, so there is
// no pruning path: an oversized write fails immediately.
func (s *Store) SaveMessages(msgs []models.Message) error {
	s.mu.Lock()
	data, err := json.Marshal(msgs)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("marshal messages: %w", err)
	}
	other := int64(0)
	if raw, ok := s.readRaw(s.cfg.ThesesKey); ok {
		other = int64(len(raw))
	}
	if s.cfg.CapacityBytes > 0 && int64(len(data))+other > s.cfg.CapacityBytes {
		s.mu.Unlock()
		metricQuotaFailures.Inc()
		return fmt.Errorf("messages payload %d bytes, theses %d bytes, ceiling %d: %w",
			len(data), other, s.cfg.CapacityBytes, ErrStorageExhausted)
	}
	if err := s.db.Set([]byte(s.cfg.MessagesKey), data, pebble.Sync); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write messages: %w", err)
	}
	metricUsageBytes.Set(float64(int64(len(data)) + other))
	s.mu.Unlock()

	metricSaves.Inc()
	s.notify(EventMessagesChanged)
	return nil
}

// UsageBytes returns the total serialized footprint of everything in the
// store, not just this application's two keys. Display only; capacity
// decisions use the per-write check.
func (s *Store) UsageBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0
	}
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return 0
	}
	defer iter.Close()
	var total int64
	for iter.First(); iter.Valid(); iter.Next() {
		total += int64(len(iter.Key())) + int64(len(iter.Value()))
	}
	return total
}

// ClearAppData removes only this application's two collections and notifies
// both events so every surface reloads.
func (s *Store) ClearAppData() error {
	s.mu.Lock()
	if err := s.db.Delete([]byte(s.cfg.ThesesKey), pebble.Sync); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear theses: %w", err)
	}
	if err := s.db.Delete([]byte(s.cfg.MessagesKey), pebble.Sync); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear messages: %w", err)
	}
	metricUsageBytes.Set(0)
	s.mu.Unlock()

	s.notify(EventThesesChanged)
	s.notify(EventMessagesChanged)
	return nil
}

// ResetAll removes every key in the store, including anything persisted by
// other tools sharing it. Irreversible; callers own any confirmation step.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	iter, err := s.db.NewIter(nil)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reset storage: %w", err)
	}
	batch := s.db.NewBatch()
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		if err := batch.Delete(key, nil); err != nil {
			_ = iter.Close()
			_ = batch.Close()
			s.mu.Unlock()
			return fmt.Errorf("reset storage: %w", err)
		}
	}
	_ = iter.Close()
	if err := batch.Commit(pebble.Sync); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reset storage: %w", err)
	}
	metricUsageBytes.Set(0)
	s.mu.Unlock()

	s.notify(EventThesesChanged)
	s.notify(EventMessagesChanged)
	return nil
}

// PruneVersions returns a copy of the collection in which every version
// except the most recently appended one per record has its artifact
// reference cleared. Version metadata is untouched; pruning an already
// pruned collection is a no-op.
func PruneVersions(records []models.ThesisRecord) []models.ThesisRecord {
	out := cloneRecords(records)
	for i := range out {
		for j := 0; j < len(out[i].Versions)-1; j++ {
			out[i].Versions[j].FileURL = ""
		}
	}
	return out
}

func cloneRecords(records []models.ThesisRecord) []models.ThesisRecord {
	out := make([]models.ThesisRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Versions = append([]models.Version(nil), records[i].Versions...)
		out[i].Reviews = append([]models.Review(nil), records[i].Reviews...)
	}
	return out
}
