package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/zombor/receipt-builder/internal/receipt"
	"github.com/zombor/receipt-builder/internal/storage"
)

// MaxEntries is the number of receipts kept in history
const MaxEntries = 20

const (
	idPrefix        = "receipt-"
	unnamedShop     = "Unnamed Receipt"
	unnamedCustomer = "Unnamed Customer"
)

// Preview is the summary shown in history lists
type Preview struct {
	ShopName string  `json:"shopName"`
	Total    float64 `json:"total"`
	Customer string  `json:"customer"`
	Date     string  `json:"date"`
}

// Entry is a receipt saved to history. Entries are never modified after creation.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Data      receipt.Receipt `json:"data"`
	Preview   Preview         `json:"preview"`
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Store keeps the newest-first receipt history and persists it as a whole.
// It is not safe for concurrent use.
type Store struct {
	kv         storage.Store
	editor     *receipt.Editor
	timeSource TimeSource
	entries    []Entry
}

// NewStore creates a Store and loads the persisted history
func NewStore(kv storage.Store, editor *receipt.Editor) *Store {
	return NewStoreWithDeps(kv, editor, &defaultTimeSource{})
}

// NewStoreWithDeps creates a Store with a custom time source for testing
func NewStoreWithDeps(kv storage.Store, editor *receipt.Editor, timeSrc TimeSource) *Store {
	s := &Store{
		kv:         kv,
		editor:     editor,
		timeSource: timeSrc,
	}
	s.LoadHistory()
	return s
}

// LoadHistory replaces the in-memory history with the persisted one.
// Unreadable history is logged and treated as empty.
func (s *Store) LoadHistory() {
	s.entries = []Entry{}

	raw, ok, err := s.kv.Get(storage.KeyReceiptHistory)
	if err != nil {
		slog.Error("Failed to read receipt history", "error", err)
		return
	}
	if !ok {
		return
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Error("Failed to load receipt history", "error", err)
		return
	}
	if entries != nil {
		s.entries = entries
	}
}

// Entries returns a copy of the history, newest first
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		e.Data = e.Data.Clone()
		out[i] = e
	}
	return out
}

// Entry returns the entry with the given ID
func (s *Store) Entry(id string) (Entry, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	e := s.entries[i]
	e.Data = e.Data.Clone()
	return e, true
}

// SaveReceiptToHistory adds a copy of r as the newest entry, dropping the
// oldest entries beyond MaxEntries, and returns the new entry's ID
func (s *Store) SaveReceiptToHistory(r receipt.Receipt) (string, error) {
	now := s.timeSource.Now().UTC()
	timestamp := now.Format("2006-01-02T15:04:05.000Z")
	id := s.newID(now)

	entry := Entry{
		ID:        id,
		Timestamp: timestamp,
		Data:      r.Clone(),
		Preview: Preview{
			ShopName: orDefault(r.Shop.Name, unnamedShop),
			Total:    r.Total(),
			Customer: orDefault(r.Customer.Name, unnamedCustomer),
			Date:     orDefault(r.ReceiptDetails.Date, timestamp),
		},
	}

	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}

	if err := s.save(); err != nil {
		return "", err
	}
	return id, nil
}

// LoadReceiptFromHistory makes the entry's receipt the live receipt and saves
// it. It reports false when no entry has the given ID.
func (s *Store) LoadReceiptFromHistory(id string) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	s.editor.Replace(s.entries[i].Data)
	if _, err := s.editor.SaveToLocalStorage(); err != nil {
		return true, fmt.Errorf("saving loaded receipt: %w", err)
	}
	return true, nil
}

// DeleteReceiptFromHistory removes the entry with the given ID. It reports
// false when no entry has that ID.
func (s *Store) DeleteReceiptFromHistory(id string) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// ClearHistory removes every entry
func (s *Store) ClearHistory() error {
	s.entries = []Entry{}
	return s.save()
}

func (s *Store) save() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if err := s.kv.Set(storage.KeyReceiptHistory, string(data)); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// newID derives the entry ID from the millisecond timestamp, moving forward
// past IDs already in history
func (s *Store) newID(now time.Time) string {
	millis := now.UnixMilli()
	for {
		id := fmt.Sprintf("%s%d", idPrefix, millis)
		if s.indexOf(id) < 0 {
			return id
		}
		millis++
	}
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
