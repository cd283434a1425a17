package receipt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-builder/internal/storage"
)

// IDGenerator generates unique IDs for line items and saved receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDv4 strings
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ItemInput holds the caller-provided fields of a new line item.
// Zero values fall back to the item defaults.
type ItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	Image       *string `json:"image"`
}

// ItemSelector picks a line item by position or by ID
type ItemSelector struct {
	index int
	id    string
	byID  bool
}

// At selects the item at index
func At(index int) ItemSelector {
	return ItemSelector{index: index}
}

// ByID selects the first item with the given ID
func ByID(id string) ItemSelector {
	return ItemSelector{id: id, byID: true}
}

// Editor holds the live receipt and the operations the view layer performs on it.
// It is not safe for concurrent use.
type Editor struct {
	store       storage.Store
	idGenerator IDGenerator
	timeSource  TimeSource
	receipt     Receipt
}

// NewEditor creates an Editor with a fresh receipt, UUID ids and the wall clock
func NewEditor(store storage.Store) *Editor {
	return NewEditorWithDeps(store, &uuidGenerator{}, &defaultTimeSource{})
}

// NewEditorWithDeps creates an Editor with custom dependencies for testing
func NewEditorWithDeps(store storage.Store, idGen IDGenerator, timeSrc TimeSource) *Editor {
	return &Editor{
		store:       store,
		idGenerator: idGen,
		timeSource:  timeSrc,
		receipt:     New(timeSrc.Now()),
	}
}

// Receipt returns a copy of the live receipt
func (e *Editor) Receipt() Receipt {
	return e.receipt.Clone()
}

// Replace swaps the live receipt for a copy of r. Items with a blank ID, or
// an ID already used by an earlier item, get a fresh one.
func (e *Editor) Replace(r Receipt) {
	e.receipt = r.Clone()
	seen := make(map[string]bool, len(e.receipt.Items))
	for i := range e.receipt.Items {
		item := &e.receipt.Items[i]
		if item.ID == "" || seen[item.ID] {
			item.ID = e.idGenerator.Generate()
		}
		seen[item.ID] = true
	}
}

// Update applies fn to the live receipt
func (e *Editor) Update(fn func(r *Receipt)) {
	fn(&e.receipt)
}

func (e *Editor) Subtotal() float64      { return e.receipt.Subtotal() }
func (e *Editor) DiscountValue() float64 { return e.receipt.DiscountValue() }
func (e *Editor) TaxValue() float64      { return e.receipt.TaxValue() }
func (e *Editor) Total() float64         { return e.receipt.Total() }

// Snapshot returns the live receipt with its current totals
func (e *Editor) Snapshot() Snapshot {
	return NewSnapshot(e.receipt)
}

// AddItem appends a new line item and returns its ID
func (e *Editor) AddItem(in ItemInput) string {
	item := LineItem{
		ID:          e.idGenerator.Generate(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	}
	if math.IsNaN(item.Price) {
		item.Price = 0
	}
	if item.Quantity == 0 || math.IsNaN(item.Quantity) {
		item.Quantity = 1
	}
	if in.Image != nil && *in.Image != "" {
		item.Image = cloneString(in.Image)
	}

	e.receipt.Items = append(e.receipt.Items, item)
	return item.ID
}

// RemoveItem removes the selected item. Selecting nothing is a no-op.
func (e *Editor) RemoveItem(sel ItemSelector) {
	index := sel.index
	if sel.byID {
		index = e.indexOf(sel.id)
	}
	if index < 0 || index >= len(e.receipt.Items) {
		return
	}
	e.receipt.Items = append(e.receipt.Items[:index], e.receipt.Items[index+1:]...)
}

// UpdateImage replaces the image of the item with the given ID, if any
func (e *Editor) UpdateImage(id string, imageData *string) {
	if i := e.indexOf(id); i >= 0 {
		e.receipt.Items[i].Image = cloneString(imageData)
	}
}

// SetShopLogo replaces the shop logo
func (e *Editor) SetShopLogo(imageData *string) {
	e.receipt.Shop.Logo = cloneString(imageData)
}

// SetPaymentMethod replaces the payment method
func (e *Editor) SetPaymentMethod(method string) {
	e.receipt.PaymentMethod = method
}

// Reset replaces the live receipt with a fresh one dated today
func (e *Editor) Reset() {
	e.receipt = New(e.timeSource.Now())
}

// SaveToLocalStorage stores a snapshot of the live receipt under its ID in the
// saved receipts map, assigning an ID on first save. It returns the ID.
func (e *Editor) SaveToLocalStorage() (string, error) {
	if e.receipt.ID == "" {
		e.receipt.ID = e.idGenerator.Generate()
	}
	id := e.receipt.ID

	saved, err := e.SavedReceipts()
	if err != nil {
		return "", err
	}
	saved[id] = e.Snapshot()

	data, err := json.Marshal(saved)
	if err != nil {
		return "", fmt.Errorf("marshaling saved receipts: %w", err)
	}
	if err := e.store.Set(storage.KeySavedReceipts, string(data)); err != nil {
		return "", fmt.Errorf("saving receipt: %w", err)
	}
	return id, nil
}

// SavedReceipts returns the persisted id → snapshot map. A corrupt map is
// logged and treated as empty.
func (e *Editor) SavedReceipts() (map[string]Snapshot, error) {
	saved := make(map[string]Snapshot)
	raw, ok, err := e.store.Get(storage.KeySavedReceipts)
	if err != nil {
		return nil, fmt.Errorf("reading saved receipts: %w", err)
	}
	if !ok {
		return saved, nil
	}
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		slog.Error("Failed to load saved receipts", "error", err)
		return make(map[string]Snapshot), nil
	}
	if saved == nil {
		// stored literal "null"
		saved = make(map[string]Snapshot)
	}
	return saved, nil
}

func (e *Editor) indexOf(id string) int {
	for i, item := range e.receipt.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
