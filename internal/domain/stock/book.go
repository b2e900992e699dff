package stock

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"capworks/internal/domain/validation"
)

type Book struct {
	mu    sync.Mutex
	items []Item
}

func NewBook() *Book {
	return &Book{}
}

func validateItem(item Item) error {
	var c validation.Collector
	c.Required("name", item.Name)
	if item.Quantity < 0 {
		c.Add("quantity")
	}
	if item.ReorderLevel < 0 {
		c.Add("reorderLevel")
	}
	if item.OrderCount < 0 {
		c.Add("orderCount")
	}
	return c.Err()
}

// AddItem stores a new stock item. Names are unique, compared without case.
func (b *Book) AddItem(item Item) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(item); err != nil {
		return Item{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.items {
		if strings.EqualFold(existing.Name, item.Name) {
			return Item{}, fmt.Errorf("%w: %s", ErrItemExists, item.Name)
		}
	}
	item.ID = uuid.NewString()
	b.items = append(b.items, item)
	return item, nil
}

func (b *Book) UpdateItem(id string, upd Update) (Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.index(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	item := b.items[idx]
	if upd.Name != nil {
		item.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Quantity != nil {
		item.Quantity = *upd.Quantity
	}
	if upd.ReorderLevel != nil {
		item.ReorderLevel = *upd.ReorderLevel
	}
	if upd.OrderCount != nil {
		item.OrderCount = *upd.OrderCount
	}
	if err := validateItem(item); err != nil {
		return Item{}, err
	}
	for i, existing := range b.items {
		if i != idx && strings.EqualFold(existing.Name, item.Name) {
			return Item{}, fmt.Errorf("%w: %s", ErrItemExists, item.Name)
		}
	}
	b.items[idx] = item
	return item, nil
}

func (b *Book) SetReorderLevel(id string, level int) (Item, error) {
	return b.UpdateItem(id, Update{ReorderLevel: &level})
}

func (b *Book) RemoveItem(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	b.items = append(b.items[:idx], b.items[idx+1:]...)
	return nil
}

func (b *Book) Item(id string) (Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.index(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return b.items[idx], nil
}

func (b *Book) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item{}, b.items...)
}

// LowStock lists items at or below their reorder level.
func (b *Book) LowStock() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []Item{}
	for _, item := range b.items {
		if item.Status() == StatusLow {
			out = append(out, item)
		}
	}
	return out
}

// Trending returns the n most ordered items, ties broken by name.
func (b *Book) Trending(n int) []Item {
	if n <= 0 {
		n = DefaultTrending
	}
	items := b.Items()
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].OrderCount == items[j].OrderCount {
			return items[i].Name < items[j].Name
		}
		return items[i].OrderCount > items[j].OrderCount
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

func (b *Book) TotalQuantity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, item := range b.items {
		total += item.Quantity
	}
	return total
}

func (b *Book) State() State {
	return State{Items: b.Items()}
}

func (b *Book) Restore(state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]Item(nil), state.Items...)
}

func (b *Book) index(id string) int {
	for i, item := range b.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
