// Package cart holds the point-of-sale cart: an ordered, id-unique list of
// line items with merge-on-add semantics, and the order totals derived from it.
package cart

import (
	"errors"
	"math"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrMissingID       = errors.New("item id is required")
)

// MenuItem is what the menu hands to the cart when a guest picks a dish.
type MenuItem struct {
	ID       string
	Name     string
	Category string
	Image    string
	Price    float64
}

type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// Amount is price times quantity.
func (li LineItem) Amount() float64 { return li.Price * float64(li.Quantity) }

// Cart is not safe for concurrent use; Registry serializes access per session.
type Cart struct {
	items []LineItem
	index map[string]int // id -> position in items
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddItem appends item, or merges it into the existing line with the same id:
// quantities add up, the original price is kept and notes are replaced only
// by a non-empty value.
func (c *Cart) AddItem(item MenuItem, quantity int, notes string) ([]LineItem, error) {
	if item.ID == "" {
		return nil, ErrMissingID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if item.Price < 0 {
		return nil, ErrNegativeAmount
	}

	if i, ok := c.index[item.ID]; ok {
		if c.items[i].Quantity > math.MaxInt-quantity {
			return nil, ErrInvalidQuantity
		}
		c.items[i].Quantity += quantity
		if notes != "" {
			c.items[i].Notes = notes
		}
		return c.Items(), nil
	}

	c.index[item.ID] = len(c.items)
	c.items = append(c.items, LineItem{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Image:    item.Image,
		Price:    item.Price,
		Quantity: quantity,
		Notes:    notes,
	})
	return c.Items(), nil
}

// UpdateQuantity replaces the quantity of id; zero or below removes the line.
// It reports whether id was in the cart.
func (c *Cart) UpdateQuantity(id string, quantity int) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	if quantity <= 0 {
		c.removeAt(i)
		return true
	}
	c.items[i].Quantity = quantity
	return true
}

// RemoveItem reports whether id was in the cart.
func (c *Cart) RemoveItem(id string) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

// Deduct takes a previously snapshotted set of lines out of the cart, so
// anything added after the snapshot survives. Lines that drop to zero are
// removed.
func (c *Cart) Deduct(lines []LineItem) {
	for _, l := range lines {
		i, ok := c.index[l.ID]
		if !ok {
			continue
		}
		if left := c.items[i].Quantity - l.Quantity; left > 0 {
			c.items[i].Quantity = left
		} else {
			c.removeAt(i)
		}
	}
}

// Items returns a copy in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Get(id string) (LineItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return LineItem{}, false
	}
	return c.items[i], true
}

func (c *Cart) removeAt(i int) {
	delete(c.index, c.items[i].ID)
	c.items = append(c.items[:i], c.items[i+1:]...)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
}
