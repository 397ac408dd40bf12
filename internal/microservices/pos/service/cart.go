package service

import (
	"context"
	"errors"

	"restaurant-pos/internal/microservices/pos/cart"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/repository"
)

type CartServiceInterface interface {
	CreateSession() string
	CloseSession(session string) bool
	View(session string, promo bool) (dto.CartView, error)
	AddItem(ctx context.Context, session string, req dto.AddItemRequest, promo bool) (dto.CartView, error)
	UpdateQuantity(session, itemID string, quantity int, promo bool) (dto.CartView, error)
	RemoveItem(session, itemID string, promo bool) (dto.CartView, error)
	Clear(session string, promo bool) (dto.CartView, error)
}

type CartService struct {
	carts *cart.Registry
	menu  repository.MenuRepositoryInterface
	rates cart.Rates
}

func NewCartService(carts *cart.Registry, menu repository.MenuRepositoryInterface, rates cart.Rates) CartServiceInterface {
	return &CartService{carts: carts, menu: menu, rates: rates}
}

func (cs *CartService) CreateSession() string { return cs.carts.Create() }

func (cs *CartService) CloseSession(session string) bool { return cs.carts.Delete(session) }

func (cs *CartService) View(session string, promo bool) (dto.CartView, error) {
	items, err := cs.carts.Snapshot(session)
	if err != nil {
		return dto.CartView{}, err
	}
	return cs.view(session, items, promo), nil
}

// AddItem resolves the menu item first so the cart always stores the price
// the menu had when the item was first added.
func (cs *CartService) AddItem(ctx context.Context, session string, req dto.AddItemRequest, promo bool) (dto.CartView, error) {
	if req.MenuItemID == "" {
		return dto.CartView{}, invalid("menu_item_id is required")
	}
	m, err := cs.menu.Get(ctx, req.MenuItemID)
	if err != nil {
		return dto.CartView{}, err
	}
	if !m.Available {
		return dto.CartView{}, ErrMenuItemUnavailable
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	var items []cart.LineItem
	err = cs.carts.Update(session, func(c *cart.Cart) error {
		var err error
		items, err = c.AddItem(cart.MenuItem{
			ID:       m.ID,
			Name:     m.Name,
			Category: m.Category,
			Image:    m.Image,
			Price:    m.Price,
		}, quantity, req.Notes)
		return err
	})
	if err != nil {
		return dto.CartView{}, err
	}
	return cs.view(session, items, promo), nil
}

func (cs *CartService) UpdateQuantity(session, itemID string, quantity int, promo bool) (dto.CartView, error) {
	return cs.mutate(session, promo, func(c *cart.Cart) bool { return c.UpdateQuantity(itemID, quantity) })
}

func (cs *CartService) RemoveItem(session, itemID string, promo bool) (dto.CartView, error) {
	return cs.mutate(session, promo, func(c *cart.Cart) bool { return c.RemoveItem(itemID) })
}

func (cs *CartService) Clear(session string, promo bool) (dto.CartView, error) {
	return cs.mutate(session, promo, func(c *cart.Cart) bool { c.Clear(); return true })
}

func (cs *CartService) mutate(session string, promo bool, fn func(c *cart.Cart) bool) (dto.CartView, error) {
	var items []cart.LineItem
	err := cs.carts.Update(session, func(c *cart.Cart) error {
		found := fn(c)
		items = c.Items()
		if !found {
			return ErrItemNotInCart
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrItemNotInCart) {
		return dto.CartView{}, err
	}
	return cs.view(session, items, promo), err
}

func (cs *CartService) view(session string, items []cart.LineItem, promo bool) dto.CartView {
	return dto.NewCartView(session, items, promo, cs.rates.Calculate(items, promo))
}
