package cart

const (
	TaxRate      = 0.10
	DiscountRate = 0.10
)

// OrderTotals is derived from a snapshot on every read and never stored on
// the cart. No rounding happens here; formatting belongs to the caller.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

type Rates struct {
	Tax      float64
	Discount float64
}

var DefaultRates = Rates{Tax: TaxRate, Discount: DiscountRate}

// CalculateTotals applies the fixed 10% tax and, with a promotion, the fixed
// 10% discount.
func CalculateTotals(items []LineItem, promoApplied bool) OrderTotals {
	return DefaultRates.Calculate(items, promoApplied)
}

func (r Rates) Calculate(items []LineItem, promoApplied bool) OrderTotals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Amount()
	}
	t := OrderTotals{
		Subtotal: subtotal,
		Tax:      subtotal * r.Tax,
	}
	if promoApplied {
		t.Discount = subtotal * r.Discount
	}
	t.Total = t.Subtotal + t.Tax - t.Discount
	return t
}

// ValidateAmounts rejects snapshots carrying a negative line amount. Checkout
// calls it before pricing; Calculate itself trusts its input.
func ValidateAmounts(items []LineItem) error {
	for _, it := range items {
		if it.Amount() < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}
