package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/client"
)

var (
	// ErrInvalidCart is returned when the cart is nil, has no items, or has no owner.
	ErrInvalidCart = errors.New("cart is empty or missing")
	// ErrInvalidQuantity is returned when a cart line carries a non-positive quantity.
	ErrInvalidQuantity = errors.New("cart item quantity must be positive")
)

// Threshold and multiplier values for item discounts and freight tiers.
// Comparisons use exact decimal semantics; the boundary values themselves
// (500, 1000, 5, 10, 50) always fall into the cheaper bracket.
var (
	discountUpperBound = decimal.NewFromInt(1000)
	discountLowerBound = decimal.NewFromInt(500)
	discountHeavy      = decimal.RequireFromString("0.80")
	discountLight      = decimal.RequireFromString("0.90")

	freightFreeLimit  = decimal.NewFromInt(5)
	freightLightLimit = decimal.NewFromInt(10)
	freightMidLimit   = decimal.NewFromInt(50)
	freightLightRate  = decimal.NewFromInt(2)
	freightMidRate    = decimal.NewFromInt(4)
	freightHeavyRate  = decimal.NewFromInt(7)

	silverFreightFactor = decimal.RequireFromString("0.5")
)

// ComputeTotal prices a cart: item subtotal with volume discount, plus tiered
// freight adjusted by the client's tier. Pure function; the cart is never
// mutated and repeated calls yield identical results.
func ComputeTotal(c *cart.Cart) (decimal.Decimal, error) {
	if c == nil || len(c.Items) == 0 || c.Client == nil {
		return decimal.Zero, ErrInvalidCart
	}

	subtotal := decimal.Zero
	weight := decimal.Zero
	for _, it := range c.Items {
		if it.Qty <= 0 {
			return decimal.Zero, ErrInvalidQuantity
		}
		qty := decimal.NewFromInt32(it.Qty)
		subtotal = subtotal.Add(it.Product.Price.Mul(qty))
		weight = weight.Add(it.Product.Weight.Mul(qty))
	}

	items := applyItemDiscount(subtotal)
	freight := adjustFreight(baseFreight(weight), c.Client.Tier)
	return items.Add(freight), nil
}

// applyItemDiscount applies the volume discount to the item subtotal. The
// brackets are strict: exactly 500 and exactly 1000 receive no discount.
func applyItemDiscount(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThan(discountUpperBound):
		return subtotal.Mul(discountHeavy)
	case subtotal.GreaterThan(discountLowerBound):
		return subtotal.Mul(discountLight)
	default:
		return subtotal
	}
}

// baseFreight computes the tier freight from the total cart weight. Upper
// bounds are inclusive: weight 5, 10 and 50 use the cheaper formula.
func baseFreight(weight decimal.Decimal) decimal.Decimal {
	switch {
	case weight.LessThanOrEqual(freightFreeLimit):
		return decimal.Zero
	case weight.LessThanOrEqual(freightLightLimit):
		return weight.Mul(freightLightRate)
	case weight.LessThanOrEqual(freightMidLimit):
		return weight.Mul(freightMidRate)
	default:
		return weight.Mul(freightHeavyRate)
	}
}

// adjustFreight applies the client-tier freight discount. GOLD waives freight
// entirely, SILVER pays half, everything else pays the base value.
func adjustFreight(freight decimal.Decimal, tier client.Tier) decimal.Decimal {
	switch tier {
	case client.TierGold:
		return decimal.Zero
	case client.TierSilver:
		return freight.Mul(silverFreightFactor)
	default:
		return freight
	}
}
