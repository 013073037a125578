package domain

// Pricing arithmetic for carts and orders.
//
// All monetary amounts are integer cents. Percent math rounds half-up to
// the nearest cent. Callers must reject negative prices, quantities, and
// percents before calling in here; these functions do no validation.

// LineAmount returns the amount for a line item: unit price times quantity.
func LineAmount(unitPriceCents int64, quantity int32) int64 {
	return unitPriceCents * int64(quantity)
}

// DiscountAmount returns the cent value of a percent discount on a total,
// rounded half-up.
func DiscountAmount(totalCents int64, discountPercent int32) int64 {
	return (totalCents*int64(discountPercent) + 50) / 100
}

// ApplyDiscount returns the total after a percent discount is taken off.
// Defined as total minus DiscountAmount so the two never disagree by a
// rounding cent.
func ApplyDiscount(totalCents int64, discountPercent int32) int64 {
	return totalCents - DiscountAmount(totalCents, discountPercent)
}
