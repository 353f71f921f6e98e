package entities

// Quantity represents an integer quantity value for discrete manufacturing units
type Quantity int64

// MaxQuantity returns the larger of a and b
func MaxQuantity(a, b Quantity) Quantity {
	if a > b {
		return a
	}
	return b
}
