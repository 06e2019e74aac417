package models

// FilterCriteria is the client-side filter selection sent to the server-side
// station filter function.
type FilterCriteria struct {
	OnlyAvailable  bool
	ChargerTypes   []string
	ChargerPowers  []string
	MinPrice       float64
	MaxPrice       float64
	PaymentMethods []string
	NearbyServices []string
}

// DefaultFilterCriteria mirrors the untouched filter dialog state.
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{MinPrice: 0, MaxPrice: 20}
}
