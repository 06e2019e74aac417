package models

import "strings"

// Payment methods accepted at a station.
const (
	PaymentCash       = "CASH"
	PaymentMBWay      = "MB_WAY"
	PaymentGooglePay  = "GOOGLE_PAY"
	PaymentVisa       = "VISA"
	PaymentMastercard = "MASTERCARD"
)

// Services that may exist near a station.
const (
	ServiceCoffeeShop     = "COFFEE_SHOP"
	ServiceRestaurant     = "RESTAURANT"
	ServiceWC             = "WC"
	ServiceCarWash        = "CAR_WASH"
	ServiceGasStation     = "GAS_STATION"
	ServiceMobilityRental = "MOBILITY_RENTAL"
	ServiceSupermarket    = "SUPERMARKET"
	ServiceATM            = "ATM"
	ServicePharmacy       = "PHARMACY"
	ServiceWifiZone       = "WIFI_ZONE"
	ServicePlayground     = "PLAYGROUND"
	ServiceLibrary        = "LIBRARY"
)

// Station is a charging location. Chargers and reviews are owned by foreign
// key and loaded separately; StationFull carries the aggregate.
type Station struct {
	ID             int64    `db:"id" json:"id"`
	Name           string   `db:"name" json:"name"`
	Latitude       float64  `db:"latitude" json:"latitude"`
	Longitude      float64  `db:"longitude" json:"longitude"`
	ImageURL       string   `db:"image_url" json:"imageUrl"`
	AvgRating      float64  `db:"avg_rating" json:"avgRating"`
	PaymentMethods []string `db:"-" json:"paymentMethods"`
	NearbyServices []string `db:"-" json:"nearbyServices"`
}

// Location returns the station coordinates.
func (s Station) Location() GeoLocation {
	return GeoLocation{Latitude: s.Latitude, Longitude: s.Longitude}
}

// StationFull is a station with its chargers and reviews attached.
type StationFull struct {
	Station  Station
	Chargers []Charger
	Reviews  []Review
}

// MinPrice returns the cheapest charger price, or ok=false without chargers.
func (s StationFull) MinPrice() (float64, bool) {
	if len(s.Chargers) == 0 {
		return 0, false
	}
	min := s.Chargers[0].Price
	for _, c := range s.Chargers[1:] {
		if c.Price < min {
			min = c.Price
		}
	}
	return min, true
}

// HasFreeCharger reports whether any charger is currently available.
func (s StationFull) HasFreeCharger() bool {
	for _, c := range s.Chargers {
		if c.Status == ChargerStatusFree {
			return true
		}
	}
	return false
}

// MaxPowerRank returns the rank of the fastest charger tier present.
func (s StationFull) MaxPowerRank() int {
	max := -1
	for _, c := range s.Chargers {
		if r := powerRank(c.Power); r > max {
			max = r
		}
	}
	return max
}

// JoinSet serializes a set-valued column the way the backend stores it.
func JoinSet(values []string) string {
	return strings.Join(values, ",")
}

// SplitSet parses a comma separated set column, dropping empty entries.
func SplitSet(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
