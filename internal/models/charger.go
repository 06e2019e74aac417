package models

import "fmt"

// Charger plug types.
const (
	ChargerTypeCCS2  = "CCS2"
	ChargerTypeType2 = "TYPE2"
)

// Charger power tiers.
const (
	ChargerPowerFast   = "FAST"
	ChargerPowerMedium = "MEDIUM"
	ChargerPowerSlow   = "SLOW"
)

// Charger availability status values.
const (
	ChargerStatusFree     = "FREE"
	ChargerStatusOccupied = "OCCUPIED"
	ChargerStatusBroken   = "BROKEN"
)

// Charger issue values. Anything other than FINE implies the charger is broken.
const (
	ChargerIssueFine        = "FINE"
	ChargerIssueVandalized  = "VANDALIZED"
	ChargerIssueNotCharging = "NOT_CHARGING"
	ChargerIssueDamaged     = "DAMAGED"
)

// Charger is a single charging point belonging to a station.
type Charger struct {
	ID        int64   `db:"id" json:"id"`
	StationID int64   `db:"station_id" json:"stationId"`
	Type      string  `db:"type" json:"type"`
	Power     string  `db:"power" json:"power"`
	Price     float64 `db:"price" json:"price"`
	Status    string  `db:"status" json:"status"`
	Issue     string  `db:"issue" json:"issue"`
}

// Validate checks the issue/status invariant: a charger with a reported issue
// must be marked broken, and FREE/OCCUPIED are only meaningful without one.
func (c Charger) Validate() error {
	if c.Issue != ChargerIssueFine && c.Status != ChargerStatusBroken {
		return fmt.Errorf("charger %d: issue %s requires status %s, got %s", c.ID, c.Issue, ChargerStatusBroken, c.Status)
	}
	return nil
}

// Normalize forces the status to BROKEN when an issue is reported so the
// invariant holds regardless of what the remote row carried.
func (c Charger) Normalize() Charger {
	if c.Issue != ChargerIssueFine {
		c.Status = ChargerStatusBroken
	}
	return c
}

// Available reports whether the charger can start a session right now.
func (c Charger) Available() bool {
	return c.Status == ChargerStatusFree && c.Issue == ChargerIssueFine
}

// ChargerBundle groups identical chargers of one station for display.
type ChargerBundle struct {
	Type      string
	Power     string
	Price     float64
	Amount    int
	Available int
	Chargers  []Charger
}

// BundleChargers groups chargers by (type, power, price), preserving first-seen
// order of the groups.
func BundleChargers(chargers []Charger) []ChargerBundle {
	type key struct {
		typ   string
		power string
		price float64
	}

	index := make(map[key]int)
	var bundles []ChargerBundle
	for _, c := range chargers {
		k := key{typ: c.Type, power: c.Power, price: c.Price}
		i, ok := index[k]
		if !ok {
			i = len(bundles)
			index[k] = i
			bundles = append(bundles, ChargerBundle{Type: c.Type, Power: c.Power, Price: c.Price})
		}
		bundles[i].Amount++
		if c.Available() {
			bundles[i].Available++
		}
		bundles[i].Chargers = append(bundles[i].Chargers, c)
	}
	return bundles
}

// powerRank orders power tiers from slowest to fastest.
func powerRank(power string) int {
	switch power {
	case ChargerPowerSlow:
		return 0
	case ChargerPowerMedium:
		return 1
	case ChargerPowerFast:
		return 2
	default:
		return -1
	}
}
