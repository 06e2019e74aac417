package models

import "testing"

func TestChargerNormalizeForcesBroken(t *testing.T) {
	c := Charger{ID: 1, Status: ChargerStatusFree, Issue: ChargerIssueVandalized}

	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error for free charger with issue")
	}

	n := c.Normalize()
	if n.Status != ChargerStatusBroken {
		t.Fatalf("expected broken after normalize, got %s", n.Status)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("normalized charger must validate: %v", err)
	}

	fine := Charger{ID: 2, Status: ChargerStatusFree, Issue: ChargerIssueFine}
	if got := fine.Normalize(); got.Status != ChargerStatusFree {
		t.Fatalf("normalize must not touch a fine charger, got %s", got.Status)
	}
}

func TestChargerAvailable(t *testing.T) {
	if !(Charger{Status: ChargerStatusFree, Issue: ChargerIssueFine}).Available() {
		t.Fatalf("free+fine should be available")
	}
	if (Charger{Status: ChargerStatusOccupied, Issue: ChargerIssueFine}).Available() {
		t.Fatalf("occupied should not be available")
	}
	if (Charger{Status: ChargerStatusFree, Issue: ChargerIssueDamaged}).Available() {
		t.Fatalf("damaged should not be available")
	}
}

func TestBundleChargersGroupsByTypePowerPrice(t *testing.T) {
	chargers := []Charger{
		{ID: 1, Type: ChargerTypeCCS2, Power: ChargerPowerFast, Price: 0.5, Status: ChargerStatusFree, Issue: ChargerIssueFine},
		{ID: 2, Type: ChargerTypeCCS2, Power: ChargerPowerFast, Price: 0.5, Status: ChargerStatusOccupied, Issue: ChargerIssueFine},
		{ID: 3, Type: ChargerTypeType2, Power: ChargerPowerSlow, Price: 0.2, Status: ChargerStatusFree, Issue: ChargerIssueFine},
	}

	bundles := BundleChargers(chargers)
	if len(bundles) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(bundles))
	}
	first := bundles[0]
	if first.Type != ChargerTypeCCS2 || first.Amount != 2 || first.Available != 1 {
		t.Fatalf("unexpected first bundle: %+v", first)
	}
	second := bundles[1]
	if second.Type != ChargerTypeType2 || second.Amount != 1 || second.Available != 1 {
		t.Fatalf("unexpected second bundle: %+v", second)
	}
}

func TestStationFullAggregates(t *testing.T) {
	full := StationFull{
		Chargers: []Charger{
			{Price: 0.5, Power: ChargerPowerMedium, Status: ChargerStatusOccupied, Issue: ChargerIssueFine},
			{Price: 0.3, Power: ChargerPowerFast, Status: ChargerStatusFree, Issue: ChargerIssueFine},
		},
	}

	min, ok := full.MinPrice()
	if !ok || min != 0.3 {
		t.Fatalf("expected min price 0.3, got %f ok=%v", min, ok)
	}
	if !full.HasFreeCharger() {
		t.Fatalf("expected a free charger")
	}
	if full.MaxPowerRank() != 2 {
		t.Fatalf("expected fast rank 2, got %d", full.MaxPowerRank())
	}

	empty := StationFull{}
	if _, ok := empty.MinPrice(); ok {
		t.Fatalf("empty station must report no min price")
	}
}

func TestSplitSetRoundTrip(t *testing.T) {
	if got := SplitSet(""); got != nil {
		t.Fatalf("empty column must parse to nil, got %v", got)
	}
	values := []string{PaymentCash, PaymentVisa}
	parsed := SplitSet(JoinSet(values))
	if len(parsed) != 2 || parsed[0] != PaymentCash || parsed[1] != PaymentVisa {
		t.Fatalf("round trip mismatch: %v", parsed)
	}
}
