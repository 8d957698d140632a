package store

// Tier classifies a store's activity level. Lower numbers mean higher
// activity, a shorter sync interval, and a larger rate-limit budget.
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
	Tier4 Tier = 4

	// DefaultTier is assigned at onboarding, before any activity is known
	DefaultTier = Tier3
)

// ActivityMetrics holds the trailing-24h counters tier classification runs on
type ActivityMetrics struct {
	OrdersPerDay           int64
	CatalogMutationsPerDay int64
}

// ClassifyTier maps activity metrics to a tier. The rules are evaluated
// top-down, first match wins; the order threshold and the mutation
// threshold are alternatives, not a combined score.
func ClassifyTier(m ActivityMetrics) Tier {
	switch {
	case m.OrdersPerDay >= 50 || m.CatalogMutationsPerDay >= 100:
		return Tier1
	case m.OrdersPerDay >= 20 || m.CatalogMutationsPerDay >= 30:
		return Tier2
	case m.OrdersPerDay >= 5 || m.CatalogMutationsPerDay >= 10:
		return Tier3
	default:
		return Tier4
	}
}

// IntervalMinutes returns the recommended sync interval for the tier
func (t Tier) IntervalMinutes() int {
	switch t {
	case Tier1:
		return 5
	case Tier2:
		return 15
	case Tier3:
		return 60
	case Tier4:
		return 240
	default:
		return 60
	}
}

// IsValid reports whether t is one of the four known tiers
func (t Tier) IsValid() bool {
	return t >= Tier1 && t <= Tier4
}
