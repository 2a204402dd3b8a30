package mind

// Trust tiers rendered into directives.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// TrustTier bands a trust score: high above 0.7, medium from 0.4, else low.
func TrustTier(trust float64) string {
	switch {
	case trust > 0.7:
		return TierHigh
	case trust >= 0.4:
		return TierMedium
	default:
		return TierLow
	}
}
