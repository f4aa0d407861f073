package models

// RiskTier is the derived academic standing of a student. It is never stored.
type RiskTier string

// Risk tiers ordered from least to most severe.
const (
	RiskTierSafe     RiskTier = "safe"
	RiskTierWarning  RiskTier = "warning"
	RiskTierAtRisk   RiskTier = "at_risk"
	RiskTierCritical RiskTier = "critical"
)

// NeedsAttention reports whether the tier should be targeted by at-risk outreach.
func (t RiskTier) NeedsAttention() bool {
	return t == RiskTierWarning || t == RiskTierAtRisk || t == RiskTierCritical
}
