package domain

// RiskLevel is an ordinal classification of how much PII exposure a text
// represents: none < low < medium < high < critical.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskOrder maps levels to their ordinal position for comparisons and escalation.
var riskOrder = []RiskLevel{RiskNone, RiskLow, RiskMedium, RiskHigh, RiskCritical}

// AtLeast reports whether r is at or above the given level.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.ordinal() >= other.ordinal()
}

func (r RiskLevel) ordinal() int {
	for i, level := range riskOrder {
		if level == r {
			return i
		}
	}
	return 0
}

// escalate raises the level by one step, capped at critical.
func (r RiskLevel) escalate() RiskLevel {
	i := r.ordinal()
	if i+1 >= len(riskOrder) {
		return RiskCritical
	}
	return riskOrder[i+1]
}

// RiskFromRedactions derives the risk level from the number of redactions,
// escalated one step when any financial type (credit card, bank account,
// IBAN) is present.
func RiskFromRedactions(count int, types []TokenType) RiskLevel {
	var level RiskLevel
	switch {
	case count == 0:
		return RiskNone
	case count <= 2:
		level = RiskLow
	case count <= 5:
		level = RiskMedium
	case count <= 9:
		level = RiskHigh
	default:
		level = RiskCritical
	}

	for _, t := range types {
		if t.IsFinancial() {
			return level.escalate()
		}
	}
	return level
}
