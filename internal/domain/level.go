package domain

import "fmt"

// RiskLevel is an ordinal risk category.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

var riskNames = [...]string{"Low", "Medium", "High", "Very High"}

func (r RiskLevel) String() string {
	if r < 0 || int(r) >= len(riskNames) {
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
	return riskNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	v, err := parseOrdinal(riskNames[:], string(b), "risk level")
	*r = RiskLevel(v)
	return err
}

// Viability is an ordinal production viability category.
type Viability int

const (
	NotViable Viability = iota
	Marginal
	Viable
	HighlyViable
)

var viabilityNames = [...]string{"Not Viable", "Marginal", "Viable", "Highly Viable"}

func (v Viability) String() string {
	if v < 0 || int(v) >= len(viabilityNames) {
		return fmt.Sprintf("Viability(%d)", int(v))
	}
	return viabilityNames[v]
}

// MarshalText implements encoding.TextMarshaler.
func (v Viability) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Viability) UnmarshalText(b []byte) error {
	n, err := parseOrdinal(viabilityNames[:], string(b), "viability")
	*v = Viability(n)
	return err
}

// OpportunityLevel is an ordinal bucket of arbitrage attractiveness.
type OpportunityLevel int

const (
	OpportunityVeryLow OpportunityLevel = iota
	OpportunityLow
	OpportunityMedium
	OpportunityHigh
	OpportunityVeryHigh
)

var opportunityNames = [...]string{"Very Low", "Low", "Medium", "High", "Very High"}

func (o OpportunityLevel) String() string {
	if o < 0 || int(o) >= len(opportunityNames) {
		return fmt.Sprintf("OpportunityLevel(%d)", int(o))
	}
	return opportunityNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o OpportunityLevel) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OpportunityLevel) UnmarshalText(b []byte) error {
	n, err := parseOrdinal(opportunityNames[:], string(b), "opportunity level")
	*o = OpportunityLevel(n)
	return err
}

// ParseRiskLevel parses a risk level name.
func ParseRiskLevel(s string) (RiskLevel, error) {
	n, err := parseOrdinal(riskNames[:], s, "risk level")
	return RiskLevel(n), err
}

// ParseViability parses a viability name.
func ParseViability(s string) (Viability, error) {
	n, err := parseOrdinal(viabilityNames[:], s, "viability")
	return Viability(n), err
}

// ParseOpportunityLevel parses an opportunity level name.
func ParseOpportunityLevel(s string) (OpportunityLevel, error) {
	n, err := parseOrdinal(opportunityNames[:], s, "opportunity level")
	return OpportunityLevel(n), err
}

func parseOrdinal(names []string, s, what string) (int, error) {
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
