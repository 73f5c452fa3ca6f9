package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid scoring config")

// weightTolerance is how far the weight sum may drift from 1.
const weightTolerance = 1e-6

// Weights of the investment score components. Must sum to 1.
type Weights struct {
	ROI        float64 `yaml:"roi"`
	Liquidity  float64 `yaml:"liquidity"`
	Traded     float64 `yaml:"traded"`
	Saturation float64 `yaml:"saturation"`
	Spread     float64 `yaml:"spread"`
	Volatility float64 `yaml:"volatility"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.ROI + w.Liquidity + w.Traded + w.Saturation + w.Spread + w.Volatility
}

// Normalization holds the values at which a component reaches full credit.
type Normalization struct {
	ROI        float64 `yaml:"roi"`        // percent
	Liquidity  float64 `yaml:"liquidity"`  // traded / (supply + demand)
	Traded     float64 `yaml:"traded"`     // units, log-scaled
	Volatility float64 `yaml:"volatility"` // volatility with zero credit
}

// PenaltyThresholds trigger the multiplicative investment score penalty.
type PenaltyThresholds struct {
	SaturationLow  float64 `yaml:"saturation_low"`
	SaturationHigh float64 `yaml:"saturation_high"`
	SpreadPct      float64 `yaml:"spread_pct"`
	Volatility     float64 `yaml:"volatility"`
}

// RiskThresholds define the risk point step function.
// Points = tier*TierWeight + volatility*VolatilityWeight + supply points.
type RiskThresholds struct {
	TierWeight       float64 `yaml:"tier_weight"`
	VolatilityWeight float64 `yaml:"volatility_weight"`
	ScarceSupply     float64 `yaml:"scarce_supply"` // supply below this adds ScarcePoints
	ScarcePoints     float64 `yaml:"scarce_points"`
	ThinSupply       float64 `yaml:"thin_supply"` // supply below this adds ThinPoints
	ThinPoints       float64 `yaml:"thin_points"`
	LowMax           float64 `yaml:"low_max"`
	MediumMax        float64 `yaml:"medium_max"`
	HighMax          float64 `yaml:"high_max"`
}

// Config is the immutable scoring policy.
type Config struct {
	ROICap         float64           `yaml:"roi_cap"`         // ROI reported for free goods with a positive price
	SaturationCap  float64           `yaml:"saturation_cap"`  // upper bound of saturation
	Penalty        float64           `yaml:"penalty"`         // multiplier per triggered penalty
	DemandFraction float64           `yaml:"demand_fraction"` // demand above supply*fraction counts as demand
	Weights        Weights           `yaml:"weights"`
	Normalization  Normalization     `yaml:"normalization"`
	Penalties      PenaltyThresholds `yaml:"penalties"`
	Risk           RiskThresholds    `yaml:"risk"`
	Advice         AdviceThresholds  `yaml:"advice"`
}

// DefaultConfig returns the default scoring policy.
func DefaultConfig() Config {
	return Config{
		ROICap:         9999,
		SaturationCap:  200,
		Penalty:        0.7,
		DemandFraction: 0.1,
		Weights: Weights{
			ROI:        0.30,
			Liquidity:  0.20,
			Traded:     0.15,
			Saturation: 0.15,
			Spread:     0.10,
			Volatility: 0.10,
		},
		Normalization: Normalization{
			ROI:        100,
			Liquidity:  1,
			Traded:     10000,
			Volatility: 1,
		},
		Penalties: PenaltyThresholds{
			SaturationLow:  20,
			SaturationHigh: 180,
			SpreadPct:      50,
			Volatility:     0.5,
		},
		Risk: RiskThresholds{
			TierWeight:       1.5,
			VolatilityWeight: 10,
			ScarceSupply:     10,
			ScarcePoints:     5,
			ThinSupply:       50,
			ThinPoints:       2,
			LowMax:           3,
			MediumMax:        7,
			HighMax:          12,
		},
		Advice: DefaultAdviceThresholds(),
	}
}

// Validate reports the first policy violation, wrapping ErrInvalidConfig.
// Weights must be non-negative and sum to 1; thresholds must be non-negative.
func (c Config) Validate() error {
	w := c.Weights
	if err := nonNegative(
		field{"weights.roi", w.ROI},
		field{"weights.liquidity", w.Liquidity},
		field{"weights.traded", w.Traded},
		field{"weights.saturation", w.Saturation},
		field{"weights.spread", w.Spread},
		field{"weights.volatility", w.Volatility},
	); err != nil {
		return err
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}

	if c.ROICap <= 0 {
		return fmt.Errorf("%w: roi_cap must be positive", ErrInvalidConfig)
	}
	if c.SaturationCap <= 0 {
		return fmt.Errorf("%w: saturation_cap must be positive", ErrInvalidConfig)
	}
	if c.Penalty <= 0 || c.Penalty > 1 {
		return fmt.Errorf("%w: penalty must be in (0, 1], got %v", ErrInvalidConfig, c.Penalty)
	}
	if c.DemandFraction < 0 {
		return fmt.Errorf("%w: demand_fraction must be non-negative", ErrInvalidConfig)
	}

	n := c.Normalization
	if n.ROI <= 0 || n.Liquidity <= 0 || n.Traded <= 0 || n.Volatility <= 0 {
		return fmt.Errorf("%w: normalization values must be positive", ErrInvalidConfig)
	}

	p := c.Penalties
	if p.SaturationLow < 0 || p.SaturationHigh < 0 || p.SpreadPct < 0 || p.Volatility < 0 {
		return fmt.Errorf("%w: penalty thresholds must be non-negative", ErrInvalidConfig)
	}
	if p.SaturationLow > p.SaturationHigh {
		return fmt.Errorf("%w: penalties.saturation_low exceeds saturation_high", ErrInvalidConfig)
	}

	r := c.Risk
	if err := nonNegative(
		field{"risk.tier_weight", r.TierWeight},
		field{"risk.volatility_weight", r.VolatilityWeight},
		field{"risk.scarce_supply", r.ScarceSupply},
		field{"risk.scarce_points", r.ScarcePoints},
		field{"risk.thin_supply", r.ThinSupply},
		field{"risk.thin_points", r.ThinPoints},
		field{"risk.low_max", r.LowMax},
		field{"risk.medium_max", r.MediumMax},
		field{"risk.high_max", r.HighMax},
	); err != nil {
		return err
	}
	if r.LowMax > r.MediumMax || r.MediumMax > r.HighMax {
		return fmt.Errorf("%w: risk thresholds must be ascending", ErrInvalidConfig)
	}

	a := c.Advice
	if err := nonNegative(field{"advice.strong", a.Strong}, field{"advice.weak", a.Weak}); err != nil {
		return err
	}
	if a.Weak > a.Strong {
		return fmt.Errorf("%w: advice.weak exceeds advice.strong", ErrInvalidConfig)
	}

	return nil
}

type field struct {
	name  string
	value float64
}

func nonNegative(fields ...field) error {
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	return nil
}
