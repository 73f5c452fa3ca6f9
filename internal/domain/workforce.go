package domain

// Workforce types staffing production buildings.
const (
	WorkforcePioneer    = "PIONEER"
	WorkforceSettler    = "SETTLER"
	WorkforceTechnician = "TECHNICIAN"
	WorkforceEngineer   = "ENGINEER"
	WorkforceScientist  = "SCIENTIST"

	// WorkforceNone marks a recipe that runs without workers.
	WorkforceNone = "NONE"
)

// WorkforceTypes lists workforce types from lowest to highest.
var WorkforceTypes = []string{
	WorkforcePioneer,
	WorkforceSettler,
	WorkforceTechnician,
	WorkforceEngineer,
	WorkforceScientist,
}

// Consumable is a material consumed by workers at a fixed rate.
type Consumable struct {
	Ticker string  `json:"ticker"`
	Rate   float64 `json:"rate"` // units per worker per hour
}

// WorkforceProfile is the consumption profile of one workforce type.
type WorkforceProfile struct {
	Type      string       `json:"type"`
	Necessary []Consumable `json:"necessary"`
	Luxury    []Consumable `json:"luxury"`
}

// All returns necessary consumables followed by luxury consumables.
func (p WorkforceProfile) All() []Consumable {
	all := make([]Consumable, 0, len(p.Necessary)+len(p.Luxury))
	all = append(all, p.Necessary...)
	all = append(all, p.Luxury...)
	return all
}

// Building maps a building code to the workforce staffing it.
type Building struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Workforce map[string]int `json:"workforce"` // workforce type -> headcount
}

// DominantWorkforce returns the workforce type with the largest headcount.
// Ties resolve to the higher workforce type. Returns ("", 0) when unstaffed.
func (b Building) DominantWorkforce() (string, int) {
	var (
		bestType  string
		bestCount int
	)
	for _, wt := range WorkforceTypes {
		if n := b.Workforce[wt]; n > 0 && n >= bestCount {
			bestType, bestCount = wt, n
		}
	}
	return bestType, bestCount
}
