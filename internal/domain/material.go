package domain

// Material is a tradable good in the economy catalog.
type Material struct {
	Ticker   string  `json:"ticker"`   // unique key, e.g. "FE"
	Name     string  `json:"name"`     // display name
	Category string  `json:"category"` // e.g. "metals"
	Tier     int     `json:"tier"`     // 0 = raw/extractable
	Weight   float64 `json:"weight"`   // t per unit
	Volume   float64 `json:"volume"`   // m3 per unit
}

// IsRaw reports whether the material is extractable rather than manufactured.
func (m Material) IsRaw() bool {
	return m.Tier <= 0
}
