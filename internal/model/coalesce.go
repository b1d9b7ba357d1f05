package model

// Coalesce returns the first value that is present and non-zero. Provider
// payloads report unknown figures as null or 0 interchangeably, so a zero is
// treated as missing. It returns nil when no candidate qualifies.
func Coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil && *v != 0 {
			return v
		}
	}
	return nil
}

// ValueOr dereferences v, or returns def when v is nil.
func ValueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
