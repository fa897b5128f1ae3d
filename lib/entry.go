package lib

// IsEligible reports whether an entry takes part in selector aggregation:
// a named function or event whose inputs field is present, even if empty.
func IsEligible(e *Entry) bool {
	if e == nil || e.Inputs == nil || e.Name == "" {
		return false
	}
	return e.Type == KindFunction || e.Type == KindEvent
}
