package models

// HolidayMap maps an MMDD key to the holiday names observed on that day, in
// the order the upstream API listed them.
type HolidayMap map[string][]string

// Merge appends every name from other into m.
func (m HolidayMap) Merge(other HolidayMap) {
	for key, names := range other {
		m[key] = append(m[key], names...)
	}
}

// Clone returns a deep copy so callers cannot mutate cached data.
func (m HolidayMap) Clone() HolidayMap {
	out := make(HolidayMap, len(m))
	for key, names := range m {
		out[key] = append([]string(nil), names...)
	}
	return out
}
