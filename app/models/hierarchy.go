package models

// Hierarchy is the static administrative reference structure: the set of
// province names, administrative unit -> province, and locality ->
// administrative unit. Loaded once per process and treated as immutable
// read-only state afterwards. An absent reference file yields the zero value
// (every lookup misses), which is not an error.
type Hierarchy struct {
	Provinces      map[string]struct{}
	UnitToProvince map[string]string
	LocalityToUnit map[string]string
}

// NewHierarchy returns an empty hierarchy with initialized maps.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		Provinces:      make(map[string]struct{}),
		UnitToProvince: make(map[string]string),
		LocalityToUnit: make(map[string]string),
	}
}

// HasProvince reports whether name is a known province.
func (h *Hierarchy) HasProvince(name string) bool {
	_, ok := h.Provinces[name]
	return ok
}

// ProvinceOf returns the province an administrative unit belongs to, or "".
func (h *Hierarchy) ProvinceOf(unit string) string {
	return h.UnitToProvince[unit]
}

// UnitOf returns the administrative unit a locality belongs to, or "".
func (h *Hierarchy) UnitOf(locality string) string {
	return h.LocalityToUnit[locality]
}

// Empty reports whether the hierarchy holds no reference data at all.
func (h *Hierarchy) Empty() bool {
	return len(h.Provinces) == 0 && len(h.UnitToProvince) == 0 && len(h.LocalityToUnit) == 0
}
