package ir

import "sort"

// ElementLoadStatus is the load record of one element.
type ElementLoadStatus struct {
	Label    ElementID `json:"label"`
	IsLoaded bool      `json:"is_loaded"`
}

// LoadStatusMap maps element labels to their load record.
//
// Values are treated as immutable: every mutation helper returns a new map.
type LoadStatusMap map[ElementID]ElementLoadStatus

// Clone returns a shallow copy (entries are values, so this is a full copy).
func (m LoadStatusMap) Clone() LoadStatusMap {
	out := make(LoadStatusMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithLoaded returns m plus {id: loaded}.
func (m LoadStatusMap) WithLoaded(id ElementID) LoadStatusMap {
	out := m.Clone()
	out[id] = ElementLoadStatus{Label: id, IsLoaded: true}
	return out
}

// Merge returns m updated with delta.
//
// The merge is monotonic: an entry that is loaded in m stays loaded even if
// delta carries it as not loaded. Entries absent from delta are kept.
func (m LoadStatusMap) Merge(delta LoadStatusMap) LoadStatusMap {
	out := m.Clone()
	for k, v := range delta {
		if cur, ok := out[k]; ok && cur.IsLoaded {
			continue
		}
		v.Label = k
		out[k] = v
	}
	return out
}

// Loaded returns the number of loaded entries.
func (m LoadStatusMap) Loaded() int {
	n := 0
	for _, v := range m {
		if v.IsLoaded {
			n++
		}
	}
	return n
}

// Progress returns the loaded fraction in [0, 1]. An empty map is 0.
func (m LoadStatusMap) Progress() float64 {
	if len(m) == 0 {
		return 0
	}
	return float64(m.Loaded()) / float64(len(m))
}

// AllLoaded reports whether the map is non-empty and fully loaded.
func (m LoadStatusMap) AllLoaded() bool {
	return len(m) > 0 && m.Loaded() == len(m)
}

// Pending returns the labels not yet loaded, sorted.
func (m LoadStatusMap) Pending() []ElementID {
	var out []ElementID
	for k, v := range m {
		if !v.IsLoaded {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
