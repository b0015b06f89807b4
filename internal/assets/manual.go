package assets

import (
	"fmt"
	"sort"
	"sync"
)

// Manual is a Loader whose loads complete only when a test or scenario
// says so. Completions run synchronously inside Resolve and Fail, so the
// caller must be on the UI loop.
type Manual struct {
	mu      sync.Mutex
	pending map[string][]Done
	order   []string
	// sizes is applied to resolved images, keyed by asset name.
	sizes map[string][2]int
}

// NewManual creates an empty manual loader.
func NewManual() *Manual {
	return &Manual{pending: make(map[string][]Done), sizes: make(map[string][2]int)}
}

// Load implements Loader.
func (m *Manual) Load(name string, done Done) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[name]; !ok {
		m.order = append(m.order, name)
	}
	m.pending[name] = append(m.pending[name], done)
}

// SetSize sets the intrinsic size reported when name resolves.
func (m *Manual) SetSize(name string, width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes[name] = [2]int{width, height}
}

// Resolve completes every pending load of name successfully.
func (m *Manual) Resolve(name string) error {
	dones, size, err := m.take(name)
	if err != nil {
		return err
	}
	for _, done := range dones {
		done(&Resource{Name: name, Width: size[0], Height: size[1]}, nil)
	}
	return nil
}

// Fail completes every pending load of name with cause.
func (m *Manual) Fail(name string, cause error) error {
	dones, _, err := m.take(name)
	if err != nil {
		return err
	}
	for _, done := range dones {
		done(nil, cause)
	}
	return nil
}

// ResolveAll resolves every pending load in request order, including loads
// started by completions. Returns the number of assets resolved.
func (m *Manual) ResolveAll() int {
	n := 0
	for {
		names := m.Pending()
		if len(names) == 0 {
			return n
		}
		m.mu.Lock()
		first := m.order[0]
		m.mu.Unlock()
		_ = m.Resolve(first)
		n++
	}
}

// Pending returns the names with outstanding loads, sorted.
func (m *Manual) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.pending))
	for name := range m.pending {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Manual) take(name string) ([]Done, [2]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dones, ok := m.pending[name]
	if !ok {
		return nil, [2]int{}, fmt.Errorf("no pending load for asset %q", name)
	}
	delete(m.pending, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return dones, m.sizes[name], nil
}
