package discovery

import "context"

// InMemoryDiscovery is a Discovery that serves fragments held in memory
type InMemoryDiscovery struct {
	fragments []Fragment
}

// NewInMemoryDiscovery creates a new InMemoryDiscovery instance
func NewInMemoryDiscovery(fragments ...Fragment) *InMemoryDiscovery {
	return &InMemoryDiscovery{fragments: append([]Fragment(nil), fragments...)}
}

// ListFragments implements Discovery interface
func (d *InMemoryDiscovery) ListFragments(ctx context.Context) ([]Fragment, error) {
	return append([]Fragment(nil), d.fragments...), nil
}
