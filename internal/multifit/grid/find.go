package grid

import (
	"fmt"
	"sort"
)

// FindFrame returns the compiled frame with the given ID. Frames are
// kept sorted by ID, so the lookup is a binary search.
func (g *Grid) FindFrame(id int64) (*Frame, error) {
	i := sort.Search(len(g.Frames), func(i int) bool { return g.Frames[i].ID >= id })
	if i == len(g.Frames) || g.Frames[i].ID != id {
		return nil, fmt.Errorf("frame %d: %w", id, ErrNotFound)
	}
	return &g.Frames[i], nil
}

// FindObject returns the compiled object with the given ID.
func (g *Grid) FindObject(id int64) (*Object, error) {
	i := sort.Search(len(g.Objects), func(i int) bool { return g.Objects[i].ID >= id })
	if i == len(g.Objects) || g.Objects[i].ID != id {
		return nil, fmt.Errorf("object %d: %w", id, ErrNotFound)
	}
	return &g.Objects[i], nil
}

// FilterIndex returns the dense index assigned to a filter name.
func (g *Grid) FilterIndex(name string) (int, error) {
	i, ok := g.Filters[name]
	if !ok {
		return 0, fmt.Errorf("filter %q: %w", name, ErrNotFound)
	}
	return i, nil
}
