package types

import (
	"maps"
	"slices"
)

// FavoriteSet is an unordered set of recipe identifiers.
type FavoriteSet map[string]struct{}

// NewFavoriteSet returns a set holding ids.
func NewFavoriteSet(ids ...string) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s FavoriteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s FavoriteSet) Add(id string) { s[id] = struct{}{} }

func (s FavoriteSet) Remove(id string) { delete(s, id) }

// Clone returns an independent copy. Cloning a nil set yields an empty set.
func (s FavoriteSet) Clone() FavoriteSet {
	cp := make(FavoriteSet, len(s))
	maps.Copy(cp, s)
	return cp
}

// IDs returns the members in sorted order, for stable output.
func (s FavoriteSet) IDs() []string {
	return slices.Sorted(maps.Keys(s))
}

// Snapshot is the full persisted state: the ordered recipe list and the
// favorite set.
type Snapshot struct {
	Recipes   []*Recipe
	Favorites FavoriteSet
}

// Gateway persists a Snapshot as two independent blobs, one for recipes and
// one for favorites.
type Gateway interface {
	// Load reads both blobs. A missing blob is empty. A blob that cannot be
	// read or parsed is reported as a *PersistenceError naming it; the
	// returned Snapshot holds whatever blobs did load. When both fail the
	// errors are joined.
	Load() (Snapshot, error)

	// Save overwrites both blobs. Each blob is written atomically and
	// independently, so a failure on one never corrupts the other.
	Save(Snapshot) error
}
