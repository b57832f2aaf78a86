// Package sqlite exposes the SQLite persistence gateway for programs that
// embed the recipe catalog, keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/recipebox/internal/sqlite"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// NewGateway returns a types.Gateway that keeps recipes and favorites in
// recipes.db and favorites.db under dataDir. Nothing is created until the
// first Save.
//
// Example:
//
//	gw := sqlite.NewGateway(".recipebox-db")
//	snap, err := gw.Load()
func NewGateway(dataDir string) types.Gateway {
	return sqlite.NewGateway(dataDir)
}
