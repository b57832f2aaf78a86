// Package recipebox holds build metadata for the recipebox module.
package recipebox

// Version is the current release.
const Version = "0.3.0"
