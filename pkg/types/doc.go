// Package types defines the Recipe entity, the fixed category set, the
// Gateway persistence interface, configuration, and the standard error types
// for the recipebox catalog.
//
// Implementations live in internal packages named after their primary
// mechanism (jsonl, sqlite); the Store and Session that coordinate them live
// in internal/store.
package types
