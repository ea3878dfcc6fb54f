// Package vm implements the luna value core.
//
// This package contains:
//   - The tagged Value representation with three string size classes
//   - Value equality, strict identity and hashing
//   - The hybrid array/map Table with dynamically checked borrows
//   - Native function values and a minimal value stack
//   - Display, debug and inspector renderings
package vm
