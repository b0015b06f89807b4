// Package ir provides the layout intermediate representation for tetra.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the layout model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - LayoutNode and CommonData are immutable once compiled; they are shared
//     by reference across every runtime node that reads them
//   - Labels are typed (ElementID) and NFC-normalised so the load-status map,
//     the notification bus and the tree index agree on identity
//   - LoadStatusMap merges are monotonic: a loaded entry never reverts
package ir
