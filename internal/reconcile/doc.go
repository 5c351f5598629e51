// Package reconcile drives a sync run: it classifies every source entry
// against the library snapshot, skips items already in the target
// collection, and commits the remaining additions in source-list order.
//
// The work is split into two passes. Classification is pure and touches
// nothing remote, so a whole list can be classified and reported even if
// the server becomes unreachable afterwards. The commit pass performs
// the mutations one at a time; Plex appends collection members in call
// order, so ordering is enforced purely by when each add is submitted.
// Re-running against an already-updated collection classifies every
// previous addition as already a member and performs no mutations.
package reconcile
