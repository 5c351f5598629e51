// Package history persists completed sync runs to SQLite so past
// reconciliations can be reviewed with `reelist runs`. Each run stores
// its summary row plus every per-entry record in source-list order.
package history
