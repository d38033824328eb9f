// Package sink persists the reconciled table. Every sink follows a
// replace-all contract: prior content at the target is fully superseded by
// this run's table, never appended to.
package sink

import "energy_tracker/internal/reconcile"

type Sink interface {
	Name() string
	Write(table *reconcile.Table) error
}
