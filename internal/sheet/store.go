package sheet

import "context"

// Store reads and writes table rows in a backing spreadsheet or database.
//
// A sync pass calls ReadTable once per table to take a snapshot, computes a
// plan against it, then applies the plan with Insert and Update. The snapshot
// is not refreshed mid-pass; concurrent writers are not coordinated here.
type Store interface {
	// ReadTable returns the current contents of a table as key → row.
	ReadTable(ctx context.Context, t Table) (map[string]Row, error)

	// Insert appends new rows to a table.
	Insert(ctx context.Context, t Table, rows []Row) error

	// Update overwrites existing rows, matched by the table's key columns.
	// Rows must be complete: callers merge candidate fields into the
	// existing row before updating. Update requires a prior ReadTable of
	// the same table in the same pass.
	Update(ctx context.Context, t Table, rows []Row) error

	// Close releases the underlying connection, if any.
	Close() error
}
