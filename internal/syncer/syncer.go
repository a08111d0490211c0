// Package syncer reconciles candidate row batches against a table store.
//
// A sync pass is a two-phase protocol: read a snapshot of each table, compute
// a pure plan (insert / update / skip per row), then apply the plan in
// dependency order: Publisher → Venue → Authors → Title → Author-Title.
// Title and Author-Title rows reference keys created earlier in the same
// pass, so the order is fixed.
package syncer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rcaap/bibsheet/internal/mapper"
	"github.com/rcaap/bibsheet/internal/sheet"
)

// Options configures a sync pass.
type Options struct {
	// DryRun computes the plan but performs no writes.
	DryRun bool

	// Tables enables writes per table name. A nil map enables all tables.
	Tables map[string]bool
}

func (o Options) enabled(name string) bool {
	if o.Tables == nil {
		return true
	}
	return o.Tables[name]
}

// Merge records two distinct-looking candidates that derived the same key.
// This is an intentional dedup (same DOI, same ORCID, ...), not an error,
// but it must stay observable in the report.
type Merge struct {
	Table   string    `json:"table"`
	Key     string    `json:"key"`
	Dropped sheet.Row `json:"dropped"`
}

// TablePlan holds the planned changes for one table.
type TablePlan struct {
	Table   sheet.Table `json:"-"`
	Name    string      `json:"table"`
	Inserts []sheet.Row `json:"inserts,omitempty"`
	Updates []sheet.Row `json:"updates,omitempty"`
	Skipped int         `json:"skipped"`
}

// Plan is the computed outcome of a sync pass before any write happens.
type Plan struct {
	Tables  []TablePlan        `json:"tables"`
	Merges  []Merge            `json:"merges,omitempty"`
	Entries []mapper.EntryKeys `json:"entries"`
}

// Counts summarizes applied changes for one table.
type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Report is the result of a sync pass. When Err is set by a transport
// failure, Applied names the tables that were fully written before it, so a
// half-applied multi-table write is never silent.
type Report struct {
	DryRun  bool               `json:"dry_run"`
	Tables  map[string]Counts  `json:"tables"`
	Applied []string           `json:"applied"`
	Merges  []Merge            `json:"merges,omitempty"`
	Entries []mapper.EntryKeys `json:"entries"`
}

// Total returns the summed counts across tables.
func (r *Report) Total() Counts {
	var total Counts
	for _, c := range r.Tables {
		total.Inserted += c.Inserted
		total.Updated += c.Updated
		total.Skipped += c.Skipped
	}
	return total
}

// Syncer runs sync passes against one store.
type Syncer struct {
	store sheet.Store
	log   *logrus.Logger
	opts  Options
}

// New creates a Syncer. The store and logger are explicit dependencies;
// nothing is read from ambient state.
func New(store sheet.Store, log *logrus.Logger, opts Options) *Syncer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Syncer{store: store, log: log, opts: opts}
}

// Sync reconciles a candidate batch: snapshot, plan, then apply (unless
// DryRun is set). The snapshot is taken once and not refreshed mid-pass.
func (s *Syncer) Sync(ctx context.Context, batch mapper.Batch) (*Report, error) {
	snapshots := make(map[string]map[string]sheet.Row, len(sheet.SyncOrder))
	for _, t := range sheet.SyncOrder {
		if !s.opts.enabled(t.Name) {
			continue
		}
		snap, err := s.store.ReadTable(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("snapshot of %s: %w", t.Name, err)
		}
		snapshots[t.Name] = snap
	}

	plan := ComputePlan(snapshots, batch, s.opts)

	if s.opts.DryRun {
		report := plan.report(true)
		s.log.WithFields(logrus.Fields{
			"inserts": report.Total().Inserted,
			"updates": report.Total().Updated,
			"skips":   report.Total().Skipped,
		}).Info("dry run: no writes performed")
		return report, nil
	}

	return s.apply(ctx, plan)
}

// ComputePlan diffs candidate rows against table snapshots. It is pure: no
// transport dependency, fully unit-testable.
//
// Per candidate row: absent key → insert; present with differing fields →
// update (candidate fields overwrite, existing fields not named by the
// candidate survive); identical → skip. An empty candidate value never
// clears a populated cell.
func ComputePlan(snapshots map[string]map[string]sheet.Row, batch mapper.Batch, opts Options) *Plan {
	plan := &Plan{Entries: batch.Entries}

	for _, t := range sheet.SyncOrder {
		if !opts.enabled(t.Name) {
			continue
		}
		tp := TablePlan{Table: t, Name: t.Name}
		snapshot := snapshots[t.Name]

		// Fold candidates that collide on a key inside the batch. The
		// first occurrence wins field-wise; a later duplicate that
		// carried different fields is recorded as a merge.
		var order []string
		folded := make(map[string]sheet.Row)
		for _, candidate := range batch.Rows(t) {
			k := t.KeyOf(candidate)
			if first, ok := folded[k]; ok {
				if fold(first, candidate, t) {
					plan.Merges = append(plan.Merges, Merge{Table: t.Name, Key: k, Dropped: candidate})
				}
				continue
			}
			folded[k] = candidate.Clone()
			order = append(order, k)
		}

		for _, k := range order {
			candidate := folded[k]
			existing, ok := snapshot[k]
			if !ok {
				tp.Inserts = append(tp.Inserts, candidate)
				continue
			}
			merged := existing.Clone()
			if changed := overlay(merged, candidate, t); len(changed) > 0 {
				tp.Updates = append(tp.Updates, merged)
			} else {
				tp.Skipped++
			}
		}
		plan.Tables = append(plan.Tables, tp)
	}
	return plan
}

// fold fills empty cells of dst from candidate and reports whether the two
// rows disagreed anywhere. Populated dst cells are kept: within a batch the
// first occurrence of a key wins field-wise.
func fold(dst sheet.Row, candidate sheet.Row, t sheet.Table) bool {
	differs := false
	for _, c := range t.Columns {
		if contains(t.KeyColumns, c) {
			continue
		}
		v := candidate[c]
		if v == "" || dst[c] == v {
			continue
		}
		differs = true
		if dst[c] == "" {
			dst[c] = v
		}
	}
	return differs
}

// overlay copies non-empty candidate values onto dst and returns the names
// of the columns that changed. Key columns are never rewritten.
func overlay(dst sheet.Row, candidate sheet.Row, t sheet.Table) []string {
	var changed []string
	for _, c := range t.Columns {
		if contains(t.KeyColumns, c) {
			continue
		}
		v := candidate[c]
		if v == "" || dst[c] == v {
			continue
		}
		dst[c] = v
		changed = append(changed, c)
	}
	return changed
}

// apply writes the plan table by table. A failure aborts the pass; the
// report's Applied list shows which tables were already written.
func (s *Syncer) apply(ctx context.Context, plan *Plan) (*Report, error) {
	report := plan.report(false)

	for _, tp := range plan.Tables {
		if err := s.store.Insert(ctx, tp.Table, tp.Inserts); err != nil {
			return report, fmt.Errorf("table %s (after %v): %w", tp.Name, report.Applied, err)
		}
		if err := s.store.Update(ctx, tp.Table, tp.Updates); err != nil {
			return report, fmt.Errorf("table %s (after %v): %w", tp.Name, report.Applied, err)
		}
		report.Applied = append(report.Applied, tp.Name)

		s.log.WithFields(logrus.Fields{
			"table":    tp.Name,
			"inserted": len(tp.Inserts),
			"updated":  len(tp.Updates),
			"skipped":  tp.Skipped,
		}).Info("table synced")
	}
	return report, nil
}

// report converts a plan into the per-table counts of a report.
func (p *Plan) report(dryRun bool) *Report {
	r := &Report{
		DryRun:  dryRun,
		Tables:  make(map[string]Counts, len(p.Tables)),
		Applied: []string{},
		Merges:  p.Merges,
		Entries: p.Entries,
	}
	for _, tp := range p.Tables {
		r.Tables[tp.Name] = Counts{
			Inserted: len(tp.Inserts),
			Updated:  len(tp.Updates),
			Skipped:  tp.Skipped,
		}
	}
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
