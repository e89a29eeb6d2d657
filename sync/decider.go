package sync

import (
	"fmt"
)

// Action is the write decision for one deal.
type Action int

const (
	// ActionNone means nothing is sent over the network.
	ActionNone Action = iota
	// ActionCreate means no existing page matched and one must be created.
	ActionCreate
	// ActionUpdate means a matched page needs a patch.
	ActionUpdate
)

// FieldChange records one per-field difference between the existing page
// and the candidate payload.
type FieldChange struct {
	Name string
	Old  string
	New  string
}

// String renders the change line used in notification messages.
func (c FieldChange) String() string {
	old := c.Old
	if old == "" {
		old = "vazio"
	}
	return fmt.Sprintf("- *%s:* de '%s' para '%s'", c.Name, old, c.New)
}

// StatusConflict records a divergence between the destination's current
// status and the status implied by the source stage. The destination
// value was set by hand and wins; the conflict is surfaced instead of
// overwritten.
type StatusConflict struct {
	Current string
	Target  string
}

// Decision is the outcome of reconciling one deal against the snapshot.
type Decision struct {
	Action   Action
	Payload  Properties
	Changes  []FieldChange
	Conflict *StatusConflict
}

// Reconciler decides create vs. update vs. no-op for a matched deal.
// Re-running it over an unchanged source and destination always yields
// a no-op, so a run can be repeated safely.
type Reconciler struct {
	Extract        Extractor
	StatusProperty string
}

// NewReconciler builds a reconciler from the run configuration.
func NewReconciler(cfg Config) Reconciler {
	return Reconciler{
		Extract:        Extractor{MultiSelect: MultiSelectMode(cfg.MultiSelectCompare)},
		StatusProperty: cfg.Properties.Status,
	}
}

// Reconcile compares the candidate payload against the matched page.
// A nil page means create. For a matched page, every candidate property
// except status is diffed through the extractor; the status field gets
// the divergence guard: a hand-edited status is never overwritten, it is
// removed from the payload and reported as a conflict instead. A write
// is issued when other fields changed or when the status can be advanced
// without conflict.
func (r Reconciler) Reconcile(page *NotionPage, candidate Properties, status string) Decision {
	if page == nil {
		return Decision{Action: ActionCreate, Payload: candidate}
	}

	var changes []FieldChange
	for _, name := range candidate.Names() {
		if name == r.StatusProperty {
			continue
		}
		oldValue := r.Extract.FromAPIProperty(page.Property(name))
		newValue := r.Extract.FromPayloadProperty(candidate.Get(name))
		if oldValue != newValue {
			changes = append(changes, FieldChange{Name: name, Old: oldValue, New: newValue})
		}
	}

	currentStatus := r.Extract.FromAPIProperty(page.Property(r.StatusProperty))
	var conflict *StatusConflict
	if currentStatus != "" && currentStatus != status {
		conflict = &StatusConflict{Current: currentStatus, Target: status}
	}

	updateStatus := conflict == nil && currentStatus != status
	if len(changes) == 0 && !updateStatus {
		return Decision{Action: ActionNone, Changes: changes, Conflict: conflict}
	}

	payload := candidate
	if !updateStatus {
		payload.Delete(r.StatusProperty)
	}
	return Decision{Action: ActionUpdate, Payload: payload, Changes: changes, Conflict: conflict}
}
