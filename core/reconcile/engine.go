package reconcile

import (
	"errors"
	"fmt"
)

// Reconcile computes every comparison from a captured snapshot.
// It is a pure function: identical snapshots and comparisons yield identical results.
// A comparison whose Source or Against failed (or was never collected) is marked
// indeterminate and carries no missing entries; the other comparisons still compute.
func Reconcile(snapshot Snapshot, comparisons []Comparison) Result {
	sets := make(map[SourceKind]IdentitySet)
	identities := func(kind SourceKind) (IdentitySet, error) {
		if set, ok := sets[kind]; ok {
			return set, nil
		}
		outcome, ok := snapshot.Outcomes[kind]
		if !ok {
			return nil, &SourceError{Source: kind, Err: ErrNoAdapter}
		}
		if !outcome.OK() {
			return nil, sourceFailure(kind, outcome.Err)
		}
		set := outcome.Inventory.Identities()
		sets[kind] = set
		return set, nil
	}

	result := Result{
		Organization: snapshot.Organization,
		Comparisons:  make([]ComparisonResult, 0, len(comparisons)),
		Sources:      sourceStatuses(snapshot),
	}

	for _, c := range comparisons {
		cr := ComparisonResult{
			Comparison: c,
			Status:     StatusComplete,
			Missing:    []Identity{},
		}

		source, srcErr := identities(c.Source)
		against, againstErr := identities(c.Against)
		if err := errors.Join(srcErr, againstErr); err != nil {
			cr.Status = StatusIndeterminate
			cr.err = err
			cr.Reason = err.Error()
			result.Comparisons = append(result.Comparisons, cr)
			continue
		}

		cr.Missing = source.Difference(against).Sorted()
		result.Comparisons = append(result.Comparisons, cr)
	}

	return result
}

// sourceFailure makes sure the failure names its source.
func sourceFailure(kind SourceKind, err error) error {
	if err == nil {
		err = fmt.Errorf("%w: adapter returned no inventory", ErrTransport)
	}
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}
	return &SourceError{Source: kind, Err: err}
}

// sourceStatuses reports every collected source in AllSources order.
func sourceStatuses(snapshot Snapshot) []SourceStatus {
	statuses := make([]SourceStatus, 0, len(snapshot.Outcomes))
	for _, kind := range AllSources {
		outcome, ok := snapshot.Outcomes[kind]
		if !ok {
			continue
		}
		status := SourceStatus{Source: kind, OK: outcome.OK()}
		if status.OK {
			status.Devices = outcome.Inventory.Identities().Len()
		} else {
			err := sourceFailure(kind, outcome.Err)
			status.Error = err.Error()
			status.Kind = Classify(err)
		}
		statuses = append(statuses, status)
	}
	return statuses
}
