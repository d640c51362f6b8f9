// Package reconcile provides the engine that reconciles device inventories
// collected from three sources of record: the identity directory, the
// endpoint-protection console and the RMM platform.
//
// The engine is split in three parts:
//
//  1. Adapter: source-specific collection of raw hostnames for one organization.
//     Adapters follow pagination to the end, never retry and fail explicitly
//     instead of returning an empty inventory.
//
//  2. Collect: runs every adapter needed by the configured comparisons
//     concurrently, each bounded by its own timeout, and captures the outcome
//     of every source (inventory or error) in a Snapshot.
//
//  3. Reconcile: a pure function of the Snapshot. It normalizes identities
//     (trim + upper-case, blanks dropped) and computes one asymmetric set
//     difference per Comparison. A comparison touching a failed source is
//     reported as indeterminate instead of producing false "missing" entries.
//
// # Default comparisons
//
//   - missingFromDirectory: Directory \ RMM
//   - missingFromEndpointProtection: RMM \ EndpointProtection
//
// The comparison set is configurable; see ParseComparison.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Adapters: map[reconcile.SourceKind]reconcile.Adapter{
//	        reconcile.SourceDirectory:          directoryAdapter,
//	        reconcile.SourceRMM:                rmmAdapter,
//	        reconcile.SourceEndpointProtection: edrAdapter,
//	    },
//	    Comparisons: reconcile.DefaultComparisons(),
//	    Timeout:     2 * time.Minute,
//	}
//
//	runner, err := reconcile.NewRunner(spec, logger)
//	result, err := runner.Run(ctx, "Contoso")
package reconcile
