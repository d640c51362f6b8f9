package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies one of the three sources of record.
type SourceKind string

const (
	// SourceDirectory is the on-premises identity directory.
	SourceDirectory SourceKind = "directory"
	// SourceEndpointProtection is the security-agent console.
	SourceEndpointProtection SourceKind = "endpoint_protection"
	// SourceRMM is the remote-monitoring-and-management platform.
	SourceRMM SourceKind = "rmm"
)

// AllSources lists every known source in reporting order.
var AllSources = []SourceKind{SourceDirectory, SourceEndpointProtection, SourceRMM}

// DisplayName returns the label used in reports (e.g. the MissingFrom column).
func (k SourceKind) DisplayName() string {
	switch k {
	case SourceDirectory:
		return "Directory"
	case SourceEndpointProtection:
		return "EndpointProtection"
	case SourceRMM:
		return "RMM"
	default:
		return string(k)
	}
}

// ParseSourceKind parses a source name. Common aliases are accepted.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "directory", "ad", "ldap":
		return SourceDirectory, nil
	case "endpoint_protection", "endpointprotection", "edr", "av":
		return SourceEndpointProtection, nil
	case "rmm":
		return SourceRMM, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Inventory is the set of raw hostnames one adapter returned for one organization.
// It is never mutated after construction.
type Inventory struct {
	// Source is the source of record that produced this inventory.
	Source SourceKind
	// Organization is the organization filter the inventory was collected for.
	Organization string
	// Hosts holds the raw hostnames in the order the source returned them.
	Hosts []string
	// CollectedAt is when the adapter finished collecting.
	CollectedAt time.Time
}

// NewInventory builds an Inventory owning a private copy of hosts.
func NewInventory(source SourceKind, organization string, hosts []string, collectedAt time.Time) *Inventory {
	owned := make([]string, len(hosts))
	copy(owned, hosts)
	return &Inventory{
		Source:       source,
		Organization: organization,
		Hosts:        owned,
		CollectedAt:  collectedAt,
	}
}

// Identities returns the normalized identity set of the inventory.
func (i *Inventory) Identities() IdentitySet {
	return NormalizeAll(i.Hosts)
}

// Outcome is the result of collecting one source: either an inventory
// (possibly empty) or the error that prevented collection.
type Outcome struct {
	Inventory *Inventory
	Err       error
}

// Ok wraps a successfully collected inventory.
func Ok(inv *Inventory) Outcome {
	return Outcome{Inventory: inv}
}

// Failed wraps a collection failure.
func Failed(err error) Outcome {
	return Outcome{Err: err}
}

// OK reports whether the source was collected successfully.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Inventory != nil
}

// Snapshot captures the outcome of every collected source for one run.
type Snapshot struct {
	Organization string
	Outcomes     map[SourceKind]Outcome
}

// Comparison computes Source \ Against: hosts present in Source but absent from Against.
type Comparison struct {
	// Name identifies the comparison in results (e.g. "missingFromDirectory").
	Name string `json:"name"`
	// Label is written to the MissingFrom report column.
	Label string `json:"label"`
	// Source is the authoritative side of the comparison.
	Source SourceKind `json:"source"`
	// Against is the side checked for coverage.
	Against SourceKind `json:"against"`
}

const (
	// ComparisonMissingFromDirectory is Directory \ RMM.
	ComparisonMissingFromDirectory = "missingFromDirectory"
	// ComparisonMissingFromEndpointProtection is RMM \ EndpointProtection.
	ComparisonMissingFromEndpointProtection = "missingFromEndpointProtection"
)

// DefaultComparisons returns the comparison set used when none is configured.
// Their names and labels are the established report vocabulary and do not follow
// the custom-pair rule of ParseComparison: missingFromDirectory (Directory \ RMM)
// is labelled "Directory", missingFromEndpointProtection (RMM \ EndpointProtection)
// is labelled "EndpointProtection".
func DefaultComparisons() []Comparison {
	return []Comparison{
		{
			Name:    ComparisonMissingFromDirectory,
			Label:   SourceDirectory.DisplayName(),
			Source:  SourceDirectory,
			Against: SourceRMM,
		},
		{
			Name:    ComparisonMissingFromEndpointProtection,
			Label:   SourceEndpointProtection.DisplayName(),
			Source:  SourceRMM,
			Against: SourceEndpointProtection,
		},
	}
}

// ParseComparison parses "source:against" (e.g. "directory:rmm").
// The two default pairings keep their well-known names and labels, so
// "directory:rmm" is labelled "Directory" (its Source). Any other pairing is
// named "<source>NotIn<Against>" and labelled with its Against source, the
// system the hosts are actually absent from.
func ParseComparison(s string) (Comparison, error) {
	left, right, ok := strings.Cut(s, ":")
	if !ok {
		return Comparison{}, fmt.Errorf("invalid comparison %q: expected source:against", s)
	}
	source, err := ParseSourceKind(left)
	if err != nil {
		return Comparison{}, fmt.Errorf("invalid comparison %q: %w", s, err)
	}
	against, err := ParseSourceKind(right)
	if err != nil {
		return Comparison{}, fmt.Errorf("invalid comparison %q: %w", s, err)
	}
	if source == against {
		return Comparison{}, fmt.Errorf("invalid comparison %q: source and against are the same", s)
	}

	for _, c := range DefaultComparisons() {
		if c.Source == source && c.Against == against {
			return c, nil
		}
	}

	return Comparison{
		Name:    string(source) + "NotIn" + against.DisplayName(),
		Label:   against.DisplayName(),
		Source:  source,
		Against: against,
	}, nil
}

// ParseComparisons parses a list of "source:against" pairs.
// An empty list yields DefaultComparisons.
func ParseComparisons(list []string) ([]Comparison, error) {
	if len(list) == 0 {
		return DefaultComparisons(), nil
	}

	comparisons := make([]Comparison, 0, len(list))
	seen := make(map[string]struct{})
	for _, s := range list {
		c, err := ParseComparison(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		comparisons = append(comparisons, c)
	}
	return comparisons, nil
}

// Status is the state of one comparison.
type Status string

const (
	// StatusComplete means both sides were collected and Missing is authoritative.
	StatusComplete Status = "complete"
	// StatusIndeterminate means at least one side failed; Missing is empty and must not be trusted.
	StatusIndeterminate Status = "indeterminate"
)

// ComparisonResult is the outcome of one Comparison.
type ComparisonResult struct {
	Comparison

	// Status tells whether Missing can be trusted.
	Status Status `json:"status"`

	// Missing holds the identities of Source absent from Against, in ascending order.
	Missing []Identity `json:"missing"`

	// Reason describes why the comparison is indeterminate.
	Reason string `json:"reason,omitempty"`

	err error
}

// Err returns the cause of an indeterminate comparison, wrapping ErrIndeterminate.
func (c ComparisonResult) Err() error {
	if c.Status != StatusIndeterminate {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", c.Name, ErrIndeterminate, c.err)
}

// SourceStatus reports how one source fared during collection.
type SourceStatus struct {
	Source  SourceKind `json:"source"`
	OK      bool       `json:"ok"`
	Devices int        `json:"devices"`
	Error   string     `json:"error,omitempty"`
	Kind    string     `json:"error_kind,omitempty"`
}

// Result is the output of one reconciliation run. It must not be modified after creation.
type Result struct {
	// RunID uniquely identifies the run. Empty for results built directly by Reconcile.
	RunID string `json:"run_id,omitempty"`

	// Organization is the organization filter of the run.
	Organization string `json:"organization"`

	// GeneratedAt is when the run finished. Zero for results built directly by Reconcile.
	GeneratedAt time.Time `json:"generated_at"`

	// Comparisons holds one entry per configured comparison, in configuration order.
	Comparisons []ComparisonResult `json:"comparisons"`

	// Sources holds one entry per collected source.
	Sources []SourceStatus `json:"sources"`
}

// Comparison returns the result of the named comparison.
func (r *Result) Comparison(name string) (ComparisonResult, bool) {
	for _, c := range r.Comparisons {
		if c.Name == name {
			return c, true
		}
	}
	return ComparisonResult{}, false
}

// MissingFromDirectory returns the Directory \ RMM comparison.
func (r *Result) MissingFromDirectory() (ComparisonResult, bool) {
	return r.Comparison(ComparisonMissingFromDirectory)
}

// MissingFromEndpointProtection returns the RMM \ EndpointProtection comparison.
func (r *Result) MissingFromEndpointProtection() (ComparisonResult, bool) {
	return r.Comparison(ComparisonMissingFromEndpointProtection)
}

// Complete reports whether every comparison could be computed.
func (r *Result) Complete() bool {
	for _, c := range r.Comparisons {
		if c.Status != StatusComplete {
			return false
		}
	}
	return true
}

// Indeterminate returns the joined causes of every indeterminate comparison, or nil.
func (r *Result) Indeterminate() error {
	var errs []error
	for _, c := range r.Comparisons {
		if err := c.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Row is one line of the tabular report.
type Row struct {
	ComputerName string `json:"ComputerName"`
	MissingFrom  string `json:"MissingFrom"`
}

// Rows flattens the complete comparisons into report rows,
// ordered by comparison then by computer name.
func (r *Result) Rows() []Row {
	var rows []Row
	for _, c := range r.Comparisons {
		if c.Status != StatusComplete {
			continue
		}
		for _, id := range c.Missing {
			rows = append(rows, Row{ComputerName: string(id), MissingFrom: c.Label})
		}
	}
	return rows
}

// Summary provides aggregate counts for a result.
type Summary struct {
	// Comparisons is the number of comparisons in the run.
	Comparisons int `json:"comparisons"`

	// Indeterminate counts comparisons that could not be computed.
	Indeterminate int `json:"indeterminate"`

	// Missing counts missing identities per comparison name.
	Missing map[string]int `json:"missing"`

	// FailedSources lists sources that could not be collected.
	FailedSources []SourceKind `json:"failed_sources"`
}

// Summary returns aggregate counts for the result.
func (r *Result) Summary() Summary {
	s := Summary{
		Comparisons:   len(r.Comparisons),
		Missing:       make(map[string]int, len(r.Comparisons)),
		FailedSources: []SourceKind{},
	}
	for _, c := range r.Comparisons {
		if c.Status == StatusIndeterminate {
			s.Indeterminate++
			continue
		}
		s.Missing[c.Name] = len(c.Missing)
	}
	for _, src := range r.Sources {
		if !src.OK {
			s.FailedSources = append(s.FailedSources, src.Source)
		}
	}
	return s
}
