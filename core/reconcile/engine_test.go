package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventory(kind SourceKind, hosts ...string) Outcome {
	return Ok(NewInventory(kind, "Contoso", hosts, time.Unix(0, 0)))
}

func snapshot(outcomes map[SourceKind]Outcome) Snapshot {
	return Snapshot{Organization: "Contoso", Outcomes: outcomes}
}

// TestReconcile_EndToEnd checks the Directory/RMM scenario in both directions.
func TestReconcile_EndToEnd(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory: inventory(SourceDirectory, "WKS01", "WKS02", "wks03"),
		SourceRMM:       inventory(SourceRMM, "WKS01", "WKS03"),
	})

	forward, err := ParseComparison("directory:rmm")
	require.NoError(t, err)
	reverse, err := ParseComparison("rmm:directory")
	require.NoError(t, err)

	result := Reconcile(snap, []Comparison{forward, reverse})
	require.Len(t, result.Comparisons, 2)

	assert.Equal(t, StatusComplete, result.Comparisons[0].Status)
	assert.Equal(t, []Identity{"WKS02"}, result.Comparisons[0].Missing)

	assert.Equal(t, StatusComplete, result.Comparisons[1].Status)
	assert.Empty(t, result.Comparisons[1].Missing)
}

func TestReconcile_DefaultComparisons(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory:          inventory(SourceDirectory, "dc01", "wks01", "wks02"),
		SourceRMM:                inventory(SourceRMM, "WKS01", "WKS02", "SRV01"),
		SourceEndpointProtection: inventory(SourceEndpointProtection, "wks01"),
	})

	result := Reconcile(snap, DefaultComparisons())

	dir, ok := result.MissingFromDirectory()
	require.True(t, ok)
	assert.Equal(t, []Identity{"DC01"}, dir.Missing)

	edr, ok := result.MissingFromEndpointProtection()
	require.True(t, ok)
	assert.Equal(t, []Identity{"SRV01", "WKS02"}, edr.Missing)

	assert.True(t, result.Complete())
	assert.NoError(t, result.Indeterminate())
}

// TestReconcile_HostInBothResults shows the comparisons are neither symmetric nor transitive.
func TestReconcile_HostInBothResults(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory:          inventory(SourceDirectory, "WKS09"),
		SourceRMM:                inventory(SourceRMM, "WKS10"),
		SourceEndpointProtection: inventory(SourceEndpointProtection),
	})

	result := Reconcile(snap, DefaultComparisons())
	dir, _ := result.MissingFromDirectory()
	edr, _ := result.MissingFromEndpointProtection()

	assert.Equal(t, []Identity{"WKS09"}, dir.Missing)
	assert.Equal(t, []Identity{"WKS10"}, edr.Missing)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	c, err := ParseComparison("directory:rmm")
	require.NoError(t, err)

	t.Run("Empty source", func(t *testing.T) {
		result := Reconcile(snapshot(map[SourceKind]Outcome{
			SourceDirectory: inventory(SourceDirectory),
			SourceRMM:       inventory(SourceRMM, "WKS01"),
		}), []Comparison{c})
		assert.Equal(t, StatusComplete, result.Comparisons[0].Status)
		assert.Empty(t, result.Comparisons[0].Missing)
	})

	t.Run("Empty against", func(t *testing.T) {
		result := Reconcile(snapshot(map[SourceKind]Outcome{
			SourceDirectory: inventory(SourceDirectory, "wks01", "WKS01", "wks02", ""),
			SourceRMM:       inventory(SourceRMM),
		}), []Comparison{c})
		assert.Equal(t, StatusComplete, result.Comparisons[0].Status)
		assert.Equal(t, []Identity{"WKS01", "WKS02"}, result.Comparisons[0].Missing)
	})
}

// TestReconcile_FailureIsolation checks that a failed source never yields "missing" entries.
func TestReconcile_FailureIsolation(t *testing.T) {
	edrErr := fmt.Errorf("%w: status 401", ErrAuthentication)
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory:          inventory(SourceDirectory, "WKS01", "WKS02"),
		SourceRMM:                inventory(SourceRMM, "WKS01"),
		SourceEndpointProtection: Failed(edrErr),
	})

	result := Reconcile(snap, DefaultComparisons())

	dir, _ := result.MissingFromDirectory()
	assert.Equal(t, StatusComplete, dir.Status)
	assert.Equal(t, []Identity{"WKS02"}, dir.Missing)

	edr, _ := result.MissingFromEndpointProtection()
	assert.Equal(t, StatusIndeterminate, edr.Status)
	assert.Empty(t, edr.Missing)
	assert.Contains(t, edr.Reason, "EndpointProtection")

	err := edr.Err()
	assert.ErrorIs(t, err, ErrIndeterminate)
	assert.ErrorIs(t, err, ErrAuthentication)

	var se *SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, SourceEndpointProtection, se.Source)

	assert.False(t, result.Complete())
	assert.ErrorIs(t, result.Indeterminate(), ErrIndeterminate)

	summary := result.Summary()
	assert.Equal(t, 2, summary.Comparisons)
	assert.Equal(t, 1, summary.Indeterminate)
	assert.Equal(t, map[string]int{ComparisonMissingFromDirectory: 1}, summary.Missing)
	assert.Equal(t, []SourceKind{SourceEndpointProtection}, summary.FailedSources)
}

func TestReconcile_BothSidesFailed(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory: Failed(fmt.Errorf("%w: no OU", ErrLookup)),
		SourceRMM:       Failed(fmt.Errorf("%w: page 3", ErrPartialResult)),
	})

	c, err := ParseComparison("directory:rmm")
	require.NoError(t, err)

	result := Reconcile(snap, []Comparison{c})
	cr := result.Comparisons[0]
	assert.Equal(t, StatusIndeterminate, cr.Status)
	assert.ErrorIs(t, cr.Err(), ErrLookup)
	assert.ErrorIs(t, cr.Err(), ErrPartialResult)
}

func TestReconcile_SourceNotCollected(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory: inventory(SourceDirectory, "WKS01"),
	})

	result := Reconcile(snap, DefaultComparisons())
	for _, c := range result.Comparisons {
		assert.Equal(t, StatusIndeterminate, c.Status)
		assert.ErrorIs(t, c.Err(), ErrNoAdapter)
	}
}

func TestReconcile_SourceStatuses(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceRMM:                inventory(SourceRMM, "a", "A", "b"),
		SourceDirectory:          inventory(SourceDirectory),
		SourceEndpointProtection: Failed(fmt.Errorf("%w: dial tcp", ErrTransport)),
	})

	result := Reconcile(snap, DefaultComparisons())
	require.Len(t, result.Sources, 3)

	assert.Equal(t, SourceStatus{Source: SourceDirectory, OK: true, Devices: 0}, result.Sources[0])
	assert.Equal(t, SourceEndpointProtection, result.Sources[1].Source)
	assert.False(t, result.Sources[1].OK)
	assert.Equal(t, KindTransport, result.Sources[1].Kind)
	assert.Equal(t, SourceStatus{Source: SourceRMM, OK: true, Devices: 2}, result.Sources[2])
}

// TestReconcile_Deterministic runs the same snapshot twice and compares the encoded output.
func TestReconcile_Deterministic(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory:          inventory(SourceDirectory, "z1", "a1", "m1", "B2", "b2"),
		SourceRMM:                inventory(SourceRMM, "q9", "a1", "c3", "x7"),
		SourceEndpointProtection: inventory(SourceEndpointProtection, "c3"),
	})

	first, err := json.Marshal(Reconcile(snap, DefaultComparisons()))
	require.NoError(t, err)
	second, err := json.Marshal(Reconcile(snap, DefaultComparisons()))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestResult_Rows(t *testing.T) {
	snap := snapshot(map[SourceKind]Outcome{
		SourceDirectory:          inventory(SourceDirectory, "wks02", "wks01"),
		SourceRMM:                inventory(SourceRMM, "srv01"),
		SourceEndpointProtection: Failed(ErrTransport),
	})

	result := Reconcile(snap, DefaultComparisons())
	assert.Equal(t, []Row{
		{ComputerName: "WKS01", MissingFrom: "Directory"},
		{ComputerName: "WKS02", MissingFrom: "Directory"},
	}, result.Rows())
}
