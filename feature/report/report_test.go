package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"inventory-reconciler/core/database"
	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var generatedAt = time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)

// fixture returns a run where the directory comparison completed and the
// endpoint-protection comparison is indeterminate.
func fixture() *reconcile.Result {
	inv := func(kind reconcile.SourceKind, hosts ...string) reconcile.Outcome {
		return reconcile.Ok(reconcile.NewInventory(kind, "Contoso Ltd", hosts, generatedAt))
	}
	snapshot := reconcile.Snapshot{
		Organization: "Contoso Ltd",
		Outcomes: map[reconcile.SourceKind]reconcile.Outcome{
			reconcile.SourceDirectory: inv(reconcile.SourceDirectory, "WKS01", "WKS02", "wks03"),
			reconcile.SourceRMM:       inv(reconcile.SourceRMM, "WKS01", "WKS04"),
			reconcile.SourceEndpointProtection: reconcile.Failed(
				fmt.Errorf("%w: token rejected", reconcile.ErrAuthentication)),
		},
	}
	result := reconcile.Reconcile(snapshot, reconcile.DefaultComparisons())
	result.RunID = "run-1"
	result.GeneratedAt = generatedAt
	return &result
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixture()))
	assert.Equal(t, "ComputerName,MissingFrom\nWKS02,Directory\nWKS03,Directory\n", buf.String())
}

func TestWriteCSV_HeaderOnlyWhenNothingMissing(t *testing.T) {
	result := reconcile.Reconcile(reconcile.Snapshot{Organization: "Empty"}, nil)
	data, err := EncodeCSV(&result)
	require.NoError(t, err)
	assert.Equal(t, "ComputerName,MissingFrom\n", string(data))
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contoso.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	require.NoError(t, NewCSVSink(path).Write(context.Background(), fixture()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ComputerName,MissingFrom\nWKS02,Directory\nWKS03,Directory\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestCSVSink_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.csv")
	assert.Error(t, NewCSVSink(path).Write(context.Background(), fixture()))
}

func TestRender(t *testing.T) {
	out := Render(fixture())

	assert.Contains(t, out, "Contoso Ltd")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "missingFromDirectory")
	assert.Contains(t, out, "WKS02")
	assert.Contains(t, out, "authentication")
	assert.Contains(t, out, "missingFromEndpointProtection is indeterminate")

	var buf bytes.Buffer
	require.NoError(t, NewConsoleSink(&buf).Write(context.Background(), fixture()))
	assert.Equal(t, out, buf.String())
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "reports/contoso-ltd/run-1.csv", ObjectName(fixture()))
	assert.Equal(t, "reports/unknown/", OrganizationPrefix("  ///  "))
	assert.Equal(t, "reports/a-b_c/", OrganizationPrefix("A&B_c"))

	noID := &reconcile.Result{Organization: "Fabrikam", GeneratedAt: generatedAt}
	assert.Equal(t, "reports/fabrikam/20260401T083000Z.csv", ObjectName(noID))
}

func TestStorageSink_Write(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", ctx, "reports").Return(true, nil)

	var uploaded []byte
	client.On("PutObject", ctx, "reports", "reports/contoso-ltd/run-1.csv", mock.Anything, mock.Anything,
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
			return opts.ContentType == "text/csv" && opts.UserMetadata["complete"] == "false"
		})).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{Size: 55}, nil)

	sink := NewStorageSink(client, "reports", "", nil)
	require.NoError(t, sink.Write(ctx, fixture()))

	assert.Equal(t, "ComputerName,MissingFrom\nWKS02,Directory\nWKS03,Directory\n", string(uploaded))
	client.AssertExpectations(t)
}

func TestStorageSink_UploadFails(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", ctx, "reports").Return(true, nil)
	client.On("PutObject", ctx, "reports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))

	err := NewStorageSink(client, "reports", "", nil).Write(ctx, fixture())
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestStorageSink_List(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "reports/contoso-ltd/run-1.csv"}
	ch <- minio.ObjectInfo{Key: "reports/contoso-ltd/run-2.csv"}
	close(ch)
	client.On("ListObjects", ctx, "reports", minio.ListObjectsOptions{Prefix: "reports/contoso-ltd/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	objects, err := NewStorageSink(client, "reports", "", nil).List(ctx, "Contoso Ltd")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "reports/contoso-ltd/run-2.csv", objects[1].Key)
}

type failingSink struct{ err error }

func (f failingSink) Write(context.Context, *reconcile.Result) error { return f.err }

func TestMultiSink(t *testing.T) {
	var buf bytes.Buffer
	errA := errors.New("disk full")
	errB := errors.New("bucket gone")

	sink := MultiSink{failingSink{errA}, nil, NewConsoleSink(&buf), failingSink{errB}}
	err := sink.Write(context.Background(), fixture())

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.NotEmpty(t, buf.String(), "a failing sink must not stop the others")

	assert.NoError(t, MultiSink{}.Write(context.Background(), fixture()))
}

func TestDatabaseSink(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	sink := NewDatabaseSink(db)
	require.NoError(t, sink.Migrate())

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, fixture()))

	second := fixture()
	second.RunID = "run-2"
	second.GeneratedAt = generatedAt.Add(time.Hour)
	require.NoError(t, sink.Write(ctx, second))

	runs, err := sink.History(ctx, "Contoso Ltd", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].Complete)
	assert.Equal(t, 1, runs[0].Indeterminate)
	require.Len(t, runs[0].Comparisons, 2)

	var entries []EntryRecord
	require.NoError(t, db.Where("run_id = ?", "run-1").Order("computer_name").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, "WKS02", entries[0].ComputerName)
	assert.Equal(t, "Directory", entries[0].MissingFrom)

	folded, err := sink.History(ctx, " contoso LTD", 10)
	require.NoError(t, err)
	assert.Len(t, folded, 2)

	other, err := sink.History(ctx, "Fabrikam", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDatabaseSink_Errors(t *testing.T) {
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(regexp.QuoteMeta("INSERT INTO `reconcile_runs`")).WillReturnError(errors.New("read-only replica"))
	sqlMock.ExpectRollback()

	sink := NewDatabaseSink(db)
	err = sink.Write(context.Background(), fixture())
	assert.ErrorContains(t, err, "read-only replica")
	assert.NoError(t, sqlMock.ExpectationsWereMet())

	assert.Error(t, sink.Write(context.Background(), &reconcile.Result{}))
}

func TestNewRunRecord(t *testing.T) {
	record := NewRunRecord(fixture())

	assert.Equal(t, "run-1", record.ID)
	assert.Equal(t, generatedAt, record.GeneratedAt)
	require.Len(t, record.Comparisons, 2)
	assert.Equal(t, "complete", record.Comparisons[0].Status)
	assert.Equal(t, 2, record.Comparisons[0].Missing)
	assert.Equal(t, "indeterminate", record.Comparisons[1].Status)
	assert.NotEmpty(t, record.Comparisons[1].Reason)
	assert.Len(t, record.Entries, 2)
}
