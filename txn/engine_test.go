package txn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/storage/memorystore"
	"github.com/trinitylake/trinitylake-go/txn"
)

func newEngine() *txn.Engine {
	return txn.New(memorystore.New())
}

func TestBeginTransaction_UninitializedLakehouse(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	_, err := e.BeginTransaction(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.KindUninitialized, errors.KindOf(err))
}

func TestCreateLakehouse_ThenBeginTransaction_EmptyCatalog(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	assert.False(t, run.RunningRoot.HasVersion())

	namespaces, err := e.ShowNamespaces(ctx, run)
	require.NoError(t, err)
	assert.Empty(t, namespaces)
}

func TestCreateLakehouse_Twice_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	_, err = e.CreateLakehouse(ctx, "analytics")
	require.Error(t, err)
	assert.Equal(t, errors.KindAlreadyExists, errors.KindOf(err))
}

func TestCreateNamespace_ThenDescribe(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	run, err = e.CreateNamespace(ctx, run, "sales", map[string]string{"owner": "bi-team"})
	require.NoError(t, err)
	assert.True(t, run.RunningRoot.HasVersion())

	def, err := e.DescribeNamespace(ctx, run, "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", def.Name)
	assert.Equal(t, "bi-team", def.Properties["owner"])

	_, err = e.CommitTransaction(ctx, run)
	require.NoError(t, err)
}

func TestCreateNamespace_Duplicate_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	run, err = e.CreateNamespace(ctx, run, "sales", nil)
	require.NoError(t, err)

	_, err = e.CreateNamespace(ctx, run, "sales", nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindAlreadyExists, errors.KindOf(err))
}

func TestDropNamespace_Missing_NotFound(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	_, err = e.DropNamespace(ctx, run, "ghost")
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestCommitTransaction_NothingToCommit(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	_, err = e.CommitTransaction(ctx, run)
	require.Error(t, err)
	assert.Equal(t, errors.KindNothingToCommit, errors.KindOf(err))
}

func TestCommitTransaction_ConflictThenReplayOnFreshBegin(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	first, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	first, err = e.CreateNamespace(ctx, first, "sales", nil)
	require.NoError(t, err)

	second, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	second, err = e.CreateNamespace(ctx, second, "marketing", nil)
	require.NoError(t, err)

	_, err = e.CommitTransaction(ctx, first)
	require.NoError(t, err)

	_, err = e.CommitTransaction(ctx, second)
	require.Error(t, err)
	assert.Equal(t, errors.KindCommitConflict, errors.KindOf(err))

	replay, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	replay, err = e.CreateNamespace(ctx, replay, "marketing", nil)
	require.NoError(t, err)
	_, err = e.CommitTransaction(ctx, replay)
	require.NoError(t, err)

	final, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	names, err := e.ShowNamespaces(ctx, final)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sales", "marketing"}, names)
}

func TestExistencePredicates_NeverError(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	assert.False(t, e.NamespaceExists(ctx, run, "ghost"))
	assert.False(t, e.TableExists(ctx, run, "ghost", "ghost"))

	run, err = e.CreateNamespace(ctx, run, "sales", nil)
	require.NoError(t, err)
	run, err = e.CreateTable(ctx, run, "sales", "orders", nil)
	require.NoError(t, err)

	assert.True(t, e.NamespaceExists(ctx, run, "sales"))
	assert.True(t, e.TableExists(ctx, run, "sales", "orders"))
}

func TestShowTables_FiltersByNamespace(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	run, err = e.CreateNamespace(ctx, run, "sales", nil)
	require.NoError(t, err)
	run, err = e.CreateNamespace(ctx, run, "marketing", nil)
	require.NoError(t, err)

	run, err = e.CreateTable(ctx, run, "sales", "orders", nil)
	require.NoError(t, err)
	run, err = e.CreateTable(ctx, run, "sales", "invoices", nil)
	require.NoError(t, err)
	run, err = e.CreateTable(ctx, run, "marketing", "campaigns", nil)
	require.NoError(t, err)

	salesTables, err := e.ShowTables(ctx, run, "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices", "orders"}, salesTables)

	marketingTables, err := e.ShowTables(ctx, run, "marketing")
	require.NoError(t, err)
	assert.Equal(t, []string{"campaigns"}, marketingTables)
}

func TestDropTable_Missing_NotFound(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)
	run, err = e.CreateNamespace(ctx, run, "sales", nil)
	require.NoError(t, err)

	_, err = e.DropTable(ctx, run, "sales", "ghost")
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestCreateTable_MissingNamespace_NotFound(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	_, err := e.CreateLakehouse(ctx, "analytics")
	require.NoError(t, err)

	run, err := e.BeginTransaction(ctx)
	require.NoError(t, err)

	_, err = e.CreateTable(ctx, run, "ghost", "orders", nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}
