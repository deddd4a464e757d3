package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	assert.Same(t, db, base.db)
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	//nolint:staticcheck // nil context returns the raw connection
	assert.Same(t, db, base.DB(nil))
}

func TestBaseWithTxKeepsBaseOnNil(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	assert.Same(t, db, base.WithTx(nil).db)

	tx := db.Begin()
	defer tx.Rollback()
	assert.Same(t, tx, base.WithTx(tx).db)
}

func TestFirstReturnsNilWhenMissing(t *testing.T) {
	db := newTestDB(t)

	got, err := First[widget](db.Where("id = ?", 99))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Create(&widget{Name: "gear"}).Error)
	got, err = First[widget](db.Where("name = ?", "gear"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "gear", got.Name)
}
