package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbmodel "github.com/wso2/informed-consent-api/internal/system/database/model"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
)

var insertQuery = dbmodel.DBQuery{ID: "INSERT", Query: "INSERT INTO T (ID) VALUES (?)"}

func newRegistry(t *testing.T) (*StoreRegistry, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	client := provider.NewDBClient(sqlx.NewDb(db, "mysql"), "mysql")
	return NewStoreRegistry(client, nil, nil), mock
}

func TestExecuteTransaction_CommitsAllQueries(t *testing.T) {
	registry, mock := newRegistry(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertQuery.Query).WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertQuery.Query).WithArgs("b").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := registry.ExecuteTransaction(context.Background(), []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error { _, err := tx.Exec(insertQuery, "a"); return err },
		func(tx dbmodel.TxInterface) error { _, err := tx.Exec(insertQuery, "b"); return err },
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTransaction_RollsBackOnFailure(t *testing.T) {
	registry, mock := newRegistry(t)
	failure := errors.New("constraint failed")
	mock.ExpectBegin()
	mock.ExpectExec(insertQuery.Query).WithArgs("a").WillReturnError(failure)
	mock.ExpectRollback()

	called := false
	err := registry.ExecuteTransaction(context.Background(), []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error { _, err := tx.Exec(insertQuery, "a"); return err },
		func(tx dbmodel.TxInterface) error { called = true; return nil },
	})

	require.ErrorIs(t, err, failure)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTransaction_BeginFailure(t *testing.T) {
	registry, mock := newRegistry(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := registry.ExecuteTransaction(context.Background(), nil)
	assert.Error(t, err)
}
