package participant

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/informed-consent-api/internal/participant/model"
	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/stores"
)

func newMockStore(t *testing.T, dbType string) (ResponseStore, provider.DBClientInterface, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	client := provider.NewDBClient(sqlx.NewDb(db, dbType), dbType)
	return newResponseStore(client), client, mock
}

func TestMapToResponse(t *testing.T) {
	resp := mapToResponse(map[string]interface{}{
		"ID":                "r-1",
		"CONSENT_FORM_ID":   "f-1",
		"PARTICIPANT_EMAIL": "a@b.com",
		"FIRST_NAME":        []byte("Ada"),
		"LAST_NAME":         nil,
		"CONSENT_STATE":     "GRANTED",
		"STUDY_KEY":         "study:CS101",
		"HAS_SIGNATURE":     int64(1),
		"CREATED_TIME":      int64(1),
		"UPDATED_TIME":      "2",
	})

	assert.Equal(t, "r-1", resp.ID)
	require.NotNil(t, resp.FirstName)
	assert.Equal(t, "Ada", *resp.FirstName)
	assert.Nil(t, resp.LastName)
	assert.Equal(t, model.ConsentStateGranted, resp.ConsentState)
	assert.True(t, resp.HasSignature)
	assert.Equal(t, int64(2), resp.UpdatedTime)
}

func TestStore_UpsertSignatureUsesDialect(t *testing.T) {
	st, client, mock := newMockStore(t, "postgres")
	sig := &model.Signature{ResponseID: "r-1", Content: []byte{1, 2}, ContentType: "image/png", CreatedTime: 5, UpdatedTime: 5}

	require.Equal(t, "postgres", client.GetDBType())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO RESPONSE_SIGNATURE (RESPONSE_ID, CONTENT, CONTENT_TYPE, CREATED_TIME, UPDATED_TIME) " +
		"VALUES ($1, $2, $3, $4, $5) ON CONFLICT (RESPONSE_ID) DO UPDATE SET CONTENT = EXCLUDED.CONTENT, " +
		"CONTENT_TYPE = EXCLUDED.CONTENT_TYPE, UPDATED_TIME = EXCLUDED.UPDATED_TIME").
		WithArgs("r-1", []byte{1, 2}, "image/png", int64(5), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := client.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.UpsertSignature(tx, sig))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateIdentityPassesNullForAbsentNames(t *testing.T) {
	st, client, mock := newMockStore(t, "mysql")
	first := "Ada"

	mock.ExpectBegin()
	mock.ExpectExec(QueryUpdateIdentity.Query).
		WithArgs("Ada", nil, int64(9), "r-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := client.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.UpdateIdentity(tx, "r-1", &first, nil, 9))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByIDPropagatesErrors(t *testing.T) {
	st, _, mock := newMockStore(t, "mysql")
	mock.ExpectQuery(QueryGetResponseByID.Query).WithArgs("r-1").WillReturnError(errors.New("connection reset"))

	resp, err := st.GetByID(context.Background(), "r-1")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestService_MalformedResponseIDSkipsStore(t *testing.T) {
	_, client, mock := newMockStore(t, "mysql")
	registry := stores.NewStoreRegistry(client, nil, NewStore(client))
	svc := newParticipantService(registry, nil, nil, config.ParticipantConfig{MaxSignatureBytes: 1024})

	_, err := svc.GetSignature(context.Background(), "r-1")
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.ResponseNotFoundError))

	_, err = svc.GetSigningSession(context.Background(), "../etc")
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.ResponseNotFoundError))

	assert.NoError(t, mock.ExpectationsWereMet())
}
