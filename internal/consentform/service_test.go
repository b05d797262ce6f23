package consentform

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/stores"
	"github.com/wso2/informed-consent-api/internal/testutil"
)

func newTestService(t *testing.T) *consentFormService {
	t.Helper()
	dbClient := testutil.SetupTestDBClient(t)
	registry := stores.NewStoreRegistry(dbClient, NewStore(dbClient), nil)
	svc := newConsentFormService(registry).(*consentFormService)

	var clock int64 = 1_700_000_000_000
	svc.now = func() int64 {
		clock++
		return clock
	}
	return svc
}

func validCreateRequest(studyCode string) model.CreateRequest {
	return model.CreateRequest{
		StudyCode:                  studyCode,
		Institution:                model.InstitutionRegensburg,
		ResearchType:               model.ResearchTypeOnline,
		Title:                      "Reading behaviour",
		Purpose:                    "Study reading",
		Goal:                       "Improve layouts",
		StartDate:                  "2025-01-10",
		EndDate:                    "2025-02-10",
		Duration:                   20,
		DurationUnit:               "minutes",
		Participants:               50,
		ProcedureSteps:             []string{" Read a text ", "Answer questions"},
		CollectedData:              []string{"DEMOGRAPHICS", "USER_INPUT", "DEMOGRAPHICS"},
		DataDeletion:               "After publication",
		Publication:                model.PublicationFullDataset,
		PrincipalInvestigator:      "Prof. Chen",
		PrincipalInvestigatorEmail: "chen@uni.example",
		SigningMethod:              string(model.SigningMethodCheckbox),
		FormLink:                   "https://survey.example/r/${participantID}",
	}
}

func TestCreateForm_PersistsAndNormalizes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateForm(ctx, validCreateRequest("reading-1"))
	require.Nil(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "en", created.Language)
	assert.Equal(t, model.CompensationNone, created.Compensation)
	assert.Equal(t, model.AnonymizationNone, created.Anonymization)
	assert.Equal(t, []string{"Read a text", "Answer questions"}, created.ProcedureSteps)
	assert.Equal(t, []string{"DEMOGRAPHICS", "USER_INPUT"}, created.CollectedData)
	assert.Nil(t, created.OtherInstitution)

	loaded, err := svc.GetForm(ctx, created.ID)
	require.Nil(t, err)
	assert.Equal(t, created, loaded)
}

func TestCreateForm_ValidationError(t *testing.T) {
	svc := newTestService(t)
	req := validCreateRequest("")
	req.ProcedureSteps = nil

	form, err := svc.CreateForm(context.Background(), req)
	assert.Nil(t, form)
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.ValidationError))
}

func TestGetForm_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetForm(context.Background(), "missing")
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.ConsentFormNotFoundError))
	assert.True(t, err.IsNotFound())
}

func TestGetForm_MalformedIDSkipsStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	client := provider.NewDBClient(sqlx.NewDb(db, "mysql"), "mysql")
	svc := newConsentFormService(stores.NewStoreRegistry(client, NewStore(client), nil))

	_, serviceErr := svc.GetForm(context.Background(), "F2")
	require.NotNil(t, serviceErr)
	assert.True(t, serviceErr.Is(serviceerror.ConsentFormNotFoundError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFormsByStudyCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateForm(ctx, validCreateRequest("ab-test"))
	require.Nil(t, err)
	b, err := svc.CreateForm(ctx, validCreateRequest("ab-test"))
	require.Nil(t, err)
	_, err = svc.CreateForm(ctx, validCreateRequest("other"))
	require.Nil(t, err)
	_, err = svc.CreateForm(ctx, validCreateRequest(""))
	require.Nil(t, err)

	forms, err := svc.ListFormsByStudyCode(ctx, " ab-test ")
	require.Nil(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, a.ID, forms[0].ID)
	assert.Equal(t, b.ID, forms[1].ID)

	none, err := svc.ListFormsByStudyCode(ctx, "unknown")
	require.Nil(t, err)
	assert.Empty(t, none)

	_, err = svc.ListFormsByStudyCode(ctx, "  ")
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.ValidationError))
}

func TestListForms_Paginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		f, err := svc.CreateForm(ctx, validCreateRequest(fmt.Sprintf("s-%d", i)))
		require.Nil(t, err)
		ids = append(ids, f.ID)
	}

	page, total, err := svc.ListForms(ctx, 2, 1)
	require.Nil(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	// newest first
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)
}
