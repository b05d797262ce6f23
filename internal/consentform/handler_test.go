package consentform

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/constants"
	"github.com/wso2/informed-consent-api/internal/system/error/apierror"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/middleware"
)

type mockConsentFormService struct {
	mock.Mock
}

func (m *mockConsentFormService) CreateForm(ctx context.Context, req model.CreateRequest) (*model.ConsentForm, *serviceerror.ServiceError) {
	args := m.Called(ctx, req)
	form, _ := args.Get(0).(*model.ConsentForm)
	serr, _ := args.Get(1).(*serviceerror.ServiceError)
	return form, serr
}

func (m *mockConsentFormService) GetForm(ctx context.Context, formID string) (*model.ConsentForm, *serviceerror.ServiceError) {
	args := m.Called(ctx, formID)
	form, _ := args.Get(0).(*model.ConsentForm)
	serr, _ := args.Get(1).(*serviceerror.ServiceError)
	return form, serr
}

func (m *mockConsentFormService) ListForms(ctx context.Context, limit, offset int) ([]model.ConsentForm, int, *serviceerror.ServiceError) {
	args := m.Called(ctx, limit, offset)
	forms, _ := args.Get(0).([]model.ConsentForm)
	serr, _ := args.Get(2).(*serviceerror.ServiceError)
	return forms, args.Int(1), serr
}

func (m *mockConsentFormService) ListFormsByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, *serviceerror.ServiceError) {
	args := m.Called(ctx, studyCode)
	forms, _ := args.Get(0).([]model.ConsentForm)
	serr, _ := args.Get(1).(*serviceerror.ServiceError)
	return forms, serr
}

func newTestRouter(svc ConsentFormService, sec config.SecurityConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerRoutes(r.Group("/api/v1"), middleware.BasicAuthMiddleware(sec), newConsentFormHandler(svc))
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierror.ErrorResponse {
	t.Helper()
	var body apierror.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandler_CreateForm(t *testing.T) {
	svc := new(mockConsentFormService)
	svc.On("CreateForm", mock.Anything, mock.MatchedBy(func(req model.CreateRequest) bool {
		return req.Title == "T" && req.SigningMethod == "CHECKBOX"
	})).Return(&model.ConsentForm{ID: "f-1", Title: "T"}, nil)

	r := newTestRouter(svc, config.SecurityConfig{})
	body, _ := json.Marshal(map[string]interface{}{"title": "T", "signingMethod": "CHECKBOX"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consent-forms", bytes.NewReader(body))
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var form model.ConsentForm
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
	assert.Equal(t, "f-1", form.ID)
	svc.AssertExpectations(t)
}

func TestHandler_CreateFormRejectsMalformedBody(t *testing.T) {
	svc := new(mockConsentFormService)
	r := newTestRouter(svc, config.SecurityConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consent-forms", bytes.NewBufferString("{not json"))
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, serviceerror.InvalidRequestError.Error, decodeError(t, w).Code)
	svc.AssertNotCalled(t, "CreateForm", mock.Anything, mock.Anything)
}

func TestHandler_GetFormNotFound(t *testing.T) {
	svc := new(mockConsentFormService)
	svc.On("GetForm", mock.Anything, "nope").
		Return(nil, serviceerror.CustomServiceError(serviceerror.ConsentFormNotFoundError, "consent form with ID 'nope' not found"))

	r := newTestRouter(svc, config.SecurityConfig{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/consent-forms/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "consent_form_not_found", decodeError(t, w).Code)
}

func TestHandler_GetFormHidesServerErrors(t *testing.T) {
	svc := new(mockConsentFormService)
	svc.On("GetForm", mock.Anything, "f-1").
		Return(nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to retrieve consent form: disk I/O error"))

	r := newTestRouter(svc, config.SecurityConfig{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/consent-forms/f-1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, constants.GenericErrorMessage, body.Description)
	assert.NotContains(t, w.Body.String(), "disk I/O")
}

func TestHandler_ListFormsPagination(t *testing.T) {
	svc := new(mockConsentFormService)
	svc.On("ListForms", mock.Anything, 10, 20).Return([]model.ConsentForm{{ID: "a"}}, 21, nil)

	r := newTestRouter(svc, config.SecurityConfig{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/consent-forms?limit=10&offset=20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var page model.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 20, page.Offset)
	require.Len(t, page.Forms, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/consent-forms?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ResearcherRoutesRequireCredentials(t *testing.T) {
	sec := config.SecurityConfig{BasicAuth: config.BasicAuthConfig{
		Enabled: true,
		Users:   []config.BasicAuthUser{{Username: "researcher", Password: "secret"}},
	}}
	svc := new(mockConsentFormService)
	svc.On("ListFormsByStudyCode", mock.Anything, "ab").Return([]model.ConsentForm{{ID: "a"}, {ID: "b"}}, nil)
	svc.On("GetForm", mock.Anything, "a").Return(&model.ConsentForm{ID: "a"}, nil)
	r := newTestRouter(svc, sec)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/studies/ab/consent-forms", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/studies/ab/consent-forms", nil)
	req.SetBasicAuth("researcher", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var page model.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)

	// participants read forms without credentials
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/consent-forms/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
