package participant

import (
	"context"

	"github.com/wso2/informed-consent-api/internal/participant/model"
	dbmodel "github.com/wso2/informed-consent-api/internal/system/database/model"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
)

const responseSelect = `SELECT r.ID, r.CONSENT_FORM_ID, r.PARTICIPANT_EMAIL, r.FIRST_NAME, r.LAST_NAME,
	r.CONSENT_STATE, r.STUDY_KEY, r.CREATED_TIME, r.UPDATED_TIME,
	CASE WHEN s.RESPONSE_ID IS NULL THEN 0 ELSE 1 END AS HAS_SIGNATURE
	FROM PARTICIPANT_RESPONSE r LEFT JOIN RESPONSE_SIGNATURE s ON s.RESPONSE_ID = r.ID`

// DBQuery objects for all participant response operations
var (
	QueryCreateResponse = dbmodel.DBQuery{
		ID: "CREATE_PARTICIPANT_RESPONSE",
		Query: "INSERT INTO PARTICIPANT_RESPONSE (ID, CONSENT_FORM_ID, PARTICIPANT_EMAIL, FIRST_NAME, LAST_NAME, " +
			"CONSENT_STATE, STUDY_KEY, CREATED_TIME, UPDATED_TIME) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetResponseByID = dbmodel.DBQuery{
		ID:    "GET_PARTICIPANT_RESPONSE_BY_ID",
		Query: responseSelect + " WHERE r.ID = ?",
	}

	QueryGetResponseByEmailAndStudyKey = dbmodel.DBQuery{
		ID:    "GET_PARTICIPANT_RESPONSE_BY_EMAIL_AND_STUDY_KEY",
		Query: responseSelect + " WHERE r.PARTICIPANT_EMAIL = ? AND r.STUDY_KEY = ?",
	}

	QueryGetResponseByEmailAndForm = dbmodel.DBQuery{
		ID:    "GET_PARTICIPANT_RESPONSE_BY_EMAIL_AND_FORM",
		Query: responseSelect + " WHERE r.PARTICIPANT_EMAIL = ? AND r.CONSENT_FORM_ID = ?",
	}

	QueryListResponsesByForm = dbmodel.DBQuery{
		ID:    "LIST_PARTICIPANT_RESPONSES_BY_FORM",
		Query: responseSelect + " WHERE r.CONSENT_FORM_ID = ? ORDER BY r.CREATED_TIME, r.ID",
	}

	QueryUpdateIdentity = dbmodel.DBQuery{
		ID: "UPDATE_PARTICIPANT_RESPONSE_IDENTITY",
		Query: "UPDATE PARTICIPANT_RESPONSE SET FIRST_NAME = COALESCE(?, FIRST_NAME), " +
			"LAST_NAME = COALESCE(?, LAST_NAME), UPDATED_TIME = ? WHERE ID = ?",
	}

	QueryUpdateConsentState = dbmodel.DBQuery{
		ID:    "UPDATE_PARTICIPANT_RESPONSE_CONSENT_STATE",
		Query: "UPDATE PARTICIPANT_RESPONSE SET CONSENT_STATE = ?, UPDATED_TIME = ? WHERE ID = ?",
	}

	QueryUpsertSignature = dbmodel.DBQuery{
		ID: "UPSERT_RESPONSE_SIGNATURE",
		Query: "INSERT INTO RESPONSE_SIGNATURE (RESPONSE_ID, CONTENT, CONTENT_TYPE, CREATED_TIME, UPDATED_TIME) " +
			"VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE CONTENT = VALUES(CONTENT), " +
			"CONTENT_TYPE = VALUES(CONTENT_TYPE), UPDATED_TIME = VALUES(UPDATED_TIME)",
		PostgresQuery: "INSERT INTO RESPONSE_SIGNATURE (RESPONSE_ID, CONTENT, CONTENT_TYPE, CREATED_TIME, UPDATED_TIME) " +
			"VALUES (?, ?, ?, ?, ?) ON CONFLICT (RESPONSE_ID) DO UPDATE SET CONTENT = EXCLUDED.CONTENT, " +
			"CONTENT_TYPE = EXCLUDED.CONTENT_TYPE, UPDATED_TIME = EXCLUDED.UPDATED_TIME",
		SQLiteQuery: "INSERT INTO RESPONSE_SIGNATURE (RESPONSE_ID, CONTENT, CONTENT_TYPE, CREATED_TIME, UPDATED_TIME) " +
			"VALUES (?, ?, ?, ?, ?) ON CONFLICT (RESPONSE_ID) DO UPDATE SET CONTENT = excluded.CONTENT, " +
			"CONTENT_TYPE = excluded.CONTENT_TYPE, UPDATED_TIME = excluded.UPDATED_TIME",
	}

	QueryGetSignature = dbmodel.DBQuery{
		ID: "GET_RESPONSE_SIGNATURE",
		Query: "SELECT RESPONSE_ID, CONTENT, CONTENT_TYPE, CREATED_TIME, UPDATED_TIME " +
			"FROM RESPONSE_SIGNATURE WHERE RESPONSE_ID = ?",
	}
)

// ResponseStore defines the interface for participant response data access operations
type ResponseStore interface {
	// Read operations - use dbClient directly
	GetByID(ctx context.Context, responseID string) (*model.ParticipantResponse, error)
	FindByEmailAndStudyKey(ctx context.Context, email, studyKey string) (*model.ParticipantResponse, error)
	FindByEmailAndForm(ctx context.Context, email, formID string) (*model.ParticipantResponse, error)
	ListByFormID(ctx context.Context, formID string) ([]model.ParticipantResponse, error)
	GetSignature(ctx context.Context, responseID string) (*model.Signature, error)

	// Write operations - transactional with tx parameter
	Create(tx dbmodel.TxInterface, response *model.ParticipantResponse) error
	UpdateIdentity(tx dbmodel.TxInterface, responseID string, firstName, lastName *string, updatedTime int64) error
	UpdateConsentState(tx dbmodel.TxInterface, responseID string, state model.ConsentState, updatedTime int64) error
	UpsertSignature(tx dbmodel.TxInterface, signature *model.Signature) error
}

// store implements the ResponseStore interface
type store struct {
	dbClient provider.DBClientInterface
}

// newResponseStore creates a new participant response store
func newResponseStore(dbClient provider.DBClientInterface) ResponseStore {
	return &store{
		dbClient: dbClient,
	}
}

// Create inserts a response within a transaction
func (s *store) Create(tx dbmodel.TxInterface, response *model.ParticipantResponse) error {
	_, err := tx.Exec(QueryCreateResponse,
		response.ID, response.ConsentFormID, response.ParticipantEmail, nullable(response.FirstName),
		nullable(response.LastName), string(response.ConsentState), response.StudyKey,
		response.CreatedTime, response.UpdatedTime)
	return err
}

// UpdateIdentity overwrites the names that are supplied and keeps the others
func (s *store) UpdateIdentity(tx dbmodel.TxInterface, responseID string, firstName, lastName *string, updatedTime int64) error {
	_, err := tx.Exec(QueryUpdateIdentity, nullable(firstName), nullable(lastName), updatedTime, responseID)
	return err
}

// UpdateConsentState sets the consent state of a response
func (s *store) UpdateConsentState(tx dbmodel.TxInterface, responseID string, state model.ConsentState, updatedTime int64) error {
	_, err := tx.Exec(QueryUpdateConsentState, string(state), updatedTime, responseID)
	return err
}

// UpsertSignature inserts the response's signature or replaces its content
func (s *store) UpsertSignature(tx dbmodel.TxInterface, signature *model.Signature) error {
	_, err := tx.Exec(QueryUpsertSignature, signature.ResponseID, signature.Content, signature.ContentType,
		signature.CreatedTime, signature.UpdatedTime)
	return err
}

// GetByID retrieves a response by ID
func (s *store) GetByID(ctx context.Context, responseID string) (*model.ParticipantResponse, error) {
	return s.queryOne(ctx, QueryGetResponseByID, responseID)
}

// FindByEmailAndStudyKey retrieves the response of a participant within a reconciliation scope
func (s *store) FindByEmailAndStudyKey(ctx context.Context, email, studyKey string) (*model.ParticipantResponse, error) {
	return s.queryOne(ctx, QueryGetResponseByEmailAndStudyKey, email, studyKey)
}

// FindByEmailAndForm retrieves the response of a participant on one specific form
func (s *store) FindByEmailAndForm(ctx context.Context, email, formID string) (*model.ParticipantResponse, error) {
	return s.queryOne(ctx, QueryGetResponseByEmailAndForm, email, formID)
}

// ListByFormID retrieves all responses pinned to a form, oldest first
func (s *store) ListByFormID(ctx context.Context, formID string) ([]model.ParticipantResponse, error) {
	rows, err := s.dbClient.Query(ctx, QueryListResponsesByForm, formID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.ParticipantResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, *mapToResponse(row))
	}
	return responses, nil
}

// GetSignature retrieves the signature of a response
func (s *store) GetSignature(ctx context.Context, responseID string) (*model.Signature, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetSignature, responseID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	signature := &model.Signature{}
	signature.ResponseID, _ = dbmodel.AsString(row["RESPONSE_ID"])
	signature.Content = dbmodel.AsBytes(row["CONTENT"])
	signature.ContentType, _ = dbmodel.AsString(row["CONTENT_TYPE"])
	signature.CreatedTime, _ = dbmodel.AsInt64(row["CREATED_TIME"])
	signature.UpdatedTime, _ = dbmodel.AsInt64(row["UPDATED_TIME"])
	return signature, nil
}

func (s *store) queryOne(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) (*model.ParticipantResponse, error) {
	rows, err := s.dbClient.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToResponse(rows[0]), nil
}

// mapToResponse maps a database row to ParticipantResponse model
func mapToResponse(row map[string]interface{}) *model.ParticipantResponse {
	response := &model.ParticipantResponse{}

	response.ID, _ = dbmodel.AsString(row["ID"])
	response.ConsentFormID, _ = dbmodel.AsString(row["CONSENT_FORM_ID"])
	response.ParticipantEmail, _ = dbmodel.AsString(row["PARTICIPANT_EMAIL"])
	if v, ok := dbmodel.AsString(row["FIRST_NAME"]); ok {
		response.FirstName = &v
	}
	if v, ok := dbmodel.AsString(row["LAST_NAME"]); ok {
		response.LastName = &v
	}
	if v, ok := dbmodel.AsString(row["CONSENT_STATE"]); ok {
		response.ConsentState = model.ConsentState(v)
	}
	response.StudyKey, _ = dbmodel.AsString(row["STUDY_KEY"])
	response.HasSignature = dbmodel.AsBool(row["HAS_SIGNATURE"])
	response.CreatedTime, _ = dbmodel.AsInt64(row["CREATED_TIME"])
	response.UpdatedTime, _ = dbmodel.AsInt64(row["UPDATED_TIME"])

	return response
}

// nullable turns an absent optional value into SQL NULL
func nullable(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
