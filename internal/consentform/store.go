package consentform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	dbmodel "github.com/wso2/informed-consent-api/internal/system/database/model"
	"github.com/wso2/informed-consent-api/internal/system/database/provider"
)

const formColumns = `ID, STUDY_CODE, INSTITUTION, OTHER_INSTITUTION, RESEARCH_TYPE, LANGUAGE, TITLE, PURPOSE, GOAL,
	START_DATE, END_DATE, DURATION, DURATION_UNIT, PARTICIPANTS, REPEATED_PARTICIPATION, UNCOMFORTABLE_QUESTIONS,
	COMPENSATION, PROCEDURE_STEPS, COLLECTED_DATA, DATA_DELETION, ANONYMIZATION, PUBLICATION, PRINCIPAL_INVESTIGATOR,
	PRINCIPAL_INVESTIGATOR_EMAIL, RESEARCHER_NAMES, RESEARCHER_EMAILS, FUNDING, ETHICAL_COMMITTEE, SIGNING_METHOD,
	FORM_LINK, CREATED_TIME, UPDATED_TIME`

// DBQuery objects for all consent form operations
var (
	QueryCreateForm = dbmodel.DBQuery{
		ID: "CREATE_CONSENT_FORM",
		Query: "INSERT INTO CONSENT_FORM (" + formColumns + ") VALUES " +
			"(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetFormByID = dbmodel.DBQuery{
		ID:    "GET_CONSENT_FORM_BY_ID",
		Query: "SELECT " + formColumns + " FROM CONSENT_FORM WHERE ID = ?",
	}

	QueryGetFormsByStudyCode = dbmodel.DBQuery{
		ID:    "GET_CONSENT_FORMS_BY_STUDY_CODE",
		Query: "SELECT " + formColumns + " FROM CONSENT_FORM WHERE STUDY_CODE = ? ORDER BY CREATED_TIME, ID",
	}

	QueryListForms = dbmodel.DBQuery{
		ID:    "LIST_CONSENT_FORMS",
		Query: "SELECT " + formColumns + " FROM CONSENT_FORM ORDER BY CREATED_TIME DESC, ID LIMIT ? OFFSET ?",
	}

	QueryCountForms = dbmodel.DBQuery{
		ID:    "COUNT_CONSENT_FORMS",
		Query: "SELECT COUNT(*) AS count FROM CONSENT_FORM",
	}
)

// ConsentFormStore defines the interface for consent form data access operations
type ConsentFormStore interface {
	// Read operations - use dbClient directly
	GetByID(ctx context.Context, formID string) (*model.ConsentForm, error)
	FindByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, error)
	List(ctx context.Context, limit, offset int) ([]model.ConsentForm, int, error)

	// Write operations - transactional with tx parameter
	Create(tx dbmodel.TxInterface, form *model.ConsentForm) error
}

// store implements the ConsentFormStore interface
type store struct {
	dbClient provider.DBClientInterface
}

// newConsentFormStore creates a new consent form store
func newConsentFormStore(dbClient provider.DBClientInterface) ConsentFormStore {
	return &store{
		dbClient: dbClient,
	}
}

// Create inserts a consent form within a transaction
func (s *store) Create(tx dbmodel.TxInterface, form *model.ConsentForm) error {
	steps, err := json.Marshal(form.ProcedureSteps)
	if err != nil {
		return fmt.Errorf("failed to encode procedure steps: %w", err)
	}
	collected, err := json.Marshal(form.CollectedData)
	if err != nil {
		return fmt.Errorf("failed to encode collected data: %w", err)
	}

	_, err = tx.Exec(QueryCreateForm,
		form.ID, form.StudyCode, form.Institution, form.OtherInstitution, form.ResearchType, form.Language,
		form.Title, form.Purpose, form.Goal, form.StartDate, form.EndDate, form.Duration, form.DurationUnit,
		form.Participants, form.RepeatedParticipation, form.UncomfortableQuestions, form.Compensation,
		string(steps), string(collected), form.DataDeletion, form.Anonymization, form.Publication,
		form.PrincipalInvestigator, form.PrincipalInvestigatorEmail, form.ResearcherNames, form.ResearcherEmails,
		form.Funding, form.EthicalCommittee, string(form.SigningMethod), form.FormLink, form.CreatedTime, form.UpdatedTime)
	return err
}

// GetByID retrieves a consent form by ID
func (s *store) GetByID(ctx context.Context, formID string) (*model.ConsentForm, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetFormByID, formID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToConsentForm(rows[0])
}

// FindByStudyCode retrieves every form variant sharing a study code, oldest first
func (s *store) FindByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetFormsByStudyCode, studyCode)
	if err != nil {
		return nil, err
	}
	return mapToConsentForms(rows)
}

// List retrieves a page of consent forms, newest first
func (s *store) List(ctx context.Context, limit, offset int) ([]model.ConsentForm, int, error) {
	countRows, err := s.dbClient.Query(ctx, QueryCountForms)
	if err != nil {
		return nil, 0, err
	}

	totalCount := 0
	if len(countRows) > 0 {
		if count, ok := dbmodel.AsInt64(countRows[0]["COUNT"]); ok {
			totalCount = int(count)
		}
	}

	rows, err := s.dbClient.Query(ctx, QueryListForms, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	forms, err := mapToConsentForms(rows)
	if err != nil {
		return nil, 0, err
	}
	return forms, totalCount, nil
}

func mapToConsentForms(rows []map[string]interface{}) ([]model.ConsentForm, error) {
	forms := make([]model.ConsentForm, 0, len(rows))
	for _, row := range rows {
		form, err := mapToConsentForm(row)
		if err != nil {
			return nil, err
		}
		forms = append(forms, *form)
	}
	return forms, nil
}

// mapToConsentForm maps a database row to ConsentForm model
func mapToConsentForm(row map[string]interface{}) (*model.ConsentForm, error) {
	form := &model.ConsentForm{}

	form.ID, _ = dbmodel.AsString(row["ID"])
	form.StudyCode = optionalString(row["STUDY_CODE"])
	form.Institution, _ = dbmodel.AsString(row["INSTITUTION"])
	form.OtherInstitution = optionalString(row["OTHER_INSTITUTION"])
	form.ResearchType, _ = dbmodel.AsString(row["RESEARCH_TYPE"])
	form.Language, _ = dbmodel.AsString(row["LANGUAGE"])
	form.Title, _ = dbmodel.AsString(row["TITLE"])
	form.Purpose, _ = dbmodel.AsString(row["PURPOSE"])
	form.Goal, _ = dbmodel.AsString(row["GOAL"])
	form.StartDate, _ = dbmodel.AsString(row["START_DATE"])
	form.EndDate, _ = dbmodel.AsString(row["END_DATE"])
	if v, ok := dbmodel.AsInt64(row["DURATION"]); ok {
		form.Duration = int(v)
	}
	form.DurationUnit, _ = dbmodel.AsString(row["DURATION_UNIT"])
	if v, ok := dbmodel.AsInt64(row["PARTICIPANTS"]); ok {
		form.Participants = int(v)
	}
	form.RepeatedParticipation = dbmodel.AsBool(row["REPEATED_PARTICIPATION"])
	form.UncomfortableQuestions = dbmodel.AsBool(row["UNCOMFORTABLE_QUESTIONS"])
	form.Compensation, _ = dbmodel.AsString(row["COMPENSATION"])
	form.DataDeletion, _ = dbmodel.AsString(row["DATA_DELETION"])
	form.Anonymization, _ = dbmodel.AsString(row["ANONYMIZATION"])
	form.Publication, _ = dbmodel.AsString(row["PUBLICATION"])
	form.PrincipalInvestigator, _ = dbmodel.AsString(row["PRINCIPAL_INVESTIGATOR"])
	form.PrincipalInvestigatorEmail, _ = dbmodel.AsString(row["PRINCIPAL_INVESTIGATOR_EMAIL"])
	form.ResearcherNames = optionalString(row["RESEARCHER_NAMES"])
	form.ResearcherEmails = optionalString(row["RESEARCHER_EMAILS"])
	form.Funding = optionalString(row["FUNDING"])
	form.EthicalCommittee = optionalString(row["ETHICAL_COMMITTEE"])
	if method, ok := dbmodel.AsString(row["SIGNING_METHOD"]); ok {
		form.SigningMethod = model.SigningMethod(method)
	}
	form.FormLink, _ = dbmodel.AsString(row["FORM_LINK"])
	form.CreatedTime, _ = dbmodel.AsInt64(row["CREATED_TIME"])
	form.UpdatedTime, _ = dbmodel.AsInt64(row["UPDATED_TIME"])

	if raw, ok := dbmodel.AsString(row["PROCEDURE_STEPS"]); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.ProcedureSteps); err != nil {
			return nil, fmt.Errorf("invalid procedure steps for form %s: %w", form.ID, err)
		}
	}
	if raw, ok := dbmodel.AsString(row["COLLECTED_DATA"]); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.CollectedData); err != nil {
			return nil, fmt.Errorf("invalid collected data for form %s: %w", form.ID, err)
		}
	}

	return form, nil
}

func optionalString(value interface{}) *string {
	s, ok := dbmodel.AsString(value)
	if !ok {
		return nil
	}
	return &s
}
