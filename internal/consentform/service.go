package consentform

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/consentform/validator"
	"github.com/wso2/informed-consent-api/internal/system/constants"
	dbmodel "github.com/wso2/informed-consent-api/internal/system/database/model"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/log"
	"github.com/wso2/informed-consent-api/internal/system/stores"
	"github.com/wso2/informed-consent-api/internal/system/utils"
)

// ConsentFormService defines the exported service interface
type ConsentFormService interface {
	CreateForm(ctx context.Context, req model.CreateRequest) (*model.ConsentForm, *serviceerror.ServiceError)
	GetForm(ctx context.Context, formID string) (*model.ConsentForm, *serviceerror.ServiceError)
	ListForms(ctx context.Context, limit, offset int) ([]model.ConsentForm, int, *serviceerror.ServiceError)
	ListFormsByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, *serviceerror.ServiceError)
}

// consentFormService implements the ConsentFormService interface
type consentFormService struct {
	stores *stores.StoreRegistry
	now    func() int64
	newID  func() string
	logger *log.Logger
}

// newConsentFormService creates a new consent form service
func newConsentFormService(registry *stores.StoreRegistry) ConsentFormService {
	return &consentFormService{
		stores: registry,
		now:    utils.GetCurrentTimeMillis,
		newID:  utils.GenerateUUID,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ConsentFormService")),
	}
}

func (s *consentFormService) store() ConsentFormStore {
	return s.stores.ConsentForm.(ConsentFormStore)
}

// CreateForm validates and persists a new consent form
func (s *consentFormService) CreateForm(ctx context.Context, req model.CreateRequest) (*model.ConsentForm, *serviceerror.ServiceError) {
	if err := validator.ValidateCreateRequest(&req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	now := s.now()
	form := &model.ConsentForm{
		ID:                         s.newID(),
		StudyCode:                  optional(req.StudyCode),
		Institution:                req.Institution,
		ResearchType:               req.ResearchType,
		Language:                   defaultString(req.Language, "en"),
		Title:                      strings.TrimSpace(req.Title),
		Purpose:                    strings.TrimSpace(req.Purpose),
		Goal:                       strings.TrimSpace(req.Goal),
		StartDate:                  req.StartDate,
		EndDate:                    req.EndDate,
		Duration:                   req.Duration,
		DurationUnit:               req.DurationUnit,
		Participants:               req.Participants,
		RepeatedParticipation:      req.RepeatedParticipation,
		UncomfortableQuestions:     req.UncomfortableQuestions,
		Compensation:               defaultString(req.Compensation, model.CompensationNone),
		ProcedureSteps:             validator.NormalizeProcedureSteps(req.ProcedureSteps),
		CollectedData:              validator.NormalizeCollectedData(req.CollectedData),
		DataDeletion:               strings.TrimSpace(req.DataDeletion),
		Anonymization:              defaultString(req.Anonymization, model.AnonymizationNone),
		Publication:                req.Publication,
		PrincipalInvestigator:      strings.TrimSpace(req.PrincipalInvestigator),
		PrincipalInvestigatorEmail: strings.TrimSpace(req.PrincipalInvestigatorEmail),
		ResearcherNames:            optional(req.ResearcherNames),
		ResearcherEmails:           optional(req.ResearcherEmails),
		Funding:                    optional(req.Funding),
		EthicalCommittee:           optional(req.EthicalCommittee),
		SigningMethod:              model.SigningMethod(req.SigningMethod),
		FormLink:                   strings.TrimSpace(req.FormLink),
		CreatedTime:                now,
		UpdatedTime:                now,
	}
	if req.Institution == model.InstitutionOther {
		form.OtherInstitution = optional(req.OtherInstitution)
	}

	store := s.store()
	err := s.stores.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return store.Create(tx, form)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to create consent form: %v", err))
	}

	fields := []log.Field{log.String("form_id", form.ID), log.String("signing_method", string(form.SigningMethod))}
	if form.HasStudyCode() {
		fields = append(fields, log.String("study_code", *form.StudyCode))
	}
	s.logger.WithContext(ctx).Info("Consent form created", fields...)

	return form, nil
}

// GetForm retrieves a consent form by ID
func (s *consentFormService) GetForm(ctx context.Context, formID string) (*model.ConsentForm, *serviceerror.ServiceError) {
	if strings.TrimSpace(formID) == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "consent form ID is required")
	}
	if !utils.IsValidUUID(formID) {
		return nil, serviceerror.CustomServiceError(serviceerror.ConsentFormNotFoundError, fmt.Sprintf("consent form with ID '%s' not found", formID))
	}

	form, err := s.store().GetByID(ctx, formID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to retrieve consent form: %v", err))
	}
	if form == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ConsentFormNotFoundError, fmt.Sprintf("consent form with ID '%s' not found", formID))
	}
	return form, nil
}

// ListForms retrieves a page of consent forms
func (s *consentFormService) ListForms(ctx context.Context, limit, offset int) ([]model.ConsentForm, int, *serviceerror.ServiceError) {
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	forms, total, err := s.store().List(ctx, limit, offset)
	if err != nil {
		return nil, 0, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list consent forms: %v", err))
	}
	return forms, total, nil
}

// ListFormsByStudyCode retrieves all form variants of a study. An unknown study yields an empty slice.
func (s *consentFormService) ListFormsByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, *serviceerror.ServiceError) {
	studyCode = strings.TrimSpace(studyCode)
	if studyCode == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "study code is required")
	}

	forms, err := s.store().FindByStudyCode(ctx, studyCode)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list forms for study: %v", err))
	}
	return forms, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
