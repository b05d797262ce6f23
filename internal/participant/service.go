package participant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	formmodel "github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/distribution"
	"github.com/wso2/informed-consent-api/internal/participant/model"
	"github.com/wso2/informed-consent-api/internal/system/config"
	"github.com/wso2/informed-consent-api/internal/system/database"
	dbmodel "github.com/wso2/informed-consent-api/internal/system/database/model"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/log"
	"github.com/wso2/informed-consent-api/internal/system/stores"
	"github.com/wso2/informed-consent-api/internal/system/utils"
)

// FormReader loads the consent form a response belongs to.
type FormReader interface {
	GetForm(ctx context.Context, formID string) (*formmodel.ConsentForm, *serviceerror.ServiceError)
}

// ParticipantService defines the exported service interface
type ParticipantService interface {
	SubmitIdentity(ctx context.Context, studyCode string, identity model.IdentityRequest) (*model.ParticipantResponse, bool, *serviceerror.ServiceError)
	SubmitIdentityForForm(ctx context.Context, formID string, identity model.IdentityRequest) (*model.ParticipantResponse, bool, *serviceerror.ServiceError)
	CreateResponseStrict(ctx context.Context, formID string, identity model.IdentityRequest) (*model.ParticipantResponse, *serviceerror.ServiceError)
	RecordConsent(ctx context.Context, responseID string, req model.ConsentRequest) (*model.ParticipantResponse, *serviceerror.ServiceError)
	GetSigningSession(ctx context.Context, responseID string) (*model.SigningSession, *serviceerror.ServiceError)
	ListResponsesForForm(ctx context.Context, formID string) ([]model.ParticipantResponse, *serviceerror.ServiceError)
	GetSignature(ctx context.Context, responseID string) (*model.Signature, *serviceerror.ServiceError)
}

// participantService implements the ParticipantService interface
type participantService struct {
	stores   *stores.StoreRegistry
	forms    FormReader
	selector distribution.Selector
	settings config.ParticipantConfig
	now      func() int64
	newID    func() string
	logger   *log.Logger
}

// newParticipantService creates a new participant service
func newParticipantService(registry *stores.StoreRegistry, forms FormReader, selector distribution.Selector,
	settings config.ParticipantConfig) ParticipantService {
	return &participantService{
		stores:   registry,
		forms:    forms,
		selector: selector,
		settings: settings,
		now:      utils.GetCurrentTimeMillis,
		newID:    utils.GenerateUUID,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ParticipantService")),
	}
}

func (s *participantService) store() ResponseStore {
	return s.stores.ParticipantResponse.(ResponseStore)
}

// SubmitIdentity finds or creates the participant's response within a study.
// The boolean result reports whether a new response was created.
func (s *participantService) SubmitIdentity(ctx context.Context, studyCode string, identity model.IdentityRequest) (*model.ParticipantResponse, bool, *serviceerror.ServiceError) {
	studyCode = strings.TrimSpace(studyCode)
	if studyCode == "" {
		return nil, false, serviceerror.CustomServiceError(serviceerror.ValidationError, "study code is required")
	}
	email, first, last, serviceErr := normalizeIdentity(identity)
	if serviceErr != nil {
		return nil, false, serviceErr
	}

	studyKey := model.StudyKeyForStudy(studyCode)
	existing, err := s.store().FindByEmailAndStudyKey(ctx, email, studyKey)
	if err != nil {
		return nil, false, s.dbError(ctx, "failed to look up participant response", err)
	}
	if existing != nil {
		return s.updateIdentity(ctx, existing, first, last)
	}

	form, serviceErr := s.selector.SelectFormForStudy(ctx, studyCode)
	if serviceErr != nil {
		return nil, false, serviceErr
	}

	return s.createOrReconcile(ctx, form.ID, studyKey, email, first, last)
}

// SubmitIdentityForForm reconciles a participant who landed on a specific form.
// New responses are pinned to that form; existing ones are found across the form's study.
func (s *participantService) SubmitIdentityForForm(ctx context.Context, formID string, identity model.IdentityRequest) (*model.ParticipantResponse, bool, *serviceerror.ServiceError) {
	email, first, last, serviceErr := normalizeIdentity(identity)
	if serviceErr != nil {
		return nil, false, serviceErr
	}
	form, serviceErr := s.forms.GetForm(ctx, formID)
	if serviceErr != nil {
		return nil, false, serviceErr
	}

	studyKey := model.StudyKeyForForm(form)
	existing, err := s.store().FindByEmailAndStudyKey(ctx, email, studyKey)
	if err != nil {
		return nil, false, s.dbError(ctx, "failed to look up participant response", err)
	}
	if existing != nil {
		return s.updateIdentity(ctx, existing, first, last)
	}

	return s.createOrReconcile(ctx, form.ID, studyKey, email, first, last)
}

// CreateResponseStrict creates a response on a form and refuses any existing one.
func (s *participantService) CreateResponseStrict(ctx context.Context, formID string, identity model.IdentityRequest) (*model.ParticipantResponse, *serviceerror.ServiceError) {
	email, first, last, serviceErr := normalizeIdentity(identity)
	if serviceErr != nil {
		return nil, serviceErr
	}
	form, serviceErr := s.forms.GetForm(ctx, formID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	existing, err := s.store().FindByEmailAndForm(ctx, email, form.ID)
	if err != nil {
		return nil, s.dbError(ctx, "failed to look up participant response", err)
	}
	if existing != nil {
		return nil, &serviceerror.DuplicateSubmissionError
	}

	response := s.newResponse(form.ID, model.StudyKeyForForm(form), email, first, last)
	if err := s.insert(ctx, response); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &serviceerror.DuplicateSubmissionError
		}
		return nil, s.dbError(ctx, "failed to create participant response", err)
	}
	return response, nil
}

// RecordConsent applies a participant's consent decision and stores any signature with it.
func (s *participantService) RecordConsent(ctx context.Context, responseID string, req model.ConsentRequest) (*model.ParticipantResponse, *serviceerror.ServiceError) {
	if req.Granted == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "granted is required")
	}
	if len(req.Signature) > s.settings.MaxSignatureBytes {
		return nil, serviceerror.CustomServiceError(serviceerror.SignatureTooLargeError,
			fmt.Sprintf("signature must not exceed %d bytes", s.settings.MaxSignatureBytes))
	}

	response, serviceErr := s.getResponse(ctx, responseID)
	if serviceErr != nil {
		return nil, serviceErr
	}
	form, serviceErr := s.formOf(ctx, response)
	if serviceErr != nil {
		return nil, serviceErr
	}

	target := model.ConsentStateFor(*req.Granted)
	if err := model.Transition(response.ConsentState, target, form.SigningMethod, req.Signature, response.HasSignature); err != nil {
		if errors.Is(err, model.ErrSignatureRequired) {
			return nil, &serviceerror.SignatureRequiredError
		}
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidConsentStateError, err.Error())
	}

	now := s.now()
	queries := []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store().UpdateConsentState(tx, response.ID, target, now)
		},
	}
	if len(req.Signature) > 0 {
		signature := &model.Signature{
			ResponseID:  response.ID,
			Content:     req.Signature,
			ContentType: req.ContentType,
			CreatedTime: now,
			UpdatedTime: now,
		}
		if signature.ContentType == "" {
			signature.ContentType = model.DefaultSignatureContentType
		}
		queries = append(queries, func(tx dbmodel.TxInterface) error {
			return s.store().UpsertSignature(tx, signature)
		})
	}

	if err := s.stores.ExecuteTransaction(ctx, queries); err != nil {
		return nil, s.dbError(ctx, "failed to record consent", err)
	}

	previous := response.ConsentState
	response.ConsentState = target
	response.UpdatedTime = now
	response.HasSignature = response.HasSignature || len(req.Signature) > 0

	s.logger.WithContext(ctx).Info("Consent recorded",
		log.String("response_id", response.ID),
		log.String("form_id", response.ConsentFormID),
		log.String("from_state", string(previous)),
		log.String("to_state", string(target)),
		log.Bool("signature_stored", len(req.Signature) > 0),
	)
	return response, nil
}

// GetSigningSession returns the response with its form, plus the redirect link once consent is granted.
func (s *participantService) GetSigningSession(ctx context.Context, responseID string) (*model.SigningSession, *serviceerror.ServiceError) {
	response, serviceErr := s.getResponse(ctx, responseID)
	if serviceErr != nil {
		return nil, serviceErr
	}
	form, serviceErr := s.formOf(ctx, response)
	if serviceErr != nil {
		return nil, serviceErr
	}

	session := &model.SigningSession{
		Response: response,
		Form:     form,
		FormLink: form.FormLink,
	}
	if response.ConsentState == model.ConsentStateGranted {
		link := model.BuildRedirectLink(form.FormLink, response.ID)
		session.RedirectLink = &link
	}
	return session, nil
}

// ListResponsesForForm returns the responses pinned to a form.
func (s *participantService) ListResponsesForForm(ctx context.Context, formID string) ([]model.ParticipantResponse, *serviceerror.ServiceError) {
	form, serviceErr := s.forms.GetForm(ctx, formID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	responses, err := s.store().ListByFormID(ctx, form.ID)
	if err != nil {
		return nil, s.dbError(ctx, "failed to list participant responses", err)
	}
	return responses, nil
}

// GetSignature returns the stored signature of a response.
func (s *participantService) GetSignature(ctx context.Context, responseID string) (*model.Signature, *serviceerror.ServiceError) {
	response, serviceErr := s.getResponse(ctx, responseID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	signature, err := s.store().GetSignature(ctx, response.ID)
	if err != nil {
		return nil, s.dbError(ctx, "failed to retrieve signature", err)
	}
	if signature == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError,
			fmt.Sprintf("response '%s' has no signature", response.ID))
	}
	return signature, nil
}

// createOrReconcile inserts a new response. When a concurrent submission won the unique
// index, the winner is re-read and treated as the existing response.
func (s *participantService) createOrReconcile(ctx context.Context, formID, studyKey, email string, first, last *string) (*model.ParticipantResponse, bool, *serviceerror.ServiceError) {
	response := s.newResponse(formID, studyKey, email, first, last)

	insertErr := s.insert(ctx, response)
	if insertErr == nil {
		s.logger.WithContext(ctx).Info("Participant response created",
			log.String("response_id", response.ID),
			log.String("form_id", formID),
		)
		return response, true, nil
	}
	if !database.IsUniqueViolation(insertErr) {
		return nil, false, s.dbError(ctx, "failed to create participant response", insertErr)
	}

	s.logger.WithContext(ctx).Debug("Concurrent submission detected, reconciling with existing response",
		log.String("form_id", formID))
	existing, err := s.store().FindByEmailAndStudyKey(ctx, email, studyKey)
	if err != nil {
		return nil, false, s.dbError(ctx, "failed to look up participant response", err)
	}
	if existing == nil {
		return nil, false, s.dbError(ctx, "failed to create participant response", insertErr)
	}
	return s.updateIdentity(ctx, existing, first, last)
}

// updateIdentity applies the supplied names to an existing response. Consent state is never touched.
func (s *participantService) updateIdentity(ctx context.Context, response *model.ParticipantResponse, first, last *string) (*model.ParticipantResponse, bool, *serviceerror.ServiceError) {
	if first == nil && last == nil {
		return response, false, nil
	}

	now := s.now()
	err := s.stores.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store().UpdateIdentity(tx, response.ID, first, last, now)
		},
	})
	if err != nil {
		return nil, false, s.dbError(ctx, "failed to update participant response", err)
	}

	if first != nil {
		response.FirstName = first
	}
	if last != nil {
		response.LastName = last
	}
	response.UpdatedTime = now
	return response, false, nil
}

func (s *participantService) newResponse(formID, studyKey, email string, first, last *string) *model.ParticipantResponse {
	now := s.now()
	return &model.ParticipantResponse{
		ID:               s.newID(),
		ConsentFormID:    formID,
		ParticipantEmail: email,
		FirstName:        first,
		LastName:         last,
		ConsentState:     model.ConsentStateNotGranted,
		StudyKey:         studyKey,
		CreatedTime:      now,
		UpdatedTime:      now,
	}
}

func (s *participantService) insert(ctx context.Context, response *model.ParticipantResponse) error {
	return s.stores.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store().Create(tx, response)
		},
	})
}

func (s *participantService) getResponse(ctx context.Context, responseID string) (*model.ParticipantResponse, *serviceerror.ServiceError) {
	if strings.TrimSpace(responseID) == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "response ID is required")
	}
	// ids are generated UUIDs, anything else cannot exist
	if !utils.IsValidUUID(responseID) {
		return nil, serviceerror.CustomServiceError(serviceerror.ResponseNotFoundError,
			fmt.Sprintf("participant response with ID '%s' not found", responseID))
	}

	response, err := s.store().GetByID(ctx, responseID)
	if err != nil {
		return nil, s.dbError(ctx, "failed to retrieve participant response", err)
	}
	if response == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResponseNotFoundError,
			fmt.Sprintf("participant response with ID '%s' not found", responseID))
	}
	return response, nil
}

// formOf loads the form a response is pinned to. A missing form means broken referential integrity.
func (s *participantService) formOf(ctx context.Context, response *model.ParticipantResponse) (*formmodel.ConsentForm, *serviceerror.ServiceError) {
	form, serviceErr := s.forms.GetForm(ctx, response.ConsentFormID)
	if serviceErr != nil {
		if serviceErr.IsNotFound() {
			return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError,
				fmt.Sprintf("response '%s' references missing form '%s'", response.ID, response.ConsentFormID))
		}
		return nil, serviceErr
	}
	return form, nil
}

func (s *participantService) dbError(ctx context.Context, msg string, err error) *serviceerror.ServiceError {
	s.logger.WithContext(ctx).Error(msg, log.Error(err))
	return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("%s: %v", msg, err))
}

// normalizeIdentity validates the identity step and returns the lookup email with trimmed names.
// Blank names count as not supplied.
func normalizeIdentity(identity model.IdentityRequest) (string, *string, *string, *serviceerror.ServiceError) {
	email := utils.NormalizeEmail(identity.Email)
	if err := utils.ValidateEmail(email); err != nil {
		return "", nil, nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	return email, trimmedName(identity.FirstName), trimmedName(identity.LastName), nil
}

func trimmedName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
