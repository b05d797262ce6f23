package distribution

import (
	"context"
	"fmt"
	"strings"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
	"github.com/wso2/informed-consent-api/internal/system/log"
)

// FormFinder lists the form variants sharing a study code.
type FormFinder interface {
	ListFormsByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, *serviceerror.ServiceError)
}

// Selector assigns incoming participants to one form variant of a study.
type Selector interface {
	SelectFormForStudy(ctx context.Context, studyCode string) (*model.ConsentForm, *serviceerror.ServiceError)
}

type selector struct {
	forms  FormFinder
	random RandomSource
	logger *log.Logger
}

// NewSelector creates a Selector. A nil random source falls back to DefaultRandomSource.
func NewSelector(forms FormFinder, random RandomSource) Selector {
	if random == nil {
		random = DefaultRandomSource()
	}
	return &selector{
		forms:  forms,
		random: random,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DistributionSelector")),
	}
}

// SelectFormForStudy picks one of the study's forms uniformly at random.
// Every call draws independently; nothing is persisted.
func (s *selector) SelectFormForStudy(ctx context.Context, studyCode string) (*model.ConsentForm, *serviceerror.ServiceError) {
	studyCode = strings.TrimSpace(studyCode)
	if studyCode == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "study code is required")
	}

	forms, serviceErr := s.forms.ListFormsByStudyCode(ctx, studyCode)
	if serviceErr != nil {
		return nil, serviceErr
	}
	if len(forms) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.StudyNotFoundError, fmt.Sprintf("study '%s' not found", studyCode))
	}

	idx := s.random.IntN(len(forms))
	if idx < 0 || idx >= len(forms) {
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError,
			fmt.Sprintf("random source returned index %d for %d forms", idx, len(forms)))
	}

	form := forms[idx]
	s.logger.WithContext(ctx).Debug("Assigned participant to form variant",
		log.String("study_code", studyCode),
		log.String("form_id", form.ID),
		log.Int("variants", len(forms)),
	)
	return &form, nil
}
