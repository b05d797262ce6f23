package model

import (
	"fmt"

	formmodel "github.com/wso2/informed-consent-api/internal/consentform/model"
)

// ParticipantResponse is one participant's engagement with a study. It is pinned to the
// form variant chosen when it was created.
type ParticipantResponse struct {
	ID               string       `json:"id"`
	ConsentFormID    string       `json:"consentFormId"`
	ParticipantEmail string       `json:"participantEmail"`
	FirstName        *string      `json:"firstName,omitempty"`
	LastName         *string      `json:"lastName,omitempty"`
	ConsentState     ConsentState `json:"consentState"`
	HasSignature     bool         `json:"hasSignature"`
	StudyKey         string       `json:"-"`
	CreatedTime      int64        `json:"createdTime"`
	UpdatedTime      int64        `json:"updatedTime"`
}

// Signature is the signing payload owned by a response. A response has at most one.
type Signature struct {
	ResponseID  string
	Content     []byte
	ContentType string
	CreatedTime int64
	UpdatedTime int64
}

// DefaultSignatureContentType is assumed when the caller does not name one.
const DefaultSignatureContentType = "image/png"

// StudyKeyForStudy is the reconciliation key shared by all variants of a study.
func StudyKeyForStudy(studyCode string) string {
	return "study:" + studyCode
}

// StudyKeyForForm returns the reconciliation key for responses on form. Variants of a
// study share one key; a form without a study code is its own scope.
func StudyKeyForForm(form *formmodel.ConsentForm) string {
	if form.HasStudyCode() {
		return StudyKeyForStudy(*form.StudyCode)
	}
	return fmt.Sprintf("form:%s", form.ID)
}

// IdentityRequest is the payload a participant submits on the identity step.
type IdentityRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	FirstName *string `json:"firstName" validate:"omitempty,max=255"`
	LastName  *string `json:"lastName" validate:"omitempty,max=255"`
}

// ConsentRequest is the payload for recording a consent decision. Signature is base64 in JSON.
type ConsentRequest struct {
	Granted     *bool  `json:"granted" validate:"required"`
	Signature   []byte `json:"signature"`
	ContentType string `json:"signatureContentType" validate:"omitempty,oneof=image/png image/jpeg image/svg+xml"`
}

// SigningSession is everything the signing page needs for a response.
type SigningSession struct {
	Response *ParticipantResponse   `json:"response"`
	Form     *formmodel.ConsentForm `json:"form"`
	// FormLink is the raw template, placeholder intact.
	FormLink     string  `json:"formLink"`
	RedirectLink *string `json:"redirectLink,omitempty"`
}

// ResponseList is the researcher view of the responses on a form.
type ResponseList struct {
	Responses []ParticipantResponse `json:"responses"`
	Total     int                   `json:"total"`
}
