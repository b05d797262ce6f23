package serviceerror

import "github.com/wso2/informed-consent-api/internal/system/error/codes"

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.InternalServerError,
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             codes.DatabaseError,
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidRequest,
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ResourceNotFound,
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ConflictError,
		Error:            "conflict",
		ErrorDescription: "Request conflicts with current state",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ValidationError,
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	ConsentFormNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ConsentFormNotFound,
		Error:            "consent_form_not_found",
		ErrorDescription: "Consent form not found",
	}

	StudyNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.StudyNotFound,
		Error:            "study_not_found",
		ErrorDescription: "Study not found",
	}

	ResponseNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.ResponseNotFound,
		Error:            "response_not_found",
		ErrorDescription: "Participant response not found",
	}

	DuplicateSubmissionError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.DuplicateSubmission,
		Error:            "duplicate_submission",
		ErrorDescription: "A response with the same email and consent form already exists",
	}

	SignatureRequiredError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.SignatureRequired,
		Error:            "signature_required",
		ErrorDescription: "A signature is required to grant consent for this form",
	}

	InvalidConsentStateError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.InvalidConsentState,
		Error:            "invalid_consent_state",
		ErrorDescription: "Unknown consent state",
	}

	SignatureTooLargeError = ServiceError{
		Type:             ClientErrorType,
		Code:             codes.SignatureTooLarge,
		Error:            "signature_too_large",
		ErrorDescription: "Signature payload exceeds the allowed size",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// IsNotFound reports whether the error denotes a missing resource.
func (e *ServiceError) IsNotFound() bool {
	switch e.Code {
	case codes.ResourceNotFound, codes.ConsentFormNotFound, codes.StudyNotFound, codes.ResponseNotFound:
		return true
	}
	return false
}

// IsConflict reports whether the error denotes a state conflict.
func (e *ServiceError) IsConflict() bool {
	return e.Code == codes.ConflictError || e.Code == codes.DuplicateSubmission
}

// Is reports whether e carries the same code as base.
func (e *ServiceError) Is(base ServiceError) bool {
	return e != nil && e.Code == base.Code
}
