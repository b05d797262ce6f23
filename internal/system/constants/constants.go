package constants

const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	CorrelationIDHeaderName = "X-Correlation-ID"
	ContentTypeJSON         = "application/json"
	DefaultPageSize         = 30
	MaxPageSize             = 100

	// ParticipantIDPlaceholder is substituted with the response ID in a form link.
	ParticipantIDPlaceholder = "${participantID}"

	// GenericErrorMessage is shown to callers for unexpected failures.
	GenericErrorMessage = "Something went wrong, please try again"

	HeaderContentType = ContentTypeHeaderName
)
