package model

// SigningMethod is how a participant grants consent on a form.
type SigningMethod string

const (
	SigningMethodCheckbox  SigningMethod = "CHECKBOX"
	SigningMethodSignature SigningMethod = "SIGNATURE"
)

// IsValid reports whether m is one of the supported signing methods.
func (m SigningMethod) IsValid() bool {
	return m == SigningMethodCheckbox || m == SigningMethodSignature
}

// RequiresSignature reports whether granting consent needs a signature payload.
func (m SigningMethod) RequiresSignature() bool {
	return m == SigningMethodSignature
}

// Institutions that can own a study.
const (
	InstitutionFRAUAS     = "frauas"
	InstitutionRegensburg = "regensburg"
	InstitutionStuttgart  = "stuttgart"
	InstitutionOther      = "other"
)

// Research types.
const (
	ResearchTypeOnline      = "onlinestudy"
	ResearchTypeUser        = "userstudy"
	ResearchTypeField       = "fieldstudy"
	ResearchTypeQualitative = "qualitativestudy"
)

// CollectedDataDemographics must be part of every form's collected data.
const CollectedDataDemographics = "DEMOGRAPHICS"

// CollectedDataCategories lists every category of data a study may collect.
var CollectedDataCategories = []string{
	CollectedDataDemographics,
	"CONTACT_DATA",
	"USER_INPUT",
	"MANUAL_NOTES",
	"SCREEN_CAPTURE",
	"PHYSIOLOGICAL_DATA",
	"PHOTOS",
	"AUDIO",
	"VIDEOS",
	"MOTION_TRACKING",
	"BODY_METRICS",
	"EYE_HEAD_MOVEMENTS",
}

// Anonymization levels.
const (
	AnonymizationNone   = "NO"
	AnonymizationPseudo = "PSEUDO"
	AnonymizationFull   = "FULL"
)

// Publication scopes.
const (
	PublicationFullDataset       = "FULL_DATASET"
	PublicationAggregatedResults = "AGGREGATED_RESULTS"
)

// Compensation options.
const (
	CompensationNone = "NONE"
)

// MaxProcedureSteps bounds the number of procedure steps on a form.
const MaxProcedureSteps = 4
