package model

// ConsentForm is a researcher-authored consent document. Forms are immutable once created.
// Forms sharing a StudyCode are variants of one distributed study.
type ConsentForm struct {
	ID                         string        `json:"id"`
	StudyCode                  *string       `json:"studyCode,omitempty"`
	Institution                string        `json:"institution"`
	OtherInstitution           *string       `json:"otherInstitution,omitempty"`
	ResearchType               string        `json:"researchType"`
	Language                   string        `json:"language"`
	Title                      string        `json:"title"`
	Purpose                    string        `json:"purpose"`
	Goal                       string        `json:"goal"`
	StartDate                  string        `json:"startDate"`
	EndDate                    string        `json:"endDate"`
	Duration                   int           `json:"duration"`
	DurationUnit               string        `json:"durationUnit"`
	Participants               int           `json:"participants"`
	RepeatedParticipation      bool          `json:"repeatedParticipation"`
	UncomfortableQuestions     bool          `json:"uncomfortableQuestions"`
	Compensation               string        `json:"compensation"`
	ProcedureSteps             []string      `json:"procedureSteps"`
	CollectedData              []string      `json:"collectedData"`
	DataDeletion               string        `json:"dataDeletion"`
	Anonymization              string        `json:"anonymization"`
	Publication                string        `json:"publication"`
	PrincipalInvestigator      string        `json:"principalInvestigator"`
	PrincipalInvestigatorEmail string        `json:"principalInvestigatorEmail"`
	ResearcherNames            *string       `json:"researcherNames,omitempty"`
	ResearcherEmails           *string       `json:"researcherEmails,omitempty"`
	Funding                    *string       `json:"funding,omitempty"`
	EthicalCommittee           *string       `json:"ethicalCommittee,omitempty"`
	SigningMethod              SigningMethod `json:"signingMethod"`
	FormLink                   string        `json:"formLink"`
	CreatedTime                int64         `json:"createdTime"`
	UpdatedTime                int64         `json:"updatedTime"`
}

// HasStudyCode reports whether the form belongs to a distributed study.
func (f *ConsentForm) HasStudyCode() bool {
	return f.StudyCode != nil && *f.StudyCode != ""
}

// CreateRequest is the payload for creating a consent form.
type CreateRequest struct {
	StudyCode                  string   `json:"studyCode" validate:"omitempty,max=255"`
	Institution                string   `json:"institution" validate:"required,oneof=frauas regensburg stuttgart other"`
	OtherInstitution           string   `json:"otherInstitution" validate:"required_if=Institution other,max=255"`
	ResearchType               string   `json:"researchType" validate:"required,oneof=onlinestudy userstudy fieldstudy qualitativestudy"`
	Language                   string   `json:"language" validate:"omitempty,oneof=en de"`
	Title                      string   `json:"title" validate:"notblank,max=512"`
	Purpose                    string   `json:"purpose" validate:"notblank"`
	Goal                       string   `json:"goal" validate:"notblank"`
	StartDate                  string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate                    string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	Duration                   int      `json:"duration" validate:"gt=0"`
	DurationUnit               string   `json:"durationUnit" validate:"required,oneof=minutes hours days weeks"`
	Participants               int      `json:"participants" validate:"gt=0"`
	RepeatedParticipation      bool     `json:"repeatedParticipation"`
	UncomfortableQuestions     bool     `json:"uncomfortableQuestions"`
	Compensation               string   `json:"compensation" validate:"omitempty,oneof=NONE EUR1 EUR5 EUR10 EUR15 EUR20 HALF_CREDIT_POINT ONE_CREDIT_POINT"`
	ProcedureSteps             []string `json:"procedureSteps" validate:"min=1,max=4,dive,notblank"`
	CollectedData              []string `json:"collectedData" validate:"min=1,dive,oneof=DEMOGRAPHICS CONTACT_DATA USER_INPUT MANUAL_NOTES SCREEN_CAPTURE PHYSIOLOGICAL_DATA PHOTOS AUDIO VIDEOS MOTION_TRACKING BODY_METRICS EYE_HEAD_MOVEMENTS"`
	DataDeletion               string   `json:"dataDeletion" validate:"notblank"`
	Anonymization              string   `json:"anonymization" validate:"omitempty,oneof=NO PSEUDO FULL"`
	Publication                string   `json:"publication" validate:"required,oneof=FULL_DATASET AGGREGATED_RESULTS"`
	PrincipalInvestigator      string   `json:"principalInvestigator" validate:"notblank,max=255"`
	PrincipalInvestigatorEmail string   `json:"principalInvestigatorEmail" validate:"required,email,max=255"`
	ResearcherNames            string   `json:"researcherNames"`
	ResearcherEmails           string   `json:"researcherEmails"`
	Funding                    string   `json:"funding"`
	EthicalCommittee           string   `json:"ethicalCommittee"`
	SigningMethod              string   `json:"signingMethod" validate:"required,oneof=CHECKBOX SIGNATURE"`
	FormLink                   string   `json:"formLink" validate:"required,url"`
}

// ListResponse is a page of consent forms.
type ListResponse struct {
	Forms  []ConsentForm `json:"forms"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
