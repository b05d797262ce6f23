package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
)

func validRequest() *model.CreateRequest {
	return &model.CreateRequest{
		StudyCode:                  "vr-2025",
		Institution:                model.InstitutionFRAUAS,
		ResearchType:               model.ResearchTypeUser,
		Title:                      "VR navigation study",
		Purpose:                    "Understand navigation",
		Goal:                       "Compare techniques",
		StartDate:                  "2025-03-01",
		EndDate:                    "2025-04-01",
		Duration:                   45,
		DurationUnit:               "minutes",
		Participants:               30,
		ProcedureSteps:             []string{"Briefing", "Task", "Questionnaire"},
		CollectedData:              []string{"DEMOGRAPHICS", "MOTION_TRACKING"},
		DataDeletion:               "After 5 years",
		Publication:                model.PublicationAggregatedResults,
		PrincipalInvestigator:      "Dr. Rivera",
		PrincipalInvestigatorEmail: "rivera@uni.example",
		SigningMethod:              string(model.SigningMethodSignature),
		FormLink:                   "https://survey.example/s?pid=${participantID}",
	}
}

func TestValidateCreateRequest_Valid(t *testing.T) {
	assert.NoError(t, ValidateCreateRequest(validRequest()))
}

func TestValidateCreateRequest_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.CreateRequest)
		wantErr string
	}{
		{"no procedure steps", func(r *model.CreateRequest) { r.ProcedureSteps = nil }, "procedureSteps"},
		{"too many procedure steps", func(r *model.CreateRequest) { r.ProcedureSteps = []string{"a", "b", "c", "d", "e"} }, "procedureSteps must be at most 4"},
		{"blank procedure step", func(r *model.CreateRequest) { r.ProcedureSteps = []string{"a", "  "} }, "is required"},
		{"unknown signing method", func(r *model.CreateRequest) { r.SigningMethod = "BOTH" }, "signingMethod must be one of"},
		{"missing signing method", func(r *model.CreateRequest) { r.SigningMethod = "" }, "signingMethod is required"},
		{"no demographics", func(r *model.CreateRequest) { r.CollectedData = []string{"AUDIO"} }, "must include DEMOGRAPHICS"},
		{"unknown data category", func(r *model.CreateRequest) { r.CollectedData = []string{"DEMOGRAPHICS", "DNA"} }, "must be one of"},
		{"other institution missing", func(r *model.CreateRequest) { r.Institution = model.InstitutionOther }, "otherInstitution is required"},
		{"dates reversed", func(r *model.CreateRequest) { r.EndDate = "2025-02-01" }, "endDate must not be before startDate"},
		{"bad date", func(r *model.CreateRequest) { r.StartDate = "01.03.2025" }, "startDate must be a date"},
		{"link without placeholder", func(r *model.CreateRequest) { r.FormLink = "https://survey.example/s" }, "placeholder"},
		{"bad pi email", func(r *model.CreateRequest) { r.PrincipalInvestigatorEmail = "rivera" }, "principalInvestigatorEmail must be a valid email"},
		{"bad researcher email", func(r *model.CreateRequest) { r.ResearcherEmails = "a@x.org, nope" }, "researcherEmails"},
		{"zero duration", func(r *model.CreateRequest) { r.Duration = 0 }, "duration must be greater than 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)
			err := ValidateCreateRequest(req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNormalizeCollectedData(t *testing.T) {
	assert.Equal(t, []string{"DEMOGRAPHICS", "AUDIO"}, NormalizeCollectedData([]string{"DEMOGRAPHICS", "AUDIO", "DEMOGRAPHICS"}))
}

func TestNormalizeProcedureSteps(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NormalizeProcedureSteps([]string{" a", "b "}))
}
