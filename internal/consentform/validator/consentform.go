package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/constants"
	"github.com/wso2/informed-consent-api/internal/system/utils"
)

const dateLayout = "2006-01-02"

// ValidateCreateRequest checks a consent form payload. Field rules come from struct tags;
// cross-field rules are checked here.
func ValidateCreateRequest(req *model.CreateRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%s", utils.DescribeValidationError(err))
	}

	if !slices.Contains(req.CollectedData, model.CollectedDataDemographics) {
		return fmt.Errorf("collectedData must include %s", model.CollectedDataDemographics)
	}

	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	if end.Before(start) {
		return fmt.Errorf("endDate must not be before startDate")
	}

	if !strings.Contains(req.FormLink, constants.ParticipantIDPlaceholder) {
		return fmt.Errorf("formLink must contain the %s placeholder", constants.ParticipantIDPlaceholder)
	}

	if req.ResearcherEmails != "" {
		for _, addr := range splitList(req.ResearcherEmails) {
			if _, err := mail.ParseAddress(addr); err != nil {
				return fmt.Errorf("researcherEmails contains an invalid address: %q", addr)
			}
		}
	}

	return nil
}

// NormalizeCollectedData removes duplicates while keeping the first occurrence order.
func NormalizeCollectedData(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeProcedureSteps trims every step.
func NormalizeProcedureSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
