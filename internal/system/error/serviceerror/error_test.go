package serviceerror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomServiceError_KeepsBaseIdentity(t *testing.T) {
	err := CustomServiceError(StudyNotFoundError, "study 'abc' not found")

	assert.Equal(t, StudyNotFoundError.Code, err.Code)
	assert.Equal(t, ClientErrorType, err.Type)
	assert.Equal(t, "study 'abc' not found", err.ErrorDescription)
	assert.True(t, err.Is(StudyNotFoundError))
	assert.False(t, err.Is(ResourceNotFoundError))
}

func TestServiceError_Classification(t *testing.T) {
	for _, base := range []ServiceError{ResourceNotFoundError, ConsentFormNotFoundError, StudyNotFoundError, ResponseNotFoundError} {
		e := base
		assert.True(t, e.IsNotFound(), base.Error)
		assert.False(t, e.IsConflict(), base.Error)
	}

	for _, base := range []ServiceError{ConflictError, DuplicateSubmissionError} {
		e := base
		assert.True(t, e.IsConflict(), base.Error)
		assert.False(t, e.IsNotFound(), base.Error)
	}

	v := ValidationError
	assert.False(t, v.IsNotFound())
	assert.False(t, v.IsConflict())
}
