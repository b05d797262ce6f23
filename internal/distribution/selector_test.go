package distribution

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/error/serviceerror"
)

type mockFormFinder struct {
	mock.Mock
}

func (m *mockFormFinder) ListFormsByStudyCode(ctx context.Context, studyCode string) ([]model.ConsentForm, *serviceerror.ServiceError) {
	args := m.Called(ctx, studyCode)
	forms, _ := args.Get(0).([]model.ConsentForm)
	serr, _ := args.Get(1).(*serviceerror.ServiceError)
	return forms, serr
}

type mockRandomSource struct {
	mock.Mock
}

func (m *mockRandomSource) IntN(n int) int {
	return m.Called(n).Int(0)
}

func studyForms(ids ...string) []model.ConsentForm {
	forms := make([]model.ConsentForm, 0, len(ids))
	for _, id := range ids {
		forms = append(forms, model.ConsentForm{ID: id})
	}
	return forms
}

func TestSelectFormForStudy_UsesInjectedRandomSource(t *testing.T) {
	finder := new(mockFormFinder)
	finder.On("ListFormsByStudyCode", mock.Anything, "CS101").Return(studyForms("F1", "F2", "F3"), nil)
	random := new(mockRandomSource)
	random.On("IntN", 3).Return(2).Once()
	random.On("IntN", 3).Return(0).Once()

	sel := NewSelector(finder, random)

	form, err := sel.SelectFormForStudy(context.Background(), "CS101")
	require.Nil(t, err)
	assert.Equal(t, "F3", form.ID)

	form, err = sel.SelectFormForStudy(context.Background(), " CS101 ")
	require.Nil(t, err)
	assert.Equal(t, "F1", form.ID)

	random.AssertExpectations(t)
}

func TestSelectFormForStudy_SingleFormAlwaysChosen(t *testing.T) {
	finder := new(mockFormFinder)
	finder.On("ListFormsByStudyCode", mock.Anything, "solo").Return(studyForms("only"), nil)
	sel := NewSelector(finder, nil)

	for i := 0; i < 20; i++ {
		form, err := sel.SelectFormForStudy(context.Background(), "solo")
		require.Nil(t, err)
		assert.Equal(t, "only", form.ID)
	}
}

func TestSelectFormForStudy_UnknownStudy(t *testing.T) {
	finder := new(mockFormFinder)
	finder.On("ListFormsByStudyCode", mock.Anything, "UNKNOWN").Return([]model.ConsentForm{}, nil)
	random := new(mockRandomSource)
	sel := NewSelector(finder, random)

	form, err := sel.SelectFormForStudy(context.Background(), "UNKNOWN")
	assert.Nil(t, form)
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.StudyNotFoundError))
	assert.True(t, err.IsNotFound())
	random.AssertNotCalled(t, "IntN", mock.Anything)
}

func TestSelectFormForStudy_EmptyStudyCode(t *testing.T) {
	finder := new(mockFormFinder)
	sel := NewSelector(finder, nil)

	_, err := sel.SelectFormForStudy(context.Background(), "   ")
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.ValidationError))
	finder.AssertNotCalled(t, "ListFormsByStudyCode", mock.Anything, mock.Anything)
}

func TestSelectFormForStudy_PropagatesLookupFailure(t *testing.T) {
	finder := new(mockFormFinder)
	finder.On("ListFormsByStudyCode", mock.Anything, "CS101").
		Return(nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "connection refused"))
	sel := NewSelector(finder, nil)

	_, err := sel.SelectFormForStudy(context.Background(), "CS101")
	require.NotNil(t, err)
	assert.True(t, err.Is(serviceerror.DatabaseError))
}

func TestSelectFormForStudy_RejectsOutOfRangeIndex(t *testing.T) {
	finder := new(mockFormFinder)
	finder.On("ListFormsByStudyCode", mock.Anything, "CS101").Return(studyForms("F1", "F2"), nil)
	random := new(mockRandomSource)
	random.On("IntN", 2).Return(2)
	sel := NewSelector(finder, random)

	_, err := sel.SelectFormForStudy(context.Background(), "CS101")
	require.NotNil(t, err)
	assert.Equal(t, serviceerror.ServerErrorType, err.Type)
}

func TestSelectFormForStudy_ApproximatelyUniform(t *testing.T) {
	finder := new(mockFormFinder)
	finder.On("ListFormsByStudyCode", mock.Anything, "CS101").Return(studyForms("F1", "F2", "F3"), nil)
	sel := NewSelector(finder, DefaultRandomSource())

	const draws = 3000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		form, err := sel.SelectFormForStudy(context.Background(), "CS101")
		require.Nil(t, err)
		counts[form.ID]++
	}

	require.Len(t, counts, 3)
	// expected 1000 each, sd ~26; 8 sd keeps the test stable
	expected := float64(draws) / 3
	for id, n := range counts {
		assert.InDelta(t, expected, float64(n), 8*math.Sqrt(expected*2/3), id)
	}
}
