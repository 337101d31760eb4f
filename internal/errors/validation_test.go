package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/materialcontext/glog2d6-api/internal/errors"
)

func TestValidationErrorsEmpty(t *testing.T) {
	v := errors.NewValidationErrors()

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.ToError())
}

func TestValidationErrorsOrdered(t *testing.T) {
	v := errors.NewValidationErrors()
	v.Add("No actor selected")
	v.Addf("weapon %s does not exist", "wpn_1")

	err := v.ToError()
	assert.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	msgs := errors.ValidationMessages(err)
	assert.Equal(t, []string{"No actor selected", "weapon wpn_1 does not exist"}, msgs)
}

func TestValidationMessagesOnOtherError(t *testing.T) {
	assert.Nil(t, errors.ValidationMessages(errors.Internal("boom")))
}

func TestValidationBuilder(t *testing.T) {
	err := errors.NewValidationBuilder().
		RequiredField("CharacterRepo").
		Field("Roller", "must not be nil").
		Build()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CharacterRepo is required")
	assert.Contains(t, err.Error(), "Roller must not be nil")
}

func TestValidationBuilderClean(t *testing.T) {
	assert.NoError(t, errors.NewValidationBuilder().Build())
}
