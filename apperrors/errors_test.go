package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorDeduplicatesFields(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("title")
	v.Add("latitude")
	v.Add("title")

	err := v.OrNil()
	assert.Error(t, err)
	assert.Equal(t, []string{"title", "latitude"}, v.Fields)
	assert.Contains(t, err.Error(), "title, latitude")
}

func TestUnavailableKeepsBothErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("create issue: %w", Unavailable("insert", cause))

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestForbiddenErrorAs(t *testing.T) {
	var err error = &ForbiddenError{Role: "citizen"}
	var fe *ForbiddenError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &fe))
	assert.Equal(t, "citizen", fe.Role)
}
