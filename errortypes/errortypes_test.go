package errortypes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadCode(t *testing.T) {
	testCases := []struct {
		description  string
		err          error
		expectedCode int
	}{
		{
			description:  "bad-input",
			err:          &BadInput{Message: "bad"},
			expectedCode: BadInputErrorCode,
		},
		{
			description:  "invalid-imp-size",
			err:          &InvalidImpSize{ImpID: "imp-1", Message: "bad size"},
			expectedCode: InvalidImpSizeErrorCode,
		},
		{
			description:  "timeout",
			err:          &Timeout{Message: "slow"},
			expectedCode: TimeoutErrorCode,
		},
		{
			description:  "warning",
			err:          &Warning{Message: "floor", WarningCode: InvalidFloorWarningCode},
			expectedCode: InvalidFloorWarningCode,
		},
		{
			description:  "not-a-coder",
			err:          errors.New("plain"),
			expectedCode: UnknownErrorCode,
		},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expectedCode, ReadCode(test.err), test.description)
	}
}

func TestSeverityFilters(t *testing.T) {
	warning := &Warning{Message: "floor", WarningCode: InvalidFloorWarningCode}
	fatal := &BadServerResponse{Message: "500"}
	plain := errors.New("plain")

	errs := []error{warning, fatal, plain}

	assert.True(t, ContainsFatalError(errs))
	assert.False(t, ContainsFatalError([]error{warning}))
	assert.Equal(t, []error{fatal, plain}, FatalOnly(errs))
	assert.Equal(t, []error{warning}, WarningOnly(errs))
}

func TestAggregateErrors(t *testing.T) {
	assert.Equal(t, "", NewAggregateErrors("empty", nil).Error())

	one := NewAggregateErrors("config", []error{errors.New("a")})
	assert.Equal(t, "config (1 error):\n  1: a\n", one.Error())

	two := NewAggregateErrors("config", []error{errors.New("a"), errors.New("b")})
	assert.Equal(t, "config (2 errors):\n  1: a\n  2: b\n", two.Error())
}
