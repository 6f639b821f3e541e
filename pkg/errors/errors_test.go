package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name            string
		err             error
		wantValidation  bool
		wantNotFound    bool
		wantConsistency bool
		wantCode        string
	}{
		{
			name:           "validation",
			err:            WrapValidation("due date cannot be in the past"),
			wantValidation: true,
			wantCode:       ErrCodeValidation,
		},
		{
			name:           "invalid id is a validation error",
			err:            WrapInvalidID("xyz"),
			wantValidation: true,
			wantCode:       ErrCodeInvalidID,
		},
		{
			name:           "evidence required",
			err:            WrapEvidenceRequired("p-1"),
			wantValidation: true,
			wantCode:       ErrCodeEvidenceRequired,
		},
		{
			name:         "payment not found",
			err:          WrapPaymentNotFound("p-1"),
			wantNotFound: true,
			wantCode:     ErrCodePaymentNotFound,
		},
		{
			name:         "evidence not found",
			err:          WrapEvidenceNotFound("p-1"),
			wantNotFound: true,
			wantCode:     ErrCodeEvidenceNotFound,
		},
		{
			name:            "consistency fault keeps cause",
			err:             WrapConsistencyFault("payment delete failed after evidence removal", dbErr),
			wantConsistency: true,
			wantCode:        ErrCodeConsistencyFault,
		},
		{
			name:     "database error",
			err:      WrapDatabaseError(dbErr),
			wantCode: ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValidation, IsValidation(tt.err))
			assert.Equal(t, tt.wantNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.wantConsistency, IsConsistencyFault(tt.err))
			assert.Equal(t, tt.wantCode, Code(tt.err))
		})
	}
}

func TestWrappedCauseIsReachable(t *testing.T) {
	cause := errors.New("connection reset")

	err := WrapConsistencyFault("status update failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConsistencyFault)
	assert.Contains(t, err.Error(), "connection reset")

	err = WrapDatabaseError(cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrDatabase)
}

func TestCodeOnPlainError(t *testing.T) {
	assert.Equal(t, "", Code(errors.New("plain")))
}
