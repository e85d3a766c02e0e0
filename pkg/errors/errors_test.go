package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodePaymentRejected, "amount exceeds remaining balance")

	assert.Equal(t, CodePaymentRejected, err.Code())
	assert.Equal(t, "amount exceeds remaining balance", err.Message())
	assert.Equal(t, "PAYMENT_REJECTED: amount exceeds remaining balance", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "load debt")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDependency, err.Code())
}

func TestAsUnwrapsThroughFmtWrapping(t *testing.T) {
	inner := New(CodeNotFound, "debt not found")
	wrapped := fmt.Errorf("handler: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())

	assert.Nil(t, As(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestHasCode(t *testing.T) {
	err := New(CodeImmutablePrincipal, "payments already recorded")

	assert.True(t, HasCode(err, CodeImmutablePrincipal))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(nil, CodeValidation))
}

func TestMetadataForDomainCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodePaymentRejected, http.StatusUnprocessableEntity},
		{CodeImmutablePrincipal, http.StatusUnprocessableEntity},
		{CodeOverpayment, http.StatusInternalServerError},
		{Code("SOMETHING_UNKNOWN"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, MetadataFor(tc.code).HTTPStatus, "code %s", tc.code)
	}
}

func TestOverpaymentHidesDetailsFromClients(t *testing.T) {
	meta := MetadataFor(CodeOverpayment)
	assert.False(t, meta.DetailsAllowed)
	assert.Equal(t, "internal server error", meta.PublicMessage)
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("broken pipe")
	err := Wrap(CodeDependency, cause, "persist payment")

	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	assert.Len(t, dump.Chain, 2)
	assert.Contains(t, dump.TopMessage, "persist payment")

	assert.Equal(t, ErrorDump{}, Dump(nil))
}
