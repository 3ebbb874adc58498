package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/GENO/internal/logging"
)

func TestErrorFormatting(t *testing.T) {
	base := stderrors.New("rng exhausted")
	err := Wrap(base, "seeding failed").
		WithOperation("seed_population").
		WithComponent("genetic")

	msg := err.Error()
	assert.Contains(t, msg, "seeding failed")
	assert.Contains(t, msg, "operation=seed_population")
	assert.Contains(t, msg, "component=genetic")
	assert.Contains(t, msg, "rng exhausted")
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, "context")

	assert.True(t, Is(err, base))
	assert.Equal(t, base, Unwrap(err))

	var target *Error
	assert.True(t, As(err, &target))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestWrapfFormats(t *testing.T) {
	err := Wrapf(stderrors.New("inner"), "job %s failed", "job_1")
	assert.Contains(t, err.Error(), "job job_1 failed")
}

func TestNewCapturesStack(t *testing.T) {
	err := New("plain")
	assert.NotEmpty(t, err.StackTrace())
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, err := logging.NewLogger(&logging.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)

	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(fmt.Errorf("handler blew up"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/solve", nil)
	RecoveryMiddleware(logger)(panicky).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
