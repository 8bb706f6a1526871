package errors

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCode(t *testing.T) {
	err := Clone(ErrForbidden, "intervention analytics are disabled")
	assert.Equal(t, "intervention analytics are disabled", err.Message)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.Equal(t, "forbidden", ErrForbidden.Message)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestWrapUnwrapsCause(t *testing.T) {
	err := fmt.Errorf("load settings: %w", Wrap(sql.ErrConnDone, ErrDataUnavailable.Code, ErrDataUnavailable.Status, "intervention data unavailable"))
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.True(t, IsCode(err, "DATA_UNAVAILABLE"))
	assert.Contains(t, err.Error(), "sql: connection is already closed")
}

func TestFromErrorHidesUntypedDetails(t *testing.T) {
	appErr := FromError(errors.New("pq: password authentication failed"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)

	payload, err := json.Marshal(appErr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"internal server error","status":500}`, string(payload))
	assert.Nil(t, FromError(nil))
}
