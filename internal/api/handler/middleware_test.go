package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lamah/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*models.Caller

func (v stubVerifier) Validate(token string) (*models.Caller, error) {
	caller, ok := v[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return caller, nil
}

func serveAuthn(t *testing.T, header string) (*models.Caller, bool) {
	t.Helper()

	verifier := stubVerifier{"good": {ID: "editor-1", Role: models.RoleEditor}}

	var (
		caller *models.Caller
		called bool
	)
	next := func(c echo.Context) error {
		called = true
		caller, _ = ResolveCaller(c.Request().Context())
		return nil
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()

	err := Authn(verifier)(next)(e.NewContext(req, rec))
	require.NoError(t, err)
	return caller, called
}

func TestAuthn(t *testing.T) {
	caller, called := serveAuthn(t, "Bearer good")
	assert.True(t, called)
	require.NotNil(t, caller)
	assert.Equal(t, "editor-1", caller.ID)
	assert.Equal(t, models.RoleEditor, caller.Role)

	caller, called = serveAuthn(t, "")
	assert.True(t, called)
	assert.Nil(t, caller)

	caller, called = serveAuthn(t, "Basic abc")
	assert.True(t, called)
	assert.Nil(t, caller)

	_, called = serveAuthn(t, "Bearer bad")
	assert.False(t, called)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&importRequest{Text: "q؛a؛؛c"}))
	assert.Error(t, v.Validate(&importRequest{}))

	verified := true
	assert.NoError(t, v.Validate(&verifyRequest{QuestionIDs: []string{"a"}, Verified: &verified}))
	assert.Error(t, v.Validate(&verifyRequest{QuestionIDs: []string{}, Verified: &verified}))
	assert.Error(t, v.Validate(&verifyRequest{QuestionIDs: []string{"a"}}))

	assert.Error(t, v.Validate(&submitRequest{questionRequest: questionRequest{Text: "q", Answer: "a"}}))
	assert.NoError(t, v.Validate(&submitRequest{questionRequest: questionRequest{Text: "q", Answer: "a"}, CategoryID: "c"}))
}
