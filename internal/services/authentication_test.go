package services

import (
	"testing"
	"time"

	"lamah/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)

	token, err := auth.CreateToken(editor, time.Hour)
	require.NoError(t, err)

	caller, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, editor, caller)
}

func TestAuthenticationRejects(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)
	other, err := NewAuthentication("other")
	require.NoError(t, err)

	token, err := other.CreateToken(admin, time.Hour)
	require.NoError(t, err)
	_, err = auth.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	unbounded, err := auth.CreateToken(admin, 0)
	require.NoError(t, err)
	_, err = auth.Validate(unbounded)
	assert.NoError(t, err)

	bogus, err := auth.CreateToken(&models.Caller{ID: "x", Role: "root"}, time.Hour)
	require.NoError(t, err)
	_, err = auth.Validate(bogus)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewAuthentication("")
	assert.Error(t, err)
}

func TestAuthenticationExpired(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)

	claims := CustomClaims{
		ID:   "editor-1",
		Role: models.RoleEditor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPendingMessageEscapesHTML(t *testing.T) {
	message := pendingMessage(&models.PendingQuestion{
		ID:         "p1",
		CategoryID: "math",
		Text:       "Is 1 < 2?",
		Answer:     "yes & no",
		Difficulty: models.QuestionEasy,
	})

	assert.Contains(t, message, "Is 1 &lt; 2?")
	assert.Contains(t, message, "yes &amp; no")
	assert.Contains(t, message, "<code>p1</code>")
	assert.NotContains(t, message, "Options:")
}
