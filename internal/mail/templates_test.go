package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerificationEmailEmbedsCode(t *testing.T) {
	t.Parallel()

	subject, body := VerificationEmail("123456")
	require.NotEmpty(t, subject)
	require.Contains(t, body, "123456")
	require.False(t, strings.Contains(body, "{code}"))
}

func TestPasswordResetEmailEmbedsCode(t *testing.T) {
	t.Parallel()

	_, body := PasswordResetEmail("654321")
	require.Contains(t, body, "654321")
	require.False(t, strings.Contains(body, "{code}"))
}

func TestPasswordChangedEmail(t *testing.T) {
	t.Parallel()

	subject, body := PasswordChangedEmail()
	require.NotEmpty(t, subject)
	require.Contains(t, body, "signed out")
}
