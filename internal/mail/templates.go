package mail

import "strings"

const verificationBody = `<html>
  <body style="font-family: sans-serif;">
    <h2>Verify your email</h2>
    <p>Use the following code to verify your email address:</p>
    <p style="font-size: 24px; letter-spacing: 4px;"><strong>{code}</strong></p>
    <p>The code expires in 10 minutes. If you did not request it, you can ignore this email.</p>
  </body>
</html>`

const passwordResetBody = `<html>
  <body style="font-family: sans-serif;">
    <h2>Password reset requested</h2>
    <p>Use the following code to reset your password:</p>
    <p style="font-size: 24px; letter-spacing: 4px;"><strong>{code}</strong></p>
    <p>The code expires in 10 minutes. If you did not request it, you can ignore this email.</p>
  </body>
</html>`

const passwordChangedBody = `<html>
  <body style="font-family: sans-serif;">
    <h2>Your password was changed</h2>
    <p>Every active session has been signed out. If this was not you, request a password reset immediately.</p>
  </body>
</html>`

// VerificationEmail renders the email-verification message for a code.
func VerificationEmail(code string) (subject, body string) {
	return "Your account verification code", strings.ReplaceAll(verificationBody, "{code}", code)
}

// PasswordResetEmail renders the password-reset message for a code.
func PasswordResetEmail(code string) (subject, body string) {
	return "Your password reset code", strings.ReplaceAll(passwordResetBody, "{code}", code)
}

// PasswordChangedEmail renders the post-change notice.
func PasswordChangedEmail() (subject, body string) {
	return "Your password was changed", passwordChangedBody
}
