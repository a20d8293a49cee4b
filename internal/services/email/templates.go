// File: internal/services/email/templates.go
package email

import "fmt"

func verificationSubject() string {
	return "Verify your Collabers email"
}

func verificationBody(otp, link string, expiryMinutes, linkExpiryMinutes int) string {
	return fmt.Sprintf(`
		<h2>Verify your email</h2>
		<p>Your verification code is:</p>
		<p style="font-size:24px;letter-spacing:4px;"><strong>%s</strong></p>
		<p>The code expires in %d minutes.</p>
		<p>Or click the link below (valid for %d minutes):</p>
		<p><a href="%s">Verify my email</a></p>
		<p>If you did not create a Collabers account, you can ignore this email.</p>
	`, otp, expiryMinutes, linkExpiryMinutes, link)
}

func passwordResetSubject() string {
	return "Reset your Collabers password"
}

func passwordResetBody(otp, link string, expiryMinutes, linkExpiryMinutes int) string {
	return fmt.Sprintf(`
		<h2>Password reset requested</h2>
		<p>Your reset code is:</p>
		<p style="font-size:24px;letter-spacing:4px;"><strong>%s</strong></p>
		<p>The code expires in %d minutes.</p>
		<p>Or click the link below (valid for %d minutes):</p>
		<p><a href="%s">Reset my password</a></p>
		<p>If you did not request a password reset, you can ignore this email.</p>
	`, otp, expiryMinutes, linkExpiryMinutes, link)
}
