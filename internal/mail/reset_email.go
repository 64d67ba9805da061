package mail

import "fmt"

// PasswordResetEmail собирает письмо с кодом сброса.
// Plaintext-код живёт только здесь и в ответе SMTP-сессии, в логи не попадает.
func PasswordResetEmail(otpCode, userName string, ttlMinutes int) (subject, htmlBody, textBody string) {
	greeting := "Hello"
	if userName != "" {
		greeting = "Hello " + userName
	}

	subject = "Password Reset Request - Identity Service"

	textBody = fmt.Sprintf(`%s,

You have requested to reset your password for the Identity Service.

Your password reset code is: %s

This code will expire in %d minutes.

If you did not request this password reset, please ignore this email.

Best regards,
Identity Service Team
`, greeting, otpCode, ttlMinutes)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>Password Reset Request</h1>
    <p>%s,</p>
    <p>You have requested to reset your password for the Identity Service.</p>
    <p>Your password reset code is:</p>
    <div style="font-size: 32px; font-weight: bold; text-align: center; letter-spacing: 5px;">%s</div>
    <p>This code will expire in <strong>%d minutes</strong>.</p>
    <p style="color: #f44336;">If you did not request this password reset, please ignore this email.</p>
    <p>Identity Service Team</p>
  </div>
</body>
</html>
`, greeting, otpCode, ttlMinutes)

	return subject, htmlBody, textBody
}
