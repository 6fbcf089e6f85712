package emailtemplates

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const otpEmailSubject = "Your HD Notes verification code"

const otpEmailText = `Your verification code is %s. It will expire in %d minutes.

If you didn't request this code, please ignore this email.`

const otpEmailHTMLTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4361ee;">HD Notes</h2>
  <p>Your verification code is:</p>
  <h1 style="font-size: 40px; letter-spacing: 5px; text-align: center; margin: 20px 0;">{{.Code}}</h1>
  <p>This code will expire in {{.Minutes}} minutes.</p>
  <p>If you didn't request this code, please ignore this email.</p>
</div>`

var otpEmailHTML = template.Must(template.New("otp-email").Parse(otpEmailHTMLTemplate))

// BuildOTPEmail renders subject, plain text and HTML bodies for a
// verification code message.
func BuildOTPEmail(code string, validFor time.Duration) (subject string, text string, html string, err error) {
	minutes := int(validFor.Minutes())
	if minutes < 1 {
		minutes = 1
	}

	var buf bytes.Buffer
	err = otpEmailHTML.Execute(&buf, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: minutes})
	if err != nil {
		return "", "", "", fmt.Errorf("error rendering otp email template: %v", err)
	}

	subject = otpEmailSubject
	text = fmt.Sprintf(otpEmailText, code, minutes)
	html = buf.String()
	return subject, text, html, nil
}
