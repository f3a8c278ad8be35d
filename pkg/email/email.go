package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"time"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) appName() string {
	if s.config.FromName != "" {
		return s.config.FromName
	}
	return "BillFlow"
}

// SendPasswordResetEmail sends a password reset email
func (s *EmailService) SendPasswordResetEmail(toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.config.FrontendURL,
		url.QueryEscape(token),
		url.QueryEscape(toEmail),
	)

	htmlContent, err := s.render(passwordResetTemplate, map[string]string{
		"AppName":  s.appName(),
		"Email":    toEmail,
		"ResetURL": resetURL,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Reset Your Password - %s", s.appName())
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, htmlContent))
}

// SendInvoiceEmail notifies a client that an invoice has been issued to them.
// Amounts arrive in cents.
func (s *EmailService) SendInvoiceEmail(toEmail, clientName, number string, totalCents int64, currency string, dueDate time.Time) error {
	htmlContent, err := s.render(invoiceIssuedTemplate, map[string]string{
		"AppName":    s.appName(),
		"ClientName": clientName,
		"Number":     number,
		"Total":      fmt.Sprintf("%s %.2f", currency, float64(totalCents)/100),
		"DueDate":    dueDate.Format("2 January 2006"),
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s from %s", number, s.appName())
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, htmlContent))
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

func (s *EmailService) render(tmplText string, data map[string]string) (string, error) {
	tmpl, err := template.New("email").Parse(tmplText)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const passwordResetTemplate = `
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Reset Your Password</title></head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 8px; border-collapse: collapse;">
        <tr>
            <td style="background-color: #1f2937; padding: 28px 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 32px 30px;">
                <h2 style="color: #1a1a2e; margin: 0 0 16px 0; font-size: 20px;">Reset Your Password</h2>
                <p style="color: #4a5568; font-size: 15px; line-height: 1.6;">
                    We received a request to reset the password for the account associated with <strong>{{.Email}}</strong>.
                    The link below expires in <strong>1 hour</strong>.
                </p>
                <p style="margin: 24px 0;">
                    <a href="{{.ResetURL}}" style="display: inline-block; padding: 12px 28px; background-color: #1f2937; color: #ffffff; text-decoration: none; border-radius: 6px; font-size: 15px;">Reset Password</a>
                </p>
                <p style="color: #718096; font-size: 13px; line-height: 1.6;">
                    If you didn't request this, you can safely ignore this email.
                    If the button doesn't work, copy this link into your browser:<br>
                    <a href="{{.ResetURL}}" style="color: #2563eb; word-break: break-all;">{{.ResetURL}}</a>
                </p>
            </td>
        </tr>
        <tr>
            <td style="background-color: #f8fafc; padding: 20px 30px; text-align: center; border-top: 1px solid #e2e8f0;">
                <p style="color: #a0aec0; font-size: 12px; margin: 0;">Sent by {{.AppName}}</p>
            </td>
        </tr>
    </table>
</body>
</html>
`

const invoiceIssuedTemplate = `
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>New Invoice</title></head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 8px; border-collapse: collapse;">
        <tr>
            <td style="background-color: #1f2937; padding: 28px 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 32px 30px;">
                <h2 style="color: #1a1a2e; margin: 0 0 16px 0; font-size: 20px;">Invoice {{.Number}}</h2>
                <p style="color: #4a5568; font-size: 15px; line-height: 1.6;">
                    Hello {{.ClientName}},
                </p>
                <p style="color: #4a5568; font-size: 15px; line-height: 1.6;">
                    A new invoice has been issued to you.
                </p>
                <table role="presentation" style="width: 100%; margin: 20px 0; border-collapse: collapse;">
                    <tr>
                        <td style="padding: 10px 0; color: #718096; font-size: 14px; border-bottom: 1px solid #e2e8f0;">Invoice number</td>
                        <td style="padding: 10px 0; color: #1a1a2e; font-size: 14px; text-align: right; border-bottom: 1px solid #e2e8f0;">{{.Number}}</td>
                    </tr>
                    <tr>
                        <td style="padding: 10px 0; color: #718096; font-size: 14px; border-bottom: 1px solid #e2e8f0;">Amount due</td>
                        <td style="padding: 10px 0; color: #1a1a2e; font-size: 14px; text-align: right; border-bottom: 1px solid #e2e8f0;"><strong>{{.Total}}</strong></td>
                    </tr>
                    <tr>
                        <td style="padding: 10px 0; color: #718096; font-size: 14px;">Due date</td>
                        <td style="padding: 10px 0; color: #1a1a2e; font-size: 14px; text-align: right;">{{.DueDate}}</td>
                    </tr>
                </table>
            </td>
        </tr>
        <tr>
            <td style="background-color: #f8fafc; padding: 20px 30px; text-align: center; border-top: 1px solid #e2e8f0;">
                <p style="color: #a0aec0; font-size: 12px; margin: 0;">Sent by {{.AppName}}</p>
            </td>
        </tr>
    </table>
</body>
</html>
`
