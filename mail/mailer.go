package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"github.com/openleads/openleads"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type otpTemplate struct {
	subject string
	body    *template.Template
}

// SMTPMailer delivers OTP messages over SMTP. Safe for concurrent use; a
// fresh connection is dialed per send, which is fine at OTP volumes.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	templates map[string]otpTemplate
}

// New returns a mailer with the built-in registration and password-reset
// templates registered.
func New(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		templates: map[string]otpTemplate{
			openleads.TemplateRegistrationOTP: {
				subject: "Your Open Leads verification code",
				body:    template.Must(template.New(openleads.TemplateRegistrationOTP).Parse(registrationBody)),
			},
			openleads.TemplatePasswordResetOTP: {
				subject: "Your Open Leads password reset code",
				body:    template.Must(template.New(openleads.TemplatePasswordResetOTP).Parse(passwordResetBody)),
			},
		},
	}
}

const registrationBody = `<p>Hi {{.name}},</p>
<p>Your Open Leads verification code is <strong>{{.otp}}</strong>.</p>
<p>The code expires in 5 minutes. If you did not request it, ignore this email.</p>`

const passwordResetBody = `<p>Hi {{.name}},</p>
<p>Your Open Leads password reset code is <strong>{{.otp}}</strong>.</p>
<p>The code expires in 5 minutes. If you did not request a reset, ignore this email.</p>`

// Send implements [openleads.Mailer]. The context is checked before
// dialing; gomail itself has no context support.
func (m *SMTPMailer) Send(ctx context.Context, to, templateID string, data map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tpl, ok := m.templates[templateID]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateID)
	}

	var body bytes.Buffer
	if err := tpl.body.Execute(&body, data); err != nil {
		return fmt.Errorf("render template %q: %w", templateID, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", tpl.subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
