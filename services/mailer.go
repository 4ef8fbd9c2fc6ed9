package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

// Email is one outbound message. TemplateKind selects the HTML body template;
// Data feeds its placeholders.
type Email struct {
	Recipient    string
	Subject      string
	TemplateKind NotificationKind
	Data         map[string]string
}

// Mailer dispatches a single email. One attempt, no retry, no delivery
// confirmation loop.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

var emailTemplates = map[NotificationKind]*template.Template{
	KindPropertyDeletedTenant: template.Must(template.New("tenant").Parse(
		`<h2>Urgent: your home is no longer available</h2>
<p>The property <strong>{{.PropertyName}}</strong> at {{.PropertyAddress}} has been removed by its owner.</p>
<p>Your approved application is no longer valid. Please contact support to discuss next steps.</p>`)),
	KindPropertyDeletedProspect: template.Must(template.New("prospect").Parse(
		`<h2>Property no longer available</h2>
<p>The property <strong>{{.PropertyName}}</strong> at {{.PropertyAddress}} has been removed and your application has been closed.</p>`)),
	KindApplicationCancelled: template.Must(template.New("application").Parse(
		`<h2>Application cancelled</h2>
<p>Your application for <strong>{{.PropertyName}}</strong> has been cancelled.</p>`)),
	KindMaintenanceCancelled: template.Must(template.New("maintenance").Parse(
		`<h2>Maintenance request cancelled</h2>
<p>The request "{{.PropertyName}}" was cancelled.{{if .Reason}} Reason: {{.Reason}}{{end}}</p>`)),
	KindSubscriptionCancelled: template.Must(template.New("subscription").Parse(
		`<h2>Subscription ended</h2>
<p>Your alerts for <strong>{{.PropertyName}}</strong> have been stopped because the property was removed.</p>`)),
	KindTourConfirmed: template.Must(template.New("tourConfirmed").Parse(
		`<h2>Tour confirmed</h2>
<p>Your tour of <strong>{{.PropertyName}}</strong> is confirmed. Confirmation code: {{.ConfirmationCode}}</p>`)),
	KindTourCancelled: template.Must(template.New("tourCancelled").Parse(
		`<h2>Tour cancelled</h2>
<p>Your tour of <strong>{{.PropertyName}}</strong> has been cancelled.</p>`)),
	KindNewApplication: template.Must(template.New("newApplication").Parse(
		`<h2>New application</h2>
<p>A new application was submitted for <strong>{{.PropertyName}}</strong>.</p>`)),
	KindNewMaintenance: template.Must(template.New("newMaintenance").Parse(
		`<h2>New maintenance request</h2>
<p>A tenant submitted "{{.PropertyName}}".{{if .Reason}} Details: {{.Reason}}{{end}}</p>`)),
}

// RenderEmailBody resolves the template for a kind and renders it.
func RenderEmailBody(kind NotificationKind, data map[string]string) (string, error) {
	tmpl, ok := emailTemplates[kind]
	if !ok {
		return "", fmt.Errorf("no email template for kind %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", kind, err)
	}
	return buf.String(), nil
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailerFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_FROM, SMTP_USERNAME
// and SMTP_PASSWORD. Auth is skipped when no username is configured.
func NewSMTPMailerFromEnv() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@cocoon.app"
	}
	m := &SMTPMailer{addr: host + ":" + port, from: from}
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		m.auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	body, err := RenderEmailBody(msg.TemplateKind, msg.Data)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.Recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{msg.Recipient}, buf.Bytes())
}
