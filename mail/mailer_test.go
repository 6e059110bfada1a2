package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/openleads/openleads"
)

func TestNewRegistersBuiltinTemplates(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 587, From: "no-reply@openleads.app"})

	for _, id := range []string{openleads.TemplateRegistrationOTP, openleads.TemplatePasswordResetOTP} {
		tpl, ok := m.templates[id]
		if !ok {
			t.Fatalf("template %q not registered", id)
		}
		if tpl.subject == "" {
			t.Fatalf("template %q has no subject", id)
		}
	}
}

func TestTemplatesRenderNameAndCode(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 587, From: "no-reply@openleads.app"})
	data := map[string]string{"name": "Aisha", "otp": "4821"}

	for id, tpl := range m.templates {
		var body bytes.Buffer
		if err := tpl.body.Execute(&body, data); err != nil {
			t.Fatalf("template %q render failed: %v", id, err)
		}
		html := body.String()
		if !strings.Contains(html, "Aisha") {
			t.Fatalf("template %q missing name: %s", id, html)
		}
		if !strings.Contains(html, "4821") {
			t.Fatalf("template %q missing code: %s", id, html)
		}
	}
}

func TestTemplatesEscapeHTML(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 587, From: "no-reply@openleads.app"})
	data := map[string]string{"name": "<script>alert(1)</script>", "otp": "4821"}

	tpl := m.templates[openleads.TemplateRegistrationOTP]
	var body bytes.Buffer
	if err := tpl.body.Execute(&body, data); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(body.String(), "<script>") {
		t.Fatal("template output must escape user-controlled values")
	}
}

func TestSendRejectsUnknownTemplate(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 587, From: "no-reply@openleads.app"})

	err := m.Send(context.Background(), "a@x.com", "no-such-template", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown mail template") {
		t.Fatalf("got %v, want unknown template error", err)
	}
}

func TestSendHonorsContextCancellation(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 587, From: "no-reply@openleads.app"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Send(ctx, "a@x.com", openleads.TemplateRegistrationOTP, map[string]string{"name": "A", "otp": "1234"}); err == nil {
		t.Fatal("expected context error")
	}
}
