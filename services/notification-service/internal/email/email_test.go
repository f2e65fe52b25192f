package email

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

func TestRenderFillsFields(t *testing.T) {
	subject, body, err := Render(KindBookingConfirmed, Data{CustomerName: "Cara", ProviderName: "Dr. P", Date: "2030-01-01", TimeSlot: "10:00-10:30"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Your booking is confirmed" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Cara", "Dr. P", "2030-01-01", "10:00-10:30"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %q missing %q", body, want)
		}
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if _, _, err := Render("nope", Data{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	var got *gomail.Message
	s := &SMTPSender{from: "no-reply@bookmycare.local", send: func(m *gomail.Message) error {
		got = m
		return nil
	}}
	if err := s.Send("cara@example.test", "Hello", "Body text"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if to := got.GetHeader("To"); len(to) != 1 || to[0] != "cara@example.test" {
		t.Fatalf("unexpected To header: %v", to)
	}
	var buf bytes.Buffer
	if _, err := got.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	if !strings.Contains(buf.String(), "Subject: Hello") || !strings.Contains(buf.String(), "Body text") {
		t.Fatalf("unexpected message:\n%s", buf.String())
	}
}
