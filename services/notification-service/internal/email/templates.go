package email

import (
	"bytes"
	"fmt"
	"text/template"
)

type Kind string

const (
	KindWelcome          Kind = "welcome"
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingReceived  Kind = "booking_received"
	KindBookingCancelled Kind = "booking_cancelled"
	KindBookingWithdrawn Kind = "booking_withdrawn"
	KindReminder         Kind = "reminder"
)

// Data feeds every template; fields a template does not use stay empty.
type Data struct {
	Name         string
	Role         string
	ProviderName string
	CustomerName string
	Date         string
	TimeSlot     string
}

type tmpl struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]tmpl{
	KindWelcome: {
		subject: "Welcome to BookMyCare",
		body: template.Must(template.New("welcome").Parse(
			"Hi {{.Name}},\n\nYour {{.Role}} account is ready. Sign in to get started.\n")),
	},
	KindBookingConfirmed: {
		subject: "Your booking is confirmed",
		body: template.Must(template.New("confirmed").Parse(
			"Hi {{.CustomerName}},\n\nYou are booked with {{.ProviderName}} on {{.Date}} at {{.TimeSlot}}.\n")),
	},
	KindBookingReceived: {
		subject: "New booking",
		body: template.Must(template.New("received").Parse(
			"Hi {{.ProviderName}},\n\n{{.CustomerName}} booked your {{.TimeSlot}} slot on {{.Date}}.\n")),
	},
	KindBookingCancelled: {
		subject: "Your booking was cancelled",
		body: template.Must(template.New("cancelled").Parse(
			"Hi {{.CustomerName}},\n\nYour booking with {{.ProviderName}} on {{.Date}} at {{.TimeSlot}} is cancelled.\n")),
	},
	KindBookingWithdrawn: {
		subject: "A booking was cancelled",
		body: template.Must(template.New("withdrawn").Parse(
			"Hi {{.ProviderName}},\n\n{{.CustomerName}} cancelled the {{.TimeSlot}} slot on {{.Date}}. It is open again.\n")),
	},
	KindReminder: {
		subject: "Reminder: appointment tomorrow",
		body: template.Must(template.New("reminder").Parse(
			"Hi {{.CustomerName}},\n\nA reminder that you see {{.ProviderName}} on {{.Date}} at {{.TimeSlot}}.\n")),
	},
}

// Render returns the subject and body for kind.
func Render(kind Kind, data Data) (string, string, error) {
	t, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email kind %q", kind)
	}
	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return t.subject, buf.String(), nil
}
