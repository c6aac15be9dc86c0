package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/carebridge/carebridge-api/internal/notify"
	"github.com/carebridge/carebridge-api/pkg/events"
)

type fakeBus struct {
	handlers map[string]func(*events.Message)
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]func(*events.Message))}
}

func (b *fakeBus) Publish(_ context.Context, _ string, _ interface{}) error {
	return nil
}

func (b *fakeBus) Subscribe(subject string, handler func(*events.Message)) error {
	b.handlers[subject] = handler
	return nil
}

func (b *fakeBus) QueueSubscribe(subject, _ string, handler func(*events.Message)) error {
	b.handlers[subject] = handler
	return nil
}

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) deliver(t *testing.T, subject string, event any) {
	t.Helper()
	handler, ok := b.handlers[subject]
	if !ok {
		t.Fatalf("no handler registered for %s", subject)
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	handler(&events.Message{Subject: subject, Data: data, Timestamp: time.Now()})
}

type recordingMailer struct {
	confirmedTo []string
	cancelledTo []string
}

func (m *recordingMailer) SendAppointmentConfirmed(toEmail, toName, hospitalName, date, timeOfDay string) error {
	m.confirmedTo = append(m.confirmedTo, toEmail)
	return nil
}

func (m *recordingMailer) SendAppointmentCancelled(toEmail, toName, hospitalName, date, timeOfDay string) error {
	m.cancelledTo = append(m.cancelledTo, toEmail)
	return nil
}

func TestWorkerMailsOnLifecycleEvents(t *testing.T) {
	bus := newFakeBus()
	mail := &recordingMailer{}

	worker := notify.NewWorker(bus, mail)
	if err := worker.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	bus.deliver(t, events.AppointmentConfirmed, events.AppointmentConfirmedEvent{
		AppointmentID: 1,
		PatientEmail:  "asha@example.com",
		PatientName:   "Asha Rao",
		HospitalName:  "City General",
		Date:          "2026-09-10",
		Time:          "10:30",
	})
	bus.deliver(t, events.AppointmentCancelled, events.AppointmentCancelledEvent{
		AppointmentID: 2,
		PatientEmail:  "ravi@example.com",
	})

	if len(mail.confirmedTo) != 1 || mail.confirmedTo[0] != "asha@example.com" {
		t.Errorf("confirmed mails = %v", mail.confirmedTo)
	}
	if len(mail.cancelledTo) != 1 || mail.cancelledTo[0] != "ravi@example.com" {
		t.Errorf("cancelled mails = %v", mail.cancelledTo)
	}
}

func TestWorkerIgnoresMalformedEvents(t *testing.T) {
	bus := newFakeBus()
	mail := &recordingMailer{}

	worker := notify.NewWorker(bus, mail)
	if err := worker.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	handler := bus.handlers[events.AppointmentConfirmed]
	handler(&events.Message{Subject: events.AppointmentConfirmed, Data: []byte("not json")})

	if len(mail.confirmedTo) != 0 {
		t.Errorf("confirmed mails = %v, want none", mail.confirmedTo)
	}
}
