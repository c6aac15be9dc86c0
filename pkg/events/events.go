package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carebridge/carebridge-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	AppointmentCreated   = "appointment.created"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentCancelled = "appointment.cancelled"
	BedsUpdated          = "hospital.beds.updated"
)

// Event payloads
type AppointmentCreatedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	UserID        int64     `json:"user_id"`
	HospitalID    int64     `json:"hospital_id"`
	PatientEmail  string    `json:"patient_email"`
	PatientName   string    `json:"patient_name"`
	HospitalName  string    `json:"hospital_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"created_at"`
}

type AppointmentConfirmedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	HospitalID    int64     `json:"hospital_id"`
	PatientEmail  string    `json:"patient_email"`
	PatientName   string    `json:"patient_name"`
	HospitalName  string    `json:"hospital_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	BedReserved   bool      `json:"bed_reserved"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

type AppointmentCancelledEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	HospitalID    int64     `json:"hospital_id"`
	PatientEmail  string    `json:"patient_email"`
	PatientName   string    `json:"patient_name"`
	HospitalName  string    `json:"hospital_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	BedReleased   bool      `json:"bed_released"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

type BedsUpdatedEvent struct {
	HospitalID    int64     `json:"hospital_id"`
	TotalBeds     int       `json:"total_beds"`
	OccupiedBeds  int       `json:"occupied_beds"`
	AvailableBeds int       `json:"available_beds"`
	UpdatedAt     time.Time `json:"updated_at"`
}
