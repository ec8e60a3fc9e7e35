// Package notify dispatches follow-up reminders for high-risk patients.
// Actual message delivery lives outside this system; the dispatchers here
// either count the targets or hand them to the event bus.
package notify

import (
	"context"

	"github.com/mediinsight/platform/pkg/cohort"
	"github.com/mediinsight/platform/pkg/common/kafka"
	"github.com/mediinsight/platform/pkg/common/logger"
)

const (
	eventTypeReminder = "reminder.sms"
	eventSource       = "dashboard-service"
)

// Dispatcher sends one reminder per record and reports how many patients
// were targeted.
type Dispatcher interface {
	Dispatch(ctx context.Context, records []cohort.AppointmentRecord) (int, error)
}

// StubDispatcher counts the targets without sending anything.
type StubDispatcher struct{}

func (StubDispatcher) Dispatch(ctx context.Context, records []cohort.AppointmentRecord) (int, error) {
	logger.Log.WithField("count", len(records)).Info("Reminder dispatch (stub)")
	return len(records), nil
}

// KafkaDispatcher publishes one reminder event per record for a
// downstream messaging service to act on.
type KafkaDispatcher struct {
	producer *kafka.Producer
}

func NewKafkaDispatcher(topic string) *KafkaDispatcher {
	return &KafkaDispatcher{producer: kafka.NewProducer(topic)}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, records []cohort.AppointmentRecord) (int, error) {
	sent := 0
	for _, r := range records {
		data := map[string]interface{}{
			"patient_id":     r.PatientID,
			"appointment_id": r.AppointmentID,
			"neighbourhood":  r.Neighbourhood,
			"lead_days":      r.LeadDays,
		}
		if err := d.producer.PublishEvent(ctx, eventTypeReminder, eventSource, data); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}
