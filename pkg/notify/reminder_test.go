package notify

import (
	"context"
	"testing"

	"github.com/mediinsight/platform/pkg/cohort"
	"github.com/mediinsight/platform/pkg/common/logger"
)

func TestStubDispatcherCountsTargets(t *testing.T) {
	logger.Init()

	records := []cohort.AppointmentRecord{
		{PatientID: "P-10000", NoShow: cohort.OutcomeNoShow, LeadDays: 7},
		{PatientID: "P-10001", NoShow: cohort.OutcomeNoShow, LeadDays: 9},
	}

	count, err := StubDispatcher{}.Dispatch(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 targets, got %d", count)
	}

	count, err = StubDispatcher{}.Dispatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 targets for empty queue, got %d", count)
	}
}
