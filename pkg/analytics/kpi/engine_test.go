package kpi

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/mediinsight/platform/pkg/cohort"
)

func makeRecord(i int, missed bool, leadDays int, sms bool, gender cohort.Gender) cohort.AppointmentRecord {
	outcome := cohort.OutcomeShow
	if missed {
		outcome = cohort.OutcomeNoShow
	}
	scheduled := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	return cohort.AppointmentRecord{
		PatientID:      "P-" + string(rune('A'+i)),
		AppointmentID:  "APT-" + string(rune('A'+i)),
		Gender:         gender,
		ScheduledDay:   scheduled,
		AppointmentDay: scheduled.AddDate(0, 0, leadDays),
		Age:            40,
		Neighbourhood:  "JARDIM DA PENHA",
		SMSReceived:    sms,
		NoShow:         outcome,
		LeadDays:       leadDays,
	}
}

// Ten records, exactly three missed; the three missed ones were booked
// 6, 7 and 8 days out, everything else at 5 or less.
func scenarioCohort() []cohort.AppointmentRecord {
	records := []cohort.AppointmentRecord{
		makeRecord(0, true, 6, true, cohort.GenderFemale),
		makeRecord(1, true, 7, false, cohort.GenderFemale),
		makeRecord(2, true, 8, false, cohort.GenderMale),
	}
	for i := 3; i < 10; i++ {
		records = append(records, makeRecord(i, false, i%6, i%2 == 0, cohort.GenderMale))
	}
	return records
}

func TestNoShowRateScenario(t *testing.T) {
	rate, err := NoShowRate(scenarioCohort())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 30.0 {
		t.Fatalf("expected rate 30.0, got %v", rate)
	}
}

func TestNoShowRateEmptyCohort(t *testing.T) {
	if _, err := NoShowRate(nil); !errors.Is(err, ErrEmptySubgroup) {
		t.Fatalf("expected ErrEmptySubgroup, got %v", err)
	}
}

func TestNoShowRateIsPermutationInvariant(t *testing.T) {
	records := scenarioCohort()
	want, err := NoShowRate(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]cohort.AppointmentRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, err := NoShowRate(shuffled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("rate changed under permutation: %v != %v", got, want)
		}
	}
}

func TestGroupRateBoundsAndEmptySubgroup(t *testing.T) {
	records := scenarioCohort()

	smsRate, err := GroupRate(records, func(r cohort.AppointmentRecord) bool { return r.SMSReceived })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	noSMSRate, err := GroupRate(records, func(r cohort.AppointmentRecord) bool { return !r.SMSReceived })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rate := range []float64{smsRate, noSMSRate} {
		if rate < 0 || rate > 100 {
			t.Fatalf("rate %v outside [0,100]", rate)
		}
	}

	// A cohort where everyone received an SMS has no control group.
	allSMS := []cohort.AppointmentRecord{
		makeRecord(0, true, 3, true, cohort.GenderFemale),
		makeRecord(1, false, 2, true, cohort.GenderMale),
	}
	_, err = GroupRate(allSMS, func(r cohort.AppointmentRecord) bool { return !r.SMSReceived })
	if !errors.Is(err, ErrEmptySubgroup) {
		t.Fatalf("expected ErrEmptySubgroup, got %v", err)
	}
	if _, err := SMSImpact(allSMS); !errors.Is(err, ErrEmptySubgroup) {
		t.Fatalf("expected SMSImpact to propagate ErrEmptySubgroup, got %v", err)
	}
}

func TestSMSImpactSign(t *testing.T) {
	// Control group misses everything, SMS group attends everything.
	records := []cohort.AppointmentRecord{
		makeRecord(0, true, 3, false, cohort.GenderFemale),
		makeRecord(1, true, 4, false, cohort.GenderMale),
		makeRecord(2, false, 2, true, cohort.GenderFemale),
		makeRecord(3, false, 1, true, cohort.GenderMale),
	}
	impact, err := SMSImpact(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if impact != 100.0 {
		t.Fatalf("expected impact 100.0, got %v", impact)
	}
}

func TestRevenueLoss(t *testing.T) {
	records := []cohort.AppointmentRecord{
		makeRecord(0, true, 1, false, cohort.GenderFemale),
		makeRecord(1, true, 2, false, cohort.GenderMale),
		makeRecord(2, true, 3, true, cohort.GenderFemale),
		makeRecord(3, true, 4, true, cohort.GenderMale),
		makeRecord(4, false, 5, true, cohort.GenderFemale),
	}
	loss, err := RevenueLoss(records, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loss != 600 {
		t.Fatalf("expected loss 600, got %v", loss)
	}

	if _, err := RevenueLoss(records, -1); !errors.Is(err, ErrNegativeUnitValue) {
		t.Fatalf("expected ErrNegativeUnitValue, got %v", err)
	}
}

func TestGenderBreakdownOmitsAbsentGenders(t *testing.T) {
	records := []cohort.AppointmentRecord{
		makeRecord(0, true, 1, false, cohort.GenderFemale),
		makeRecord(1, true, 2, false, cohort.GenderFemale),
		makeRecord(2, false, 3, true, cohort.GenderMale),
	}
	breakdown := GenderBreakdown(records)
	if breakdown[cohort.GenderFemale] != 2 {
		t.Fatalf("expected 2 female no-shows, got %d", breakdown[cohort.GenderFemale])
	}
	if _, ok := breakdown[cohort.GenderMale]; ok {
		t.Fatal("expected male entry to be omitted when no male no-shows exist")
	}
}

func TestHighRiskQueueScenario(t *testing.T) {
	records := scenarioCohort()
	queue := HighRiskQueue(records, DefaultHighRiskLeadDays)
	if len(queue) != 3 {
		t.Fatalf("expected 3 high-risk records, got %d", len(queue))
	}
	byID := make(map[string]bool, len(records))
	for _, r := range records {
		byID[r.AppointmentID] = true
	}
	for i, r := range queue {
		if !r.Missed() || r.LeadDays <= DefaultHighRiskLeadDays {
			t.Fatalf("queue entry %d does not satisfy the filter: %+v", i, r)
		}
		if !byID[r.AppointmentID] {
			t.Fatalf("queue entry %d not part of the cohort", i)
		}
	}
	// Order must be cohort order.
	if queue[0].LeadDays != 6 || queue[1].LeadDays != 7 || queue[2].LeadDays != 8 {
		t.Fatalf("queue not in cohort order: %v %v %v", queue[0].LeadDays, queue[1].LeadDays, queue[2].LeadDays)
	}
}

func TestSearch(t *testing.T) {
	records := []cohort.AppointmentRecord{
		makeRecord(0, false, 1, true, cohort.GenderFemale),
		makeRecord(1, false, 2, true, cohort.GenderMale),
	}
	records[0].PatientID = "P-10000"
	records[0].Neighbourhood = "MATA DA PRAIA"
	records[1].PatientID = "P-10001"
	records[1].Neighbourhood = "RESISTÊNCIA"

	if got := Search(records, ""); len(got) != len(records) {
		t.Fatalf("empty term should return full cohort, got %d records", len(got))
	}
	if got := Search(records, "mata da"); len(got) != 1 || got[0].PatientID != "P-10000" {
		t.Fatalf("neighbourhood search failed: %+v", got)
	}
	if got := Search(records, "10001"); len(got) != 1 || got[0].PatientID != "P-10001" {
		t.Fatalf("patient id search failed: %+v", got)
	}
	if got := Search(records, "nowhere"); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestSummarize(t *testing.T) {
	records := scenarioCohort()
	summary, err := Summarize(records, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalAppointments != 10 || summary.NoShowCount != 3 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.NoShowRate == nil || *summary.NoShowRate != 30.0 {
		t.Fatalf("expected no-show rate 30.0, got %v", summary.NoShowRate)
	}
	if summary.EstimatedRevenueLoss != 450 {
		t.Fatalf("expected revenue loss 450, got %v", summary.EstimatedRevenueLoss)
	}
	if summary.SMSImpact == nil || summary.SMSSuccessRate == nil {
		t.Fatal("expected SMS metrics to be present for a two-sided cohort")
	}

	// One-sided cohort: SMS metrics degrade to absent, not errors.
	oneSided := []cohort.AppointmentRecord{makeRecord(0, true, 3, true, cohort.GenderFemale)}
	summary, err = Summarize(oneSided, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.NoSMSGroupRate != nil || summary.SMSImpact != nil {
		t.Fatalf("expected absent control-group metrics: %+v", summary)
	}
}
