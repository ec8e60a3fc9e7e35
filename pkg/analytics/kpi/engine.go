// Package kpi derives attendance metrics and segmentations from a cohort
// snapshot. Every function is a pure read over its input; nothing here
// mutates records or keeps state between calls.
package kpi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mediinsight/platform/pkg/cohort"
)

var (
	// ErrEmptySubgroup is returned when a rate would divide by zero.
	// Callers surface "no data" instead of propagating NaN.
	ErrEmptySubgroup = errors.New("rate undefined over empty subgroup")

	ErrNegativeUnitValue = errors.New("unit visit value must not be negative")
)

// DefaultHighRiskLeadDays is the lead-time threshold above which a missed
// appointment enters the follow-up queue.
const DefaultHighRiskLeadDays = 5

// NoShowRate returns the percentage of missed appointments, in [0,100].
func NoShowRate(records []cohort.AppointmentRecord) (float64, error) {
	return GroupRate(records, func(cohort.AppointmentRecord) bool { return true })
}

// GroupRate returns the no-show rate of the subset matching pred.
// The subset being empty is ErrEmptySubgroup, not a zero rate.
func GroupRate(records []cohort.AppointmentRecord, pred func(cohort.AppointmentRecord) bool) (float64, error) {
	var total, missed int
	for _, r := range records {
		if !pred(r) {
			continue
		}
		total++
		if r.Missed() {
			missed++
		}
	}
	if total == 0 {
		return 0, ErrEmptySubgroup
	}
	return float64(missed) / float64(total) * 100, nil
}

// SMSImpact returns rate(no SMS) - rate(SMS). Positive means reminders
// reduced no-shows in this cohort; the sign is reported as computed.
func SMSImpact(records []cohort.AppointmentRecord) (float64, error) {
	withSMS, err := GroupRate(records, func(r cohort.AppointmentRecord) bool { return r.SMSReceived })
	if err != nil {
		return 0, fmt.Errorf("sms group: %w", err)
	}
	withoutSMS, err := GroupRate(records, func(r cohort.AppointmentRecord) bool { return !r.SMSReceived })
	if err != nil {
		return 0, fmt.Errorf("control group: %w", err)
	}
	return withoutSMS - withSMS, nil
}

// RevenueLoss estimates lost revenue as missed appointments times the
// per-visit value.
func RevenueLoss(records []cohort.AppointmentRecord, unitValue float64) (float64, error) {
	if unitValue < 0 {
		return 0, fmt.Errorf("%w: got %v", ErrNegativeUnitValue, unitValue)
	}
	var missed int
	for _, r := range records {
		if r.Missed() {
			missed++
		}
	}
	return float64(missed) * unitValue, nil
}

// GenderBreakdown counts missed appointments per gender. Genders with no
// missed appointments are omitted rather than zero-filled, so chart
// consumers only receive slices that exist.
func GenderBreakdown(records []cohort.AppointmentRecord) map[cohort.Gender]int {
	counts := make(map[cohort.Gender]int)
	for _, r := range records {
		if r.Missed() {
			counts[r.Gender]++
		}
	}
	return counts
}

// HighRiskQueue filters missed appointments that were booked more than
// leadDaysThreshold days in advance, preserving cohort order.
func HighRiskQueue(records []cohort.AppointmentRecord, leadDaysThreshold int) []cohort.AppointmentRecord {
	queue := make([]cohort.AppointmentRecord, 0)
	for _, r := range records {
		if r.Missed() && r.LeadDays > leadDaysThreshold {
			queue = append(queue, r)
		}
	}
	return queue
}

// Search filters by case-insensitive substring match on patient ID or
// neighbourhood. An empty term returns the cohort unchanged.
func Search(records []cohort.AppointmentRecord, term string) []cohort.AppointmentRecord {
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)
	matches := make([]cohort.AppointmentRecord, 0)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.PatientID), needle) ||
			strings.Contains(strings.ToLower(r.Neighbourhood), needle) {
			matches = append(matches, r)
		}
	}
	return matches
}
