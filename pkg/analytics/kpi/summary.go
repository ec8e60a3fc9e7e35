package kpi

import (
	"errors"

	"github.com/mediinsight/platform/pkg/cohort"
)

// Summary bundles the dashboard's headline metrics. Rate pointers are nil
// where the underlying subgroup was empty so the rendering layer can show
// "no data" instead of a number.
type Summary struct {
	TotalAppointments    int      `json:"total_appointments"`
	NoShowCount          int      `json:"no_show_count"`
	NoShowRate           *float64 `json:"no_show_rate,omitempty"`
	SMSGroupRate         *float64 `json:"sms_group_rate,omitempty"`
	NoSMSGroupRate       *float64 `json:"no_sms_group_rate,omitempty"`
	SMSImpact            *float64 `json:"sms_impact,omitempty"`
	SMSSuccessRate       *float64 `json:"sms_success_rate,omitempty"`
	EstimatedRevenueLoss float64  `json:"estimated_revenue_loss"`
}

// Summarize computes the headline metrics in one pass over the cohort.
// Empty subgroups degrade to absent fields; only a negative unitValue is
// an error.
func Summarize(records []cohort.AppointmentRecord, unitValue float64) (Summary, error) {
	loss, err := RevenueLoss(records, unitValue)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalAppointments:    len(records),
		EstimatedRevenueLoss: loss,
	}
	for _, r := range records {
		if r.Missed() {
			summary.NoShowCount++
		}
	}

	summary.NoShowRate = rateOrNil(records, func(cohort.AppointmentRecord) bool { return true })
	summary.SMSGroupRate = rateOrNil(records, func(r cohort.AppointmentRecord) bool { return r.SMSReceived })
	summary.NoSMSGroupRate = rateOrNil(records, func(r cohort.AppointmentRecord) bool { return !r.SMSReceived })

	if summary.SMSGroupRate != nil && summary.NoSMSGroupRate != nil {
		impact := *summary.NoSMSGroupRate - *summary.SMSGroupRate
		summary.SMSImpact = &impact
		success := 100 - *summary.SMSGroupRate
		summary.SMSSuccessRate = &success
	}

	return summary, nil
}

func rateOrNil(records []cohort.AppointmentRecord, pred func(cohort.AppointmentRecord) bool) *float64 {
	rate, err := GroupRate(records, pred)
	if errors.Is(err, ErrEmptySubgroup) {
		return nil
	}
	return &rate
}
