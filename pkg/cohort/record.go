package cohort

import "time"

type Gender string

const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
)

type Outcome string

const (
	// OutcomeNoShow means the patient missed the appointment.
	OutcomeNoShow Outcome = "Yes"
	OutcomeShow   Outcome = "No"
)

// AppointmentRecord is one row of a synthetic cohort, shaped after the
// Kaggle medical-appointment no-show dataset. Records are never mutated
// after generation; a cohort is an immutable snapshot.
type AppointmentRecord struct {
	PatientID      string    `json:"patient_id"`
	AppointmentID  string    `json:"appointment_id"`
	Gender         Gender    `json:"gender"`
	ScheduledDay   time.Time `json:"scheduled_day"`
	AppointmentDay time.Time `json:"appointment_day"`
	Age            int       `json:"age"`
	Neighbourhood  string    `json:"neighbourhood"`
	Scholarship    bool      `json:"scholarship"`
	Hypertension   bool      `json:"hypertension"`
	Diabetes       bool      `json:"diabetes"`
	Alcoholism     bool      `json:"alcoholism"`
	Handicap       bool      `json:"handicap"`
	SMSReceived    bool      `json:"sms_received"`
	NoShow         Outcome   `json:"no_show"`
	LeadDays       int       `json:"lead_days"`
}

// Missed reports whether the patient missed the appointment.
func (r AppointmentRecord) Missed() bool {
	return r.NoShow == OutcomeNoShow
}
