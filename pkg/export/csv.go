// Package export renders cohorts as downloadable tabular data.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/mediinsight/platform/pkg/cohort"
)

// Header spellings (Hipertension, Handcap, SMS_received, No-show) follow
// the public no-show dataset so exports line up with it column for column.
var columns = []string{
	"PatientId",
	"AppointmentID",
	"Gender",
	"ScheduledDay",
	"AppointmentDay",
	"Age",
	"Neighbourhood",
	"Scholarship",
	"Hipertension",
	"Diabetes",
	"Alcoholism",
	"Handcap",
	"SMS_received",
	"No-show",
	"LeadDays",
}

// WriteCSV streams the cohort to w, one row per record. Boolean flags are
// written as 0/1 and dates as RFC 3339, matching the dataset conventions.
func WriteCSV(w io.Writer, records []cohort.AppointmentRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.PatientID,
			r.AppointmentID,
			string(r.Gender),
			r.ScheduledDay.UTC().Format(time.RFC3339),
			r.AppointmentDay.UTC().Format(time.RFC3339),
			strconv.Itoa(r.Age),
			r.Neighbourhood,
			flag(r.Scholarship),
			flag(r.Hypertension),
			flag(r.Diabetes),
			flag(r.Alcoholism),
			flag(r.Handicap),
			flag(r.SMSReceived),
			string(r.NoShow),
			strconv.Itoa(r.LeadDays),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
