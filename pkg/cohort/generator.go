package cohort

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var ErrInvalidCount = errors.New("cohort size must be positive")

const (
	patientIDBase     = 10000
	appointmentIDBase = 50000
)

// Generator produces synthetic appointment cohorts. The random source is
// injected so seeded generators reproduce the same cohort; NewGenerator
// seeds from the wall clock for exploratory use.
type Generator struct {
	profile Profile
	rng     *rand.Rand
	now     func() time.Time
}

func NewGenerator(profile Profile) *Generator {
	return newGenerator(profile, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewSeededGenerator(profile Profile, seed int64) *Generator {
	return newGenerator(profile, rand.New(rand.NewSource(seed)))
}

func newGenerator(profile Profile, rng *rand.Rand) *Generator {
	return &Generator{profile: profile, rng: rng, now: time.Now}
}

// Generate returns exactly count records. Identifier suffixes are
// sequential within one call, so identifiers are unique per cohort but
// not across cohorts.
func (g *Generator) Generate(count int) ([]AppointmentRecord, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if err := g.profile.Validate(); err != nil {
		return nil, err
	}

	now := g.now()
	records := make([]AppointmentRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, g.generateRecord(now, i))
	}
	return records, nil
}

func (g *Generator) generateRecord(now time.Time, index int) AppointmentRecord {
	p := g.profile

	// Half-open draw: {1..MaxScheduleDaysBack-1} days back.
	daysBack := 1 + g.rng.Intn(p.MaxScheduleDaysBack-1)
	scheduled := now.AddDate(0, 0, -daysBack)
	leadDays := g.rng.Intn(p.MaxLeadDays + 1)

	outcome := OutcomeShow
	if g.bernoulli(p.NoShowProb) {
		outcome = OutcomeNoShow
	}

	gender := GenderFemale
	if g.bernoulli(0.5) {
		gender = GenderMale
	}

	return AppointmentRecord{
		PatientID:      fmt.Sprintf("P-%d", patientIDBase+index),
		AppointmentID:  fmt.Sprintf("APT-%d", appointmentIDBase+index),
		Gender:         gender,
		ScheduledDay:   scheduled,
		AppointmentDay: scheduled.AddDate(0, 0, leadDays),
		Age:            p.MinAge + g.rng.Intn(p.MaxAge-p.MinAge),
		Neighbourhood:  p.Neighbourhoods[g.rng.Intn(len(p.Neighbourhoods))],
		Scholarship:    g.bernoulli(p.ScholarshipProb),
		Hypertension:   g.bernoulli(p.HypertensionProb),
		Diabetes:       g.bernoulli(p.DiabetesProb),
		Alcoholism:     g.bernoulli(p.AlcoholismProb),
		Handicap:       g.bernoulli(p.HandicapProb),
		SMSReceived:    g.bernoulli(p.SMSProb),
		NoShow:         outcome,
		LeadDays:       leadDays,
	}
}

func (g *Generator) bernoulli(prob float64) bool {
	return g.rng.Float64() < prob
}
