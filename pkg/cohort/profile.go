package cohort

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid cohort profile")

// Profile is the distribution configuration for a synthetic cohort.
// Every categorical field of AppointmentRecord draws from one of these
// parameters, so alternate populations (say, a higher no-show prevalence)
// are a config change rather than a code change.
type Profile struct {
	Neighbourhoods []string `yaml:"neighbourhoods" json:"neighbourhoods"`

	NoShowProb       float64 `yaml:"no_show_prob" json:"no_show_prob"`
	SMSProb          float64 `yaml:"sms_prob" json:"sms_prob"`
	ScholarshipProb  float64 `yaml:"scholarship_prob" json:"scholarship_prob"`
	HypertensionProb float64 `yaml:"hypertension_prob" json:"hypertension_prob"`
	DiabetesProb     float64 `yaml:"diabetes_prob" json:"diabetes_prob"`
	AlcoholismProb   float64 `yaml:"alcoholism_prob" json:"alcoholism_prob"`
	HandicapProb     float64 `yaml:"handicap_prob" json:"handicap_prob"`

	MinAge int `yaml:"min_age" json:"min_age"`
	MaxAge int `yaml:"max_age" json:"max_age"`

	// MaxScheduleDaysBack bounds how far in the past ScheduledDay falls;
	// draws are uniform over {1..MaxScheduleDaysBack-1}, matching the
	// half-open randint convention of the upstream dataset simulation.
	MaxScheduleDaysBack int `yaml:"max_schedule_days_back" json:"max_schedule_days_back"`
	// MaxLeadDays bounds LeadDays; draws are uniform over {0..MaxLeadDays}.
	MaxLeadDays int `yaml:"max_lead_days" json:"max_lead_days"`
}

func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultProfile(), err
	}

	var profile Profile
	if err := yaml.Unmarshal(content, &profile); err != nil {
		return Profile{}, err
	}

	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

// DefaultProfile matches the Kaggle no-show dataset's rough field
// prevalences: ~30% no-show, 50/50 SMS, and low single-digit rates for
// the chronic-condition flags.
func DefaultProfile() Profile {
	return Profile{
		Neighbourhoods: []string{
			"JARDIM DA PENHA",
			"MATA DA PRAIA",
			"PONTAL DE CAMBURI",
			"JARDIM CAMBURI",
			"RESISTÊNCIA",
		},
		NoShowProb:          0.3,
		SMSProb:             0.5,
		ScholarshipProb:     0.1,
		HypertensionProb:    0.2,
		DiabetesProb:        0.1,
		AlcoholismProb:      0.05,
		HandicapProb:        0.02,
		MinAge:              5,
		MaxAge:              85,
		MaxScheduleDaysBack: 30,
		MaxLeadDays:         14,
	}
}

func (p Profile) Validate() error {
	if len(p.Neighbourhoods) == 0 {
		return fmt.Errorf("%w: at least one neighbourhood is required", ErrInvalidProfile)
	}
	probs := map[string]float64{
		"no_show_prob":      p.NoShowProb,
		"sms_prob":          p.SMSProb,
		"scholarship_prob":  p.ScholarshipProb,
		"hypertension_prob": p.HypertensionProb,
		"diabetes_prob":     p.DiabetesProb,
		"alcoholism_prob":   p.AlcoholismProb,
		"handicap_prob":     p.HandicapProb,
	}
	for name, prob := range probs {
		if prob < 0 || prob > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidProfile, name, prob)
		}
	}
	if p.MinAge < 0 || p.MaxAge <= p.MinAge {
		return fmt.Errorf("%w: age bounds [%d,%d)", ErrInvalidProfile, p.MinAge, p.MaxAge)
	}
	if p.MaxScheduleDaysBack < 2 {
		return fmt.Errorf("%w: max_schedule_days_back must be at least 2", ErrInvalidProfile)
	}
	if p.MaxLeadDays < 0 {
		return fmt.Errorf("%w: max_lead_days must not be negative", ErrInvalidProfile)
	}
	return nil
}
