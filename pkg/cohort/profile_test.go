package cohort

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfileFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := []byte(`
neighbourhoods:
  - CENTRO
  - PRAIA DO CANTO
no_show_prob: 0.45
sms_prob: 0.5
scholarship_prob: 0.1
hypertension_prob: 0.2
diabetes_prob: 0.1
alcoholism_prob: 0.05
handicap_prob: 0.02
min_age: 18
max_age: 90
max_schedule_days_back: 30
max_lead_days: 21
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.NoShowProb != 0.45 {
		t.Fatalf("expected no-show prob 0.45, got %v", profile.NoShowProb)
	}
	if len(profile.Neighbourhoods) != 2 {
		t.Fatalf("expected 2 neighbourhoods, got %d", len(profile.Neighbourhoods))
	}
	if profile.MaxLeadDays != 21 {
		t.Fatalf("expected max lead days 21, got %d", profile.MaxLeadDays)
	}

	records, err := NewSeededGenerator(profile, 5).Generate(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range records {
		if r.LeadDays > 21 {
			t.Fatalf("record %d: lead days %d above configured bound", i, r.LeadDays)
		}
		if r.Age < 18 || r.Age >= 90 {
			t.Fatalf("record %d: age %d outside configured bounds", i, r.Age)
		}
	}
}

func TestLoadProfileRejectsBadProbabilities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := []byte(`
neighbourhoods: [CENTRO]
no_show_prob: 1.8
min_age: 5
max_age: 85
max_schedule_days_back: 30
max_lead_days: 14
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	if _, err := LoadProfile(path); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}
