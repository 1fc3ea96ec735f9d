package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"daily", "DAILY", " Weekly "} {
		if _, err := ParseFrequency(in); err != nil {
			t.Fatalf("expected %q to parse, got %v", in, err)
		}
	}

	if _, err := ParseFrequency("monthly"); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}

func TestMerchant_WeeklyPayDay(t *testing.T) {
	t.Parallel()

	m := &Merchant{Frequency: FrequencyWeekly, LiveOn: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	if m.WeeklyPayDay() != time.Wednesday {
		t.Fatalf("expected Wednesday, got %s", m.WeeklyPayDay())
	}
}
