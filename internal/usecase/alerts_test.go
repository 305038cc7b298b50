package usecase

import (
	"strings"
	"testing"

	"FinSight/internal/domain/models"
)

func testRules() []AlertRule {
	return DefaultRules(AlertRulesConfig{
		HighChangePct:   1.8,
		MediumChangePct: 1.5,
		VolumeSpikeMult: 3.0,
	})
}

func TestAlertHighChange(t *testing.T) {
	d := NewAlertDetector(testRules(), 100)

	dp := point("TSLA", 250, 10, 1)
	dp.ChangePct = 2.1
	alert := d.Evaluate(dp, models.AggregateSnapshot{Count: 1})

	if alert == nil {
		t.Fatal("expected alert")
	}
	if alert.Severity != models.SeverityHigh {
		t.Fatalf("severity = %s, want high", alert.Severity)
	}
	if !strings.Contains(alert.Message, "TSLA showing unusual movement: 2.10%") {
		t.Fatalf("message = %q", alert.Message)
	}
	if alert.ID == "" {
		t.Fatal("alert must carry an ID")
	}
}

func TestAlertMediumChange(t *testing.T) {
	d := NewAlertDetector(testRules(), 100)

	dp := point("AAPL", 178, 10, 1)
	dp.ChangePct = -1.6
	alert := d.Evaluate(dp, models.AggregateSnapshot{Count: 1})

	if alert == nil {
		t.Fatal("expected alert")
	}
	if alert.Severity != models.SeverityMedium {
		t.Fatalf("severity = %s, want medium", alert.Severity)
	}
}

func TestAlertNoneBelowThreshold(t *testing.T) {
	d := NewAlertDetector(testRules(), 100)

	dp := point("AAPL", 178, 10, 1)
	dp.ChangePct = 1.0
	if alert := d.Evaluate(dp, models.AggregateSnapshot{Count: 1}); alert != nil {
		t.Fatalf("unexpected alert %+v", alert)
	}
	if d.Total() != 0 {
		t.Fatalf("total = %d, want 0", d.Total())
	}
}

func TestAlertOnePerPoint(t *testing.T) {
	d := NewAlertDetector(testRules(), 100)

	// both the change rules and the volume spike match; only the
	// highest severity is kept
	dp := point("NVDA", 500, 1000, 1)
	dp.ChangePct = 2.5
	snap := models.AggregateSnapshot{Count: 10, VolumeSum: 100}

	alert := d.Evaluate(dp, snap)
	if alert == nil {
		t.Fatal("expected alert")
	}
	if alert.Severity != models.SeverityHigh {
		t.Fatalf("severity = %s, want high", alert.Severity)
	}
	if d.Total() != 1 {
		t.Fatalf("total = %d, want 1", d.Total())
	}
}

func TestAlertVolumeSpike(t *testing.T) {
	d := NewAlertDetector(testRules(), 100)

	dp := point("JPM", 158, 1000, 1)
	snap := models.AggregateSnapshot{Count: 10, VolumeSum: 1000} // avg 100
	alert := d.Evaluate(dp, snap)

	if alert == nil {
		t.Fatal("expected volume spike alert")
	}
	if alert.Severity != models.SeverityLow {
		t.Fatalf("severity = %s, want low", alert.Severity)
	}
}

func TestAlertRecentNewestFirst(t *testing.T) {
	d := NewAlertDetector(testRules(), 100)

	for i := 0; i < 3; i++ {
		dp := point("AAPL", 100+float64(i), 10, int64(i+1))
		dp.ChangePct = 2.0
		d.Evaluate(dp, models.AggregateSnapshot{Count: 1})
	}

	recent := d.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].TriggeringValue != recent[1].TriggeringValue && recent[0].Timestamp.Before(recent[1].Timestamp) {
		t.Fatalf("recent must be newest first")
	}
}

func TestAlertRetentionBound(t *testing.T) {
	d := NewAlertDetector(testRules(), 5)

	for i := 0; i < 20; i++ {
		dp := point("AAPL", 100, 10, int64(i+1))
		dp.ChangePct = 2.0
		d.Evaluate(dp, models.AggregateSnapshot{Count: 1})
	}

	if d.Total() != 20 {
		t.Fatalf("total = %d, want 20", d.Total())
	}
	if got := len(d.Recent(0)); got > 5 {
		t.Fatalf("retained = %d, want <= 5", got)
	}
}
