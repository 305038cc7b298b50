package usecase

import (
	"fmt"
	"math"
	"sync"

	"FinSight/internal/domain/models"

	"github.com/google/uuid"
)

// AlertRule inspects one data point against its symbol's current
// snapshot and reports a severity with a human-readable message.
type AlertRule interface {
	Name() string
	Evaluate(dp *models.DataPoint, snap models.AggregateSnapshot) (models.Severity, string, bool)
}

// AlertRulesConfig holds the threshold knobs for the built-in rules.
// All presentation-driven defaults live in config, not here.
type AlertRulesConfig struct {
	HighChangePct   float64
	MediumChangePct float64
	VolumeSpikeMult float64
}

// changeRule fires on absolute percent change above a threshold.
type changeRule struct {
	name      string
	threshold float64
	severity  models.Severity
}

func (r *changeRule) Name() string { return r.name }

func (r *changeRule) Evaluate(dp *models.DataPoint, _ models.AggregateSnapshot) (models.Severity, string, bool) {
	if math.Abs(dp.ChangePct) <= r.threshold {
		return "", "", false
	}
	msg := fmt.Sprintf("%s showing unusual movement: %.2f%%", dp.Symbol, dp.ChangePct)
	return r.severity, msg, true
}

// volumeSpikeRule fires when a point's volume exceeds a multiple of
// the rolling average volume over the window.
type volumeSpikeRule struct {
	mult float64
}

func (r *volumeSpikeRule) Name() string { return "volume_spike" }

func (r *volumeSpikeRule) Evaluate(dp *models.DataPoint, snap models.AggregateSnapshot) (models.Severity, string, bool) {
	if snap.Count < 2 {
		return "", "", false
	}
	avgVol := float64(snap.VolumeSum) / float64(snap.Count)
	if avgVol <= 0 || float64(dp.Volume) <= avgVol*r.mult {
		return "", "", false
	}
	msg := fmt.Sprintf("%s volume spike: %d vs avg %.0f", dp.Symbol, dp.Volume, avgVol)
	return models.SeverityLow, msg, true
}

// DefaultRules builds the ordered rule list from config. Order matters:
// it breaks severity ties.
func DefaultRules(cfg AlertRulesConfig) []AlertRule {
	return []AlertRule{
		&changeRule{name: "change_high", threshold: cfg.HighChangePct, severity: models.SeverityHigh},
		&changeRule{name: "change_medium", threshold: cfg.MediumChangePct, severity: models.SeverityMedium},
		&volumeSpikeRule{mult: cfg.VolumeSpikeMult},
	}
}

// AlertDetector evaluates an ordered rule list per data point and
// appends the highest-severity match to a bounded, append-only log.
type AlertDetector struct {
	rules     []AlertRule
	retention int

	mu    sync.RWMutex
	log   []models.Alert // newest last
	total int
}

func NewAlertDetector(rules []AlertRule, retention int) *AlertDetector {
	if retention <= 0 {
		retention = 1000
	}
	return &AlertDetector{rules: rules, retention: retention}
}

// Evaluate returns the emitted alert, or nil when no rule matched.
// At most one alert is emitted per data point.
func (d *AlertDetector) Evaluate(dp *models.DataPoint, snap models.AggregateSnapshot) *models.Alert {
	var best *models.Alert
	bestRank := 0
	for _, r := range d.rules {
		sev, msg, ok := r.Evaluate(dp, snap)
		if !ok {
			continue
		}
		if rank := sev.Rank(); rank > bestRank {
			bestRank = rank
			best = &models.Alert{
				ID:              uuid.NewString(),
				Symbol:          dp.Symbol,
				Severity:        sev,
				Message:         msg,
				Timestamp:       dp.Timestamp,
				TriggeringValue: dp.ChangePct,
			}
		}
	}
	if best == nil {
		return nil
	}

	d.mu.Lock()
	d.log = append(d.log, *best)
	d.total++
	if len(d.log) > d.retention {
		// evict oldest; alerts age out, they are never retracted
		d.log = d.log[len(d.log)-d.retention:]
	}
	d.mu.Unlock()
	return best
}

// Recent returns up to limit alerts, most recent first. The slice is a
// point-in-time copy.
func (d *AlertDetector) Recent(limit int) []models.Alert {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := len(d.log)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.Alert, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, d.log[i])
	}
	return out
}

// Total reports the count of alerts ever emitted, including aged-out ones.
func (d *AlertDetector) Total() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.total
}
