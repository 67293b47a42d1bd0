// Package alert raises notifications when a run's sentiment crosses the
// configured thresholds.
package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/narrative/pkg/narrative/kpi"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// KindNegativeShare is raised when negative plus anger mentions exceed the
// threshold share.
const KindNegativeShare = "negative_share"

// DefaultNegativeShare is the default threshold, in percent.
const DefaultNegativeShare = 30.0

// Thresholds configures alert evaluation.
type Thresholds struct {
	NegativeShare float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{NegativeShare: DefaultNegativeShare}
}

// Alert is one raised condition.
type Alert struct {
	Kind    string  `json:"kind"`
	Brand   string  `json:"brand"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// Evaluate returns the alerts res triggers for brand.
func Evaluate(brand string, res kpi.Result, th Thresholds) []Alert {
	var alerts []Alert

	negative := res.SentimentRatio[mention.Negative] + res.SentimentRatio[mention.Anger]
	if negative > th.NegativeShare {
		alerts = append(alerts, Alert{
			Kind:    KindNegativeShare,
			Brand:   brand,
			Value:   negative,
			Message: fmt.Sprintf("ALERT: High negative sentiment (%.1f%%) detected for %s.", negative, brand),
		})
	}

	return alerts
}

// Notifier delivers an alert.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// LogNotifier writes alerts as error-level log lines.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(_ context.Context, a Alert) error {
	logger := n.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Error(a.Message, "kind", a.Kind, "brand", a.Brand, "value", fmt.Sprintf("%.1f", a.Value))
	return nil
}

// MultiNotifier sends each alert to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyAll delivers every alert and returns the joined delivery errors.
func NotifyAll(ctx context.Context, n Notifier, alerts []Alert) error {
	if n == nil {
		return nil
	}
	var errs []error
	for _, a := range alerts {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", a.Kind, err))
		}
	}
	return errors.Join(errs...)
}
