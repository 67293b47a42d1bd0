package alert

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/cognicore/narrative/pkg/narrative/kpi"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

func result(negative, anger float64) kpi.Result {
	return kpi.Result{SentimentRatio: map[mention.Sentiment]float64{
		mention.Negative: negative,
		mention.Anger:    anger,
		mention.Positive: 100 - negative - anger,
	}}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		res   kpi.Result
		fires bool
	}{
		{"below", result(10, 5), false},
		{"exactly at threshold", result(20, 10), false},
		{"negative and anger combined", result(20, 15), true},
		{"empty result", kpi.Result{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate("Acme", tt.res, DefaultThresholds())
			if (len(got) == 1) != tt.fires {
				t.Fatalf("got %d alerts, fires=%v", len(got), tt.fires)
			}
		})
	}
}

func TestEvaluateMessage(t *testing.T) {
	got := Evaluate("Acme", result(33.333, 0), DefaultThresholds())
	if len(got) != 1 {
		t.Fatalf("expected one alert, got %d", len(got))
	}
	want := "ALERT: High negative sentiment (33.3%) detected for Acme."
	if got[0].Message != want {
		t.Errorf("message = %q, want %q", got[0].Message, want)
	}
	if got[0].Kind != KindNegativeShare {
		t.Errorf("kind = %q", got[0].Kind)
	}
}

type recorder struct {
	got []Alert
	err error
}

func (r *recorder) Notify(_ context.Context, a Alert) error {
	r.got = append(r.got, a)
	return r.err
}

func TestMultiNotifier(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("smtp down")}
	m := MultiNotifier{ok, bad}

	err := NotifyAll(context.Background(), m, []Alert{{Kind: KindNegativeShare}})
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Errorf("err = %v", err)
	}
	if len(ok.got) != 1 || len(bad.got) != 1 {
		t.Error("every notifier should receive the alert")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: log.New(&buf)}
	if err := n.Notify(context.Background(), Alert{Kind: KindNegativeShare, Brand: "Acme", Message: "ALERT: test"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "ALERT: test") {
		t.Errorf("log output %q missing message", buf.String())
	}
}

func TestNotifyAllNil(t *testing.T) {
	if err := NotifyAll(context.Background(), nil, []Alert{{}}); err != nil {
		t.Errorf("nil notifier should be a no-op, got %v", err)
	}
}
