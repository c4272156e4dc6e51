package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.JobClaimed()
	c.JobClaimed()
	c.JobSucceeded(1.5)
	c.JobFailed("validation")
	c.JobRetried()
	c.ProviderCall("gemini")
	c.ProviderCall("")

	if got := testutil.ToFloat64(c.jobsClaimed); got != 2 {
		t.Fatalf("jobs claimed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.jobsSucceeded); got != 1 {
		t.Fatalf("jobs succeeded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.jobsFailed.WithLabelValues("validation")); got != 1 {
		t.Fatalf("jobs failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.providerCalls.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("empty provider should count as unknown, got %v", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.JobClaimed()
	c.JobSucceeded(1)
	c.JobFailed("system")
	c.JobRetried()
	c.ProviderCall("gemini")
	if c.Handler() == nil {
		t.Fatal("nil collector should still serve a handler")
	}
}
