package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	ProviderRequestsTotal.WithLabelValues("tmdb", "search", Status(nil)).Inc()
	ProviderRequestsTotal.WithLabelValues("tmdb", "search", Status(errors.New("boom"))).Inc()

	if got := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("tmdb", "search", "ok")); got < 1 {
		t.Errorf("ok counter = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("tmdb", "search", "error")); got < 1 {
		t.Errorf("error counter = %v, want >= 1", got)
	}

	// registering twice on the same registry panics
	defer func() {
		if recover() == nil {
			t.Error("second Register() on the same registry should panic")
		}
	}()
	Register(reg)
}
