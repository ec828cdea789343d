package testsupport

import (
	"testing"

	"stitch/internal/config"
	"stitch/internal/reports"
)

// MustOpenReports opens the report store named by cfg and registers cleanup.
func MustOpenReports(t testing.TB, cfg *config.Config) *reports.Store {
	t.Helper()

	store, err := reports.Open(cfg.Paths.ReportDB)
	if err != nil {
		t.Fatalf("reports.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
