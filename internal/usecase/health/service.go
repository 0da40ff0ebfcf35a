package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search stays available through
	// lexical fallback while the vector backend is down.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	backend BackendPinger
}

// New creates a Service. backend can be nil.
func New(db DBPinger, backend BackendPinger) *Service {
	return &Service{db: db, backend: backend}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	dbOK := true
	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		dbOK = false
	} else {
		checks["database"] = CheckOK
	}

	backendOK := true
	if s.backend != nil {
		if err := s.backend.Ping(ctx); err != nil {
			checks["vector_backend"] = CheckError
			backendOK = false
		} else {
			checks["vector_backend"] = CheckOK
		}
	}

	// The store backs both fallback search and enrichment; losing it and the
	// vector backend together means no request can be served.
	status := Healthy
	switch {
	case !dbOK && !backendOK:
		status = Unhealthy
	case !dbOK || !backendOK:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
