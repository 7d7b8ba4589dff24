package app

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

// Check reports "ok" unless the most recent wrap failed.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     HealthOK,
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	last, builds := s.app.LastBuild()
	switch {
	case last == nil:
		status.Components["last_build"] = "none"
	case last.Err != "":
		status.Status = HealthDegraded
		status.Components["last_build"] = fmt.Sprintf("%s: %s", last.Outcome, last.Err)
	default:
		status.Components["last_build"] = fmt.Sprintf("%s (%s, %s)", last.Outcome, last.Output, last.Duration.Round(time.Millisecond))
	}
	status.Components["builds"] = fmt.Sprint(builds)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	status.Components["heap_alloc_mb"] = fmt.Sprint(m.Alloc / 1024 / 1024)

	return status
}
