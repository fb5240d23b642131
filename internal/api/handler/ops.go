// Package handler provides HTTP handlers for the riverwatch API.
package handler

import (
	"net/http"
	"time"

	"github.com/riverwatch/riverwatch/internal/api/models"
	"github.com/riverwatch/riverwatch/internal/api/response"
	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	monitor   *hydrology.Monitor
	registry  *resilience.Registry
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler. registry may be nil, in which case
// status reports no providers.
func NewOpsHandler(version, buildTime string, monitor *hydrology.Monitor, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		monitor:   monitor,
		registry:  registry,
		now:       time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. The server is ready once the
// monitoring session discovered its stations.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !h.monitor.GoodConstruction() {
		response.ServiceUnavailable(w, r, "station discovery failed; the session holds no stations")
		return
	}
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]interface{}{
			"stations": len(h.monitor.Stations()),
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - session and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	session := sessionStatus(h.monitor)

	var providers []models.ProviderStatus
	if h.registry != nil {
		for _, ph := range h.registry.AllHealth() {
			providers = append(providers, providerStatus(ph))
		}
	}
	if providers == nil {
		providers = []models.ProviderStatus{}
	}

	status := models.SystemStatus{
		Status:    overallStatus(session, providers),
		Time:      models.Timestamp(h.now()),
		Session:   session,
		Providers: providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}

func sessionStatus(m *hydrology.Monitor) models.SessionStatus {
	window := m.Window()
	s := models.SessionStatus{
		ID:          m.SessionID(),
		BaseURL:     m.BaseURL(),
		Ready:       m.GoodConstruction(),
		Stations:    len(m.Stations()),
		WindowStart: models.Timestamp(window.Start),
		WindowEnd:   models.Timestamp(window.End),
	}
	if e := m.Err(); e != nil {
		msg := e.Error() + ": " + e.Context
		s.Error = &msg
	}
	return s
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     ph.Name,
		CircuitState: ph.CircuitState.String(),
	}

	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	default:
		ps.Status = models.HealthStatusOK
	}

	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}

func overallStatus(session models.SessionStatus, providers []models.ProviderStatus) models.HealthStatus {
	if !session.Ready {
		return models.HealthStatusFail
	}
	status := models.HealthStatusOK
	for _, p := range providers {
		switch p.Status {
		case models.HealthStatusFail:
			return models.HealthStatusDegraded
		case models.HealthStatusDegraded:
			status = models.HealthStatusDegraded
		}
	}
	return status
}
