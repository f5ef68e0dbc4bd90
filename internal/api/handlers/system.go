package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health reports database connectivity and stored price coverage.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with model.HealthStatus
// Error: 503 Service Unavailable with model.HealthStatus if the check fails
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.systemService.CheckHealth(r.Context())
	if err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	response.RespondJSON(w, http.StatusOK, status)
}

// Version reports the build version, schema version, pending migrations and
// enabled features.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with model.VersionInfo
// Error: 500 Internal Server Error if the schema version cannot be read
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	info, err := h.systemService.CheckVersion(r.Context())
	if err != nil {
		respondServiceError(w, "failed to get version information", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, info)
}
