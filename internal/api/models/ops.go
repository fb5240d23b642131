package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Session   SessionStatus    `json:"session"`
	Providers []ProviderStatus `json:"providers"`
}

// SessionStatus describes the monitoring session the server was started with.
type SessionStatus struct {
	ID          string    `json:"id"`
	BaseURL     string    `json:"baseUrl"`
	Ready       bool      `json:"ready"`
	Stations    int       `json:"stations"`
	WindowStart Timestamp `json:"windowStart"`
	WindowEnd   Timestamp `json:"windowEnd"`
	Error       *string   `json:"error,omitempty"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}
