package dto

import "drheal-be/pkg/metrics"

type HealthResponse struct {
	Status string `json:"status"`
}

type DetailedHealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
	Metrics    metrics.Snapshot  `json:"metrics"`
}
