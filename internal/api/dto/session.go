package dto

import (
	"property-insight-service/internal/domain"
	"time"
)

type InitializeRequest struct {
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
}

type SessionResponse struct {
	SessionID     string                `json:"session_id"`
	Status        string                `json:"status"`
	URL           string                `json:"url"`
	PropertyData  *domain.Listing       `json:"property_data,omitempty"`
	DistanceInfo  domain.DistanceReport `json:"distance_info,omitempty"`
	Analysis      domain.Analysis       `json:"analysis,omitempty"`
	Error         string                `json:"error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	InitializedAt *time.Time            `json:"initialized_at,omitempty"`
}

func NewSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		SessionID:     s.ID,
		Status:        string(s.Status),
		URL:           s.URL,
		PropertyData:  s.Listing,
		DistanceInfo:  s.Distances,
		Analysis:      s.Analysis,
		Error:         s.Error,
		CreatedAt:     s.CreatedAt,
		InitializedAt: s.InitializedAt,
	}
}

type AnalyzeRequest struct {
	SessionID string `json:"session_id"`
	Agent     string `json:"agent"`
	Quick     bool   `json:"quick"`
}

type AnalyzeResponse struct {
	SessionID string          `json:"session_id"`
	Agent     string          `json:"agent"`
	Timestamp string          `json:"timestamp"`
	Analysis  domain.Analysis `json:"analysis"`
}

type PersonasResponse struct {
	Personas []string `json:"personas"`
}
