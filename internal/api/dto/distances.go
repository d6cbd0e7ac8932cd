package dto

import "property-insight-service/internal/domain"

type DistancesRequest struct {
	Address    string   `json:"address"`
	Categories []string `json:"categories"`
}

type DistancesResponse struct {
	DistanceInfo domain.DistanceReport `json:"distance_info"`
	Summary      string                `json:"summary"`
}
