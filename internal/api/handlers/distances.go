package handlers

import (
	"fmt"
	"net/http"
	"property-insight-service/internal/api/dto"
	"property-insight-service/internal/services"
	"slices"
	"strings"
)

// DistanceHandler exposes the distance engine directly for a postal address.
type DistanceHandler struct {
	Engine *services.DistanceEngine
}

// Calculate computes travel times from the given address to the configured
// points of interest.
func (h *DistanceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req dto.DistancesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		writeError(w, r, http.StatusBadRequest, "address is required")
		return
	}

	if err := validateCategories(req.Categories, h.Engine.Categories()); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := h.Engine.CalculateDistances(r.Context(), address, req.Categories)

	writeJSON(w, r, http.StatusOK, dto.DistancesResponse{
		DistanceInfo: report,
		Summary:      services.FormatDistanceSummary(report),
	})
}

func validateCategories(requested, known []string) error {
	for _, c := range requested {
		if !slices.Contains(known, c) {
			return fmt.Errorf("unknown category %q (known: %s)", c, strings.Join(known, ", "))
		}
	}
	return nil
}
