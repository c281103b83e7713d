package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rcssa/match-api/internal/api/shared"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/platform/logger"
	"github.com/rcssa/match-api/internal/service"
)

// ProfileHandler handles profile submission and match status requests.
type ProfileHandler struct {
	profiles  service.ProfileService
	rules     domain.ProfileRules
	validator *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles service.ProfileService, rules domain.ProfileRules) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		rules:     rules,
		validator: NewValidator(rules),
	}
}

// SubmitProfile handles POST /api/profiles requests.
func (h *ProfileHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	var req SubmitProfileRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	req.trimSpace()
	if err := validateRequest(h.validator, h.rules, req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.profiles.SubmitProfile(r.Context(), req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit profile")
		return
	}

	logger.FromContext(r.Context()).Info("profile submitted",
		"profile_id", res.Profile.ID,
		"matched", res.Match.Matched())

	shared.RespondWithJSON(w, r, http.StatusCreated, SubmitProfileResponse{
		Matched: res.Match.Matched(),
		Profile: profileToResponse(res.Profile),
		Match:   res.Match.Partner,
	})
}

// CheckMatch handles GET /api/profiles/{id}/match requests.
func (h *ProfileHandler) CheckMatch(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.profiles.CheckMatch(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check match")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CheckMatchResponse{
		Matched: res.Matched(),
		Match:   res.Partner,
	})
}
