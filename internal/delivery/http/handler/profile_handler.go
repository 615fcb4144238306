package handler

import (
	"encoding/json"
	"net/http"

	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/delivery/http/middleware"
	"healgenie-portal/internal/usecase"
	"healgenie-portal/pkg/response"
	"healgenie-portal/pkg/validator"
)

// ProfileHandler serves base profiles and the profile symbol catalogue.
type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *validator.CustomValidator
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase, validator *validator.CustomValidator) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid profile ID")
		return
	}

	profile, err := h.profileUsecase.GetProfile(r.Context(), caller, id)
	if err != nil {
		writeProfileError(w, err, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid profile ID")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.profileUsecase.UpdateProfile(r.Context(), caller, id, &req)
	if err != nil {
		writeProfileError(w, err, "Failed to update profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

func (h *ProfileHandler) ListProfileSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.profileUsecase.ListProfileSymbols(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get profile symbols")
		return
	}

	response.Success(w, http.StatusOK, "Profile symbols retrieved successfully", symbols)
}

func (h *ProfileHandler) GetProfileSymbol(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid profile symbol ID")
		return
	}

	symbol, err := h.profileUsecase.GetProfileSymbol(r.Context(), id)
	if err != nil {
		writeProfileError(w, err, "Failed to get profile symbol")
		return
	}

	response.Success(w, http.StatusOK, "Profile symbol retrieved successfully", symbol)
}

// writeProfileError maps the profile usecase errors shared by the profile,
// doctor and patient handlers.
func writeProfileError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrForbidden:
		response.Forbidden(w, "You don't have permission to access this resource")
	case usecase.ErrProfileNotFound:
		response.NotFound(w, "Profile not found")
	case usecase.ErrDoctorNotFound:
		response.NotFound(w, "Doctor profile not found")
	case usecase.ErrPatientNotFound:
		response.NotFound(w, "Patient profile not found")
	case usecase.ErrProfileSymbolNotFound:
		response.NotFound(w, "Profile symbol not found")
	case usecase.ErrNothingToUpdate:
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
