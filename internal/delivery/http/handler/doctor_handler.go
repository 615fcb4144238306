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

type DoctorHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *validator.CustomValidator
}

func NewDoctorHandler(profileUsecase usecase.ProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
	}
}

func (h *DoctorHandler) GetDoctorProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.profileUsecase.GetDoctorProfile(r.Context(), caller, id)
	if err != nil {
		writeProfileError(w, err, "Failed to get doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile retrieved successfully", doctor)
}

func (h *DoctorHandler) UpdateDoctorProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	var req dto.UpdateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.profileUsecase.UpdateDoctorProfile(r.Context(), caller, id, &req)
	if err != nil {
		writeProfileError(w, err, "Failed to update doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Doctor profile updated successfully", doctor)
}
