package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/delivery/http/middleware"
	"healgenie-portal/internal/usecase"
	"healgenie-portal/pkg/response"
	"healgenie-portal/pkg/validator"
)

type PatientHandler struct {
	profileUsecase usecase.ProfileUsecase
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(profileUsecase usecase.ProfileUsecase, patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		profileUsecase: profileUsecase,
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) GetPatientProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	patient, err := h.profileUsecase.GetPatientProfile(r.Context(), caller, id)
	if err != nil {
		writeProfileError(w, err, "Failed to get patient profile")
		return
	}

	response.Success(w, http.StatusOK, "Patient profile retrieved successfully", patient)
}

func (h *PatientHandler) UpdatePatientProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	var req dto.UpdatePatientProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.profileUsecase.UpdatePatientProfile(r.Context(), caller, id, &req)
	if err != nil {
		writeProfileError(w, err, "Failed to update patient profile")
		return
	}

	response.Success(w, http.StatusOK, "Patient profile updated successfully", patient)
}

// SearchPatients handles GET /rest/v1/patients?q=&limit=
func (h *PatientHandler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.patientUsecase.SearchPatients(r.Context(), caller, r.URL.Query().Get("q"), limit)
	if err != nil {
		switch err {
		case usecase.ErrForbidden:
			response.Forbidden(w, "Only doctors can search patients")
		case usecase.ErrEmptySearchQuery:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to search patients")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", result)
}

func (h *PatientHandler) GetPatientRecord(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	id, ok := uuidParam(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	record, err := h.patientUsecase.GetPatientRecord(r.Context(), caller, id)
	if err != nil {
		switch err {
		case usecase.ErrForbidden:
			response.Forbidden(w, "Only doctors can view patient records")
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get patient record")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient record retrieved successfully", record)
}

func (h *PatientHandler) ListOwnPrescriptions(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	prescriptions, err := h.patientUsecase.ListOwnPrescriptions(r.Context(), caller)
	if err != nil {
		switch err {
		case usecase.ErrForbidden:
			response.Forbidden(w, "Only patients have prescriptions")
		default:
			response.InternalServerError(w, "Failed to get prescriptions")
		}
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}
