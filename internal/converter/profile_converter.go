package converter

import (
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func ProfileToResponse(p *entity.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ID:              p.ID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Phone:           p.Phone,
		UserType:        p.UserType.String(),
		ProfileSymbolID: p.ProfileSymbolID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func DoctorProfileToResponse(d *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if d == nil {
		return nil
	}
	return &dto.DoctorProfileResponse{
		ID:          d.ID,
		Designation: d.Designation,
		Specialty:   d.Specialty,
		Experience:  d.Experience,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func PatientProfileToResponse(p *entity.PatientProfile) *dto.PatientProfileResponse {
	if p == nil {
		return nil
	}
	allergies := []string(p.Allergies)
	if allergies == nil {
		allergies = []string{}
	}
	return &dto.PatientProfileResponse{
		ID:             p.ID,
		DateOfBirth:    p.DateOfBirth.Format(dateLayout),
		Age:            p.Age,
		Allergies:      allergies,
		MedicalHistory: p.MedicalHistory,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ProfileSymbolToResponse(s *entity.ProfileSymbol) *dto.ProfileSymbolResponse {
	if s == nil {
		return nil
	}
	return &dto.ProfileSymbolResponse{
		ID:      s.ID,
		Name:    s.Name,
		IconURL: s.IconURL,
	}
}

func ProfileSymbolsToResponses(symbols []entity.ProfileSymbol) []dto.ProfileSymbolResponse {
	responses := make([]dto.ProfileSymbolResponse, len(symbols))
	for i := range symbols {
		responses[i] = *ProfileSymbolToResponse(&symbols[i])
	}
	return responses
}
