package converter

import (
	"strings"

	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
)

func PatientSearchResultsToResponse(results []entity.PatientSearchResult) *dto.PatientSearchResponse {
	items := make([]dto.PatientSearchItem, len(results))
	for i, r := range results {
		items[i] = dto.PatientSearchItem{
			ID:        r.ID,
			Name:      strings.TrimSpace(r.FirstName + " " + r.LastName),
			Age:       r.Age,
			LastVisit: r.LastVisit,
		}
	}
	return &dto.PatientSearchResponse{
		Patients: items,
		Total:    len(items),
	}
}

func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i, p := range prescriptions {
		medicines := make([]dto.MedicineResponse, len(p.Medicines))
		for j, m := range p.Medicines {
			medicines[j] = dto.MedicineResponse{
				ID:     m.ID,
				Name:   m.Name,
				Timing: m.Timing,
				Price:  m.Price,
			}
		}
		symptoms := []string(p.Symptoms)
		if symptoms == nil {
			symptoms = []string{}
		}
		responses[i] = dto.PrescriptionResponse{
			ID:           p.ID,
			DoctorID:     p.DoctorID,
			Disease:      p.Disease,
			Symptoms:     symptoms,
			IsActive:     p.IsActive,
			SpecialNotes: p.SpecialNotes,
			Medicines:    medicines,
			CreatedAt:    p.CreatedAt,
		}
	}
	return responses
}
