package get_eligible_staff

import (
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
)

// EligibleStaffResponse мастера, подходящие для выбранной услуги.
// Если в сессии уже выбрана дата, список дополнительно отфильтрован по
// занятости на эту дату.
type EligibleStaffResponse struct {
	ServiceID int64       `json:"serviceId"`
	Staff     []StaffView `json:"staff"`
}

// StaffView один мастер
type StaffView struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	SpecializationTags []string `json:"specializationTags"`
}

// FromStaffList конвертирует модели каталога в HTTP response
func FromStaffList(serviceID int64, staff []catalogservice.Staff) *EligibleStaffResponse {
	resp := &EligibleStaffResponse{
		ServiceID: serviceID,
		Staff:     make([]StaffView, 0, len(staff)),
	}
	for _, s := range staff {
		resp.Staff = append(resp.Staff, StaffView{
			ID:                 s.ID,
			Name:               s.Name,
			SpecializationTags: s.SpecializationTags,
		})
	}
	return resp
}
