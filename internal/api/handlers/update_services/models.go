package update_services

// UpdateServicesRequest декларативный список выбранных услуг.
// Услуги из selection, отсутствующие в списке, снимаются; новые добавляются
// со снапшотом текущей цены; staffId (если указан) назначает мастера.
type UpdateServicesRequest struct {
	Services []ServiceItem `json:"services"`
}

// ServiceItem одна услуга с опциональным мастером
type ServiceItem struct {
	ServiceID int64  `json:"serviceId"`
	StaffID   *int64 `json:"staffId,omitempty"`
}
