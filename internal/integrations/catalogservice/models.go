package catalogservice

// Service модель услуги из CatalogService
type Service struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Price              float64  `json:"price"`
	DurationMinutes    int      `json:"durationMinutes"`
	SpecializationTags []string `json:"specializationTags"`
	IsActive           bool     `json:"isActive"`
}

// Product модель товара из CatalogService
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	InStock  bool    `json:"inStock"`
	IsActive bool    `json:"isActive"`
}

// Staff модель сотрудника из CatalogService
type Staff struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	SpecializationTags []string `json:"specializationTags"`
	IsActive           bool     `json:"isActive"`
}

// QualifiedFor проверяет, что специализация сотрудника покрывает услугу.
// Услуга без тегов доступна любому сотруднику.
func (s Staff) QualifiedFor(service *Service) bool {
	if len(service.SpecializationTags) == 0 {
		return true
	}
	tags := make(map[string]struct{}, len(s.SpecializationTags))
	for _, t := range s.SpecializationTags {
		tags[t] = struct{}{}
	}
	for _, required := range service.SpecializationTags {
		if _, ok := tags[required]; ok {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
