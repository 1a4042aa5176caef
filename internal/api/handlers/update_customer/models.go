package update_customer

// UpdateCustomerRequest контактные данные клиента.
// Полная валидация (непустое имя, корректные email и телефон) выполняется
// предикатом шага customer_info при переходе вперёд.
type UpdateCustomerRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
	Notes *string `json:"notes,omitempty"`
}
