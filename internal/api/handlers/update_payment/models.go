package update_payment

// UpdatePaymentRequest выбранный способ оплаты: cash, card или online
type UpdatePaymentRequest struct {
	Method string `json:"method"`
}
