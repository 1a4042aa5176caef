package navigate_checkout

// GoToRequest целевой шаг: services, products, datetime, customer_info
// или payment. Шаг confirmation через навигацию недостижим.
type GoToRequest struct {
	Step string `json:"step"`
}
