package handlers

import (
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/domain"
)

// CheckoutStateResponse снимок состояния checkout-сессии. Возвращается
// каждым эндпоинтом, меняющим сессию: UI всегда видит актуальные шаг,
// выбор и итог.
type CheckoutStateResponse struct {
	SessionID        string                `json:"sessionId"`
	Step             string                `json:"step"`
	Services         []ServiceLineView     `json:"services"`
	Products         []ProductLineView     `json:"products"`
	Date             *string               `json:"date,omitempty"`
	StartTime        *string               `json:"startTime,omitempty"`
	EndTime          *string               `json:"endTime,omitempty"`
	Customer         *CustomerView         `json:"customer,omitempty"`
	PaymentMethod    *string               `json:"paymentMethod,omitempty"`
	DurationMinutes  int                   `json:"durationMinutes"`
	TotalPrice       float64               `json:"totalPrice"`
	CommitInFlight   bool                  `json:"commitInFlight"`
	BookingReference *string               `json:"bookingReference,omitempty"`
	StepValidity     map[string]*StepIssue `json:"stepValidity"`
}

// ServiceLineView выбранная услуга со снапшотом цены и назначенным мастером
type ServiceLineView struct {
	ServiceID       int64   `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
	StaffID         *int64  `json:"staffId,omitempty"`
	StaffName       *string `json:"staffName,omitempty"`
}

// ProductLineView выбранный товар
type ProductLineView struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// CustomerView контактные данные клиента
type CustomerView struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
	Notes *string `json:"notes,omitempty"`
}

// StepIssue невыполненное условие шага (nil в map = шаг валиден)
type StepIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// CheckoutStateFrom собирает снимок состояния из оркестратора.
// Вызывать только под блокировкой сессии.
func CheckoutStateFrom(sessionID string, o *checkout.Orchestrator) *CheckoutStateResponse {
	sel := o.Selection()

	resp := &CheckoutStateResponse{
		SessionID:       sessionID,
		Step:            o.Step().String(),
		Services:        make([]ServiceLineView, 0, len(sel.Services)),
		Products:        make([]ProductLineView, 0, len(sel.Products)),
		DurationMinutes: sel.Duration(),
		TotalPrice:      sel.Total(),
		CommitInFlight:  o.CommitInFlight(),
		StepValidity:    make(map[string]*StepIssue),
	}

	for _, svc := range sel.Services {
		view := ServiceLineView{
			ServiceID:       svc.ServiceID,
			ServiceName:     svc.ServiceName,
			Price:           svc.PriceAtSelection,
			DurationMinutes: svc.DurationMinutes,
			StaffID:         svc.StaffID,
		}
		if svc.StaffID != nil {
			name := svc.StaffName
			view.StaffName = &name
		}
		resp.Services = append(resp.Services, view)
	}

	for _, p := range sel.Products {
		resp.Products = append(resp.Products, ProductLineView{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			UnitPrice:   p.PriceAtSelection,
			Quantity:    p.Quantity,
			Subtotal:    p.Subtotal(),
		})
	}

	if !sel.Date.IsZero() {
		date := sel.Date.Format(domain.DateFormat)
		resp.Date = &date
	}
	if !sel.StartTime.IsZero() {
		start := sel.StartTime.String()
		resp.StartTime = &start
		if end, err := sel.EndTime(); err == nil {
			endStr := end.String()
			resp.EndTime = &endStr
		}
	}

	if sel.Customer.Name != "" || sel.Customer.Email != "" || sel.Customer.Phone != "" {
		resp.Customer = &CustomerView{
			Name:  sel.Customer.Name,
			Email: sel.Customer.Email,
			Phone: sel.Customer.Phone,
			Notes: sel.Customer.Notes,
		}
	}

	if sel.Payment != "" {
		method := string(sel.Payment)
		resp.PaymentMethod = &method
	}

	if ref := o.LastReference(); ref != "" {
		resp.BookingReference = &ref
	}

	// Чистые предикаты шагов, без I/O проверок расписания
	for step := checkout.StepServices; step <= checkout.StepPayment; step++ {
		if verr := o.StepValid(step); verr != nil {
			resp.StepValidity[step.String()] = &StepIssue{Field: verr.Field, Reason: verr.Reason}
		} else {
			resp.StepValidity[step.String()] = nil
		}
	}

	return resp
}
