package get_booking

import (
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
)

// BookingResponse HTTP response model
type BookingResponse struct {
	Reference       string            `json:"reference"`
	Status          string            `json:"status"`
	CustomerName    string            `json:"customerName"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone"`
	Notes           *string           `json:"notes,omitempty"`
	AppointmentDate string            `json:"appointmentDate"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	DurationMinutes int               `json:"durationMinutes"`
	Services        []ServiceLineView `json:"services"`
	Products        []ProductLineView `json:"products"`
	Payment         PaymentView       `json:"payment"`
	TotalPrice      float64           `json:"totalPrice"`
	CreatedAt       string            `json:"createdAt"`
}

// ServiceLineView одна забронированная услуга со снапшотами
type ServiceLineView struct {
	ServiceID       int64   `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	StaffID         int64   `json:"staffId"`
	StaffName       string  `json:"staffName"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
}

// ProductLineView один товар со снапшотом цены
type ProductLineView struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// PaymentView платёжная запись бронирования
type PaymentView struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// FromDomain конвертирует domain.Booking в HTTP response
func FromDomain(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		Reference:       b.Reference,
		Status:          string(b.Status),
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		Notes:           b.Notes,
		AppointmentDate: b.AppointmentDate.Format(domain.DateFormat),
		StartTime:       b.StartTime.String(),
		EndTime:         b.EndTime.String(),
		DurationMinutes: b.DurationMinutes,
		Services:        make([]ServiceLineView, 0, len(b.Services)),
		Products:        make([]ProductLineView, 0, len(b.Products)),
		Payment: PaymentView{
			Method: string(b.Payment.Method),
			Amount: b.Payment.Amount,
			Status: b.Payment.Status,
		},
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}

	for _, svc := range b.Services {
		resp.Services = append(resp.Services, ServiceLineView{
			ServiceID:       svc.ServiceID,
			ServiceName:     svc.ServiceName,
			StaffID:         svc.StaffID,
			StaffName:       svc.StaffName,
			Price:           svc.Price,
			DurationMinutes: svc.DurationMinutes,
		})
	}

	for _, p := range b.Products {
		resp.Products = append(resp.Products, ProductLineView{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			UnitPrice:   p.UnitPrice,
			Quantity:    p.Quantity,
			Subtotal:    p.Subtotal(),
		})
	}

	return resp
}
