package checkout

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// ServiceSelection is one chosen service with its price/duration snapshot
// and at most one staff assignment. StaffID is nil only transiently while
// the customer is still picking a staff member.
type ServiceSelection struct {
	ServiceID        int64
	ServiceName      string
	PriceAtSelection float64
	DurationMinutes  int
	StaffID          *int64
	StaffName        string
}

// ProductSelection is one chosen retail product with its price snapshot.
type ProductSelection struct {
	ProductID        int64
	ProductName      string
	PriceAtSelection float64
	Quantity         int
}

// Subtotal returns the product line total.
func (p ProductSelection) Subtotal() float64 {
	return p.PriceAtSelection * float64(p.Quantity)
}

// CustomerInfo holds the contact details collected at the customer-info step.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
	Notes *string
}

// Selection is the in-progress booking state of one checkout session.
// It is a value: every mutation returns a new Selection and never touches
// the receiver, which keeps the invariants mechanically checkable and makes
// state snapshots free.
type Selection struct {
	Services []ServiceSelection
	Products []ProductSelection

	Date      time.Time
	StartTime types.TimeString

	Customer CustomerInfo
	Payment  domain.PaymentMethod
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{}
}

func (s Selection) clone() Selection {
	out := s
	out.Services = make([]ServiceSelection, len(s.Services))
	copy(out.Services, s.Services)
	out.Products = make([]ProductSelection, len(s.Products))
	copy(out.Products, s.Products)
	return out
}

// HasService reports whether the service is currently chosen.
func (s Selection) HasService(serviceID int64) bool {
	return s.serviceIndex(serviceID) >= 0
}

func (s Selection) serviceIndex(serviceID int64) int {
	for i, svc := range s.Services {
		if svc.ServiceID == serviceID {
			return i
		}
	}
	return -1
}

func (s Selection) productIndex(productID int64) int {
	for i, p := range s.Products {
		if p.ProductID == productID {
			return i
		}
	}
	return -1
}

// SelectService adds a service with its price/duration snapshot.
// Selecting an already chosen service is a no-op, the existing snapshot and
// staff assignment are kept.
func (s Selection) SelectService(serviceID int64, name string, price float64, durationMinutes int) Selection {
	if s.HasService(serviceID) {
		return s
	}
	out := s.clone()
	out.Services = append(out.Services, ServiceSelection{
		ServiceID:        serviceID,
		ServiceName:      name,
		PriceAtSelection: price,
		DurationMinutes:  durationMinutes,
	})
	return out
}

// UnselectService removes a service together with its staff assignment.
// Removing a service that is not chosen is a no-op.
func (s Selection) UnselectService(serviceID int64) Selection {
	idx := s.serviceIndex(serviceID)
	if idx < 0 {
		return s
	}
	out := s.clone()
	out.Services = append(out.Services[:idx], out.Services[idx+1:]...)
	return out
}

// AssignStaff assigns exactly one staff member to a chosen service,
// replacing any prior assignment. Assigning to a service that is not chosen
// returns ErrInvalidSelection and leaves the selection untouched.
func (s Selection) AssignStaff(serviceID, staffID int64, staffName string) (Selection, error) {
	idx := s.serviceIndex(serviceID)
	if idx < 0 {
		return s, fmt.Errorf("%w: service id=%d is not selected", ErrInvalidSelection, serviceID)
	}
	out := s.clone()
	out.Services[idx].StaffID = &staffID
	out.Services[idx].StaffName = staffName
	return out, nil
}

// ClearStaff drops the staff assignment of one service.
func (s Selection) ClearStaff(serviceID int64) Selection {
	idx := s.serviceIndex(serviceID)
	if idx < 0 {
		return s
	}
	out := s.clone()
	out.Services[idx].StaffID = nil
	out.Services[idx].StaffName = ""
	return out
}

// SelectProduct adds a product or replaces the quantity of an already
// chosen one. Quantity 0 defaults to 1, a negative quantity is a contract
// violation.
func (s Selection) SelectProduct(productID int64, name string, price float64, quantity int) (Selection, error) {
	if quantity < 0 {
		return s, fmt.Errorf("%w: product quantity must be >= 1, got %d", ErrInvalidSelection, quantity)
	}
	if quantity == 0 {
		quantity = domain.MinProductQuantity
	}
	if quantity > domain.MaxProductQuantity {
		return s, fmt.Errorf("%w: product quantity must be <= %d, got %d", ErrInvalidSelection, domain.MaxProductQuantity, quantity)
	}

	out := s.clone()
	if idx := out.productIndex(productID); idx >= 0 {
		out.Products[idx].Quantity = quantity
		return out, nil
	}
	out.Products = append(out.Products, ProductSelection{
		ProductID:        productID,
		ProductName:      name,
		PriceAtSelection: price,
		Quantity:         quantity,
	})
	return out, nil
}

// UnselectProduct removes a product. Unknown IDs are a no-op.
func (s Selection) UnselectProduct(productID int64) Selection {
	idx := s.productIndex(productID)
	if idx < 0 {
		return s
	}
	out := s.clone()
	out.Products = append(out.Products[:idx], out.Products[idx+1:]...)
	return out
}

// SetSchedule sets the appointment date and start time.
func (s Selection) SetSchedule(date time.Time, start types.TimeString) Selection {
	out := s.clone()
	out.Date = date
	out.StartTime = start
	return out
}

// ClearSchedule drops the chosen date and start time.
func (s Selection) ClearSchedule() Selection {
	out := s.clone()
	out.Date = time.Time{}
	out.StartTime = ""
	return out
}

// SetCustomer sets the customer contact details.
func (s Selection) SetCustomer(customer CustomerInfo) Selection {
	out := s.clone()
	out.Customer = customer
	return out
}

// SetPayment records the chosen payment method.
func (s Selection) SetPayment(method domain.PaymentMethod) Selection {
	out := s.clone()
	out.Payment = method
	return out
}

// Total is the checkout total: the sum of every chosen service's price
// snapshot plus price × quantity for every chosen product. Recomputed from
// the snapshots on every call, nothing is cached.
func (s Selection) Total() float64 {
	var total float64
	for _, svc := range s.Services {
		total += svc.PriceAtSelection
	}
	for _, p := range s.Products {
		total += p.Subtotal()
	}
	return total
}

// Duration is the summed duration of all chosen services in minutes.
func (s Selection) Duration() int {
	var minutes int
	for _, svc := range s.Services {
		minutes += svc.DurationMinutes
	}
	return minutes
}

// EndTime derives the appointment end from the start time and the summed
// service duration.
func (s Selection) EndTime() (types.TimeString, error) {
	if s.StartTime.IsZero() {
		return "", fmt.Errorf("%w: start time is not set", ErrInvalidSelection)
	}
	return s.StartTime.AddMinutes(s.Duration())
}

// Window returns the full appointment window of the current selection.
func (s Selection) Window() (domain.AppointmentWindow, error) {
	end, err := s.EndTime()
	if err != nil {
		return domain.AppointmentWindow{}, err
	}
	return domain.AppointmentWindow{
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   end,
	}, nil
}

// UnassignedServices lists chosen services that still have no staff member.
func (s Selection) UnassignedServices() []ServiceSelection {
	var out []ServiceSelection
	for _, svc := range s.Services {
		if svc.StaffID == nil {
			out = append(out, svc)
		}
	}
	return out
}

// ServiceIDs returns the IDs of the chosen services in selection order.
func (s Selection) ServiceIDs() []int64 {
	ids := make([]int64, len(s.Services))
	for i, svc := range s.Services {
		ids[i] = svc.ServiceID
	}
	return ids
}

// SameServiceSet reports whether another selection holds exactly the same
// set of chosen services. Staff assignments are ignored: only the service
// set drives duration and eligibility, so only it invalidates downstream
// steps.
func (s Selection) SameServiceSet(other Selection) bool {
	if len(s.Services) != len(other.Services) {
		return false
	}
	ids := make(map[int64]struct{}, len(s.Services))
	for _, svc := range s.Services {
		ids[svc.ServiceID] = struct{}{}
	}
	for _, svc := range other.Services {
		if _, ok := ids[svc.ServiceID]; !ok {
			return false
		}
	}
	return true
}
