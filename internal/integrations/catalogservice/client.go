package catalogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с CatalogService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента CatalogService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ListServices возвращает список активных услуг каталога
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.getJSON(ctx, fmt.Sprintf("%s/internal/services", c.baseURL), &services, nil); err != nil {
		return nil, err
	}
	return services, nil
}

// ListProducts возвращает список активных товаров каталога
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, fmt.Sprintf("%s/internal/products", c.baseURL), &products, nil); err != nil {
		return nil, err
	}
	return products, nil
}

// ListStaff возвращает список активных сотрудников
func (c *Client) ListStaff(ctx context.Context) ([]Staff, error) {
	var staff []Staff
	if err := c.getJSON(ctx, fmt.Sprintf("%s/internal/staff", c.baseURL), &staff, nil); err != nil {
		return nil, err
	}
	return staff, nil
}

// GetService возвращает услугу по ID
func (c *Client) GetService(ctx context.Context, serviceID int64) (*Service, error) {
	var service Service
	url := fmt.Sprintf("%s/internal/services/%d", c.baseURL, serviceID)
	if err := c.getJSON(ctx, url, &service, ErrServiceNotFound); err != nil {
		return nil, err
	}
	return &service, nil
}

// GetProduct возвращает товар по ID
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var product Product
	url := fmt.Sprintf("%s/internal/products/%d", c.baseURL, productID)
	if err := c.getJSON(ctx, url, &product, ErrProductNotFound); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetStaff возвращает сотрудника по ID
func (c *Client) GetStaff(ctx context.Context, staffID int64) (*Staff, error) {
	var staff Staff
	url := fmt.Sprintf("%s/internal/staff/%d", c.baseURL, staffID)
	if err := c.getJSON(ctx, url, &staff, ErrStaffNotFound); err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetEligibleStaff возвращает сотрудников, квалифицированных для услуги
// (по тегам специализации). Пустой список - валидный ответ, не ошибка.
func (c *Client) GetEligibleStaff(ctx context.Context, serviceID int64) ([]Staff, error) {
	var staff []Staff
	url := fmt.Sprintf("%s/internal/services/%d/eligible-staff", c.baseURL, serviceID)
	if err := c.getJSON(ctx, url, &staff, ErrServiceNotFound); err != nil {
		return nil, err
	}
	return staff, nil
}

// getJSON выполняет GET запрос и декодирует JSON ответ.
// notFoundErr возвращается при статусе 404 (nil - 404 считается ошибкой ответа).
func (c *Client) getJSON(ctx context.Context, url string, dest interface{}, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		if notFoundErr != nil {
			return notFoundErr
		}
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code 404: %s", ErrInvalidResponse, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
