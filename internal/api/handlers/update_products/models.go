package update_products

// UpdateProductsRequest декларативный список выбранных товаров.
// Товары из selection, отсутствующие в списке, снимаются; указание уже
// выбранного товара заменяет его количество.
type UpdateProductsRequest struct {
	Products []ProductItem `json:"products"`
}

// ProductItem один товар с количеством (0 трактуется как 1)
type ProductItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
