package handler

import (
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// Money travels as a decimal string with two places, e.g. "16.00".

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// TokenDTO is returned by a successful login.
type TokenDTO struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// ProductDTO is the JSON representation of a catalog product.
type ProductDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
	}
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

// LineDTO is a priced line, used for quotes and orders.
type LineDTO struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	LineTotal   string `json:"lineTotal"`
}

func toLineDTOs(lines []domain.OrderLine) []LineDTO {
	dtos := make([]LineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = LineDTO{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.String(),
			LineTotal:   l.LineTotal.String(),
		}
	}
	return dtos
}

// CartItemDTO is one unpriced cart line.
type CartItemDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// QuoteDTO prices a cart at current catalog prices.
type QuoteDTO struct {
	Lines []LineDTO `json:"lines"`
	Total string    `json:"total"`
}

// CartDTO is the JSON representation of a cart. Quote is omitted when the
// cart references a product that has left the catalog.
type CartDTO struct {
	Items     []CartItemDTO `json:"items"`
	ItemCount int64         `json:"itemCount"`
	Quote     *QuoteDTO     `json:"quote,omitempty"`
}

func toCartDTO(c *domain.Cart, q *domain.Quote) CartDTO {
	dto := CartDTO{
		Items:     make([]CartItemDTO, len(c.Lines)),
		ItemCount: c.ItemCount(),
	}
	for i, l := range c.Lines {
		dto.Items[i] = CartItemDTO{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if q != nil {
		dto.Quote = &QuoteDTO{Lines: toLineDTOs(q.Lines), Total: q.Total.String()}
	}
	return dto
}

// OrderDTO is the JSON representation of a placed order.
type OrderDTO struct {
	ID          int64     `json:"id"`
	Lines       []LineDTO `json:"lines"`
	Total       string    `json:"total"`
	Address     string    `json:"address"`
	PaymentMode string    `json:"paymentMode"`
	PlacedAt    string    `json:"placedAt"`
}

func toOrderDTO(o *domain.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID,
		Lines:       toLineDTOs(o.Lines),
		Total:       o.Total.String(),
		Address:     o.Address,
		PaymentMode: o.PaymentMode,
		PlacedAt:    o.PlacedAt.Format(time.RFC3339),
	}
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = toOrderDTO(&orders[i])
	}
	return dtos
}
