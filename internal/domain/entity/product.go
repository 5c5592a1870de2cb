package entity

import (
	"time"
)

const (
	ProductStatusActive  = "active"
	ProductStatusDeleted = "deleted"
)

type Product struct {
	ID          string  `json:"id" firestore:"id"`
	Name        string  `json:"name" firestore:"name"`
	Description string  `json:"description" firestore:"description"`
	Category    string  `json:"category" firestore:"category"`
	Price       float64 `json:"price" firestore:"price"`
	Stock       int     `json:"stock" firestore:"stock"`
	Image       string  `json:"image" firestore:"image"`
	Rating      float64 `json:"rating" firestore:"rating"`
	Reviews     int     `json:"reviews" firestore:"reviews"`
	Status      string  `json:"status" firestore:"status"`

	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" firestore:"deletedAt,omitempty"`
}

// InStock reports whether qty units can be taken from the product.
func (p *Product) InStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}
