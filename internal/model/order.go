package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// CanTransitionTo enforces the order lifecycle:
// PENDING -> PROCESSING -> COMPLETED/CANCELLED. PENDING may also be
// cancelled directly (abandoned checkout).
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	default:
		return false
	}
}

type Order struct {
	gorm.Model
	OrderNumber string      `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID      uint        `json:"user_id" gorm:"index"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';not null"`
	Subtotal    float64     `json:"subtotal"`
	Total       float64     `json:"total" gorm:"not null"`
	Currency    string      `json:"currency" gorm:"default:'USD'"`

	StripeSessionID string         `json:"-" gorm:"index"`
	BillingDetails  datatypes.JSON `json:"billing_details"`

	User  User        `json:"-" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem captures the unit price at purchase time; later price changes on
// the plan or image never affect completed orders.
type OrderItem struct {
	gorm.Model
	OrderID        uint        `json:"order_id" gorm:"index"`
	PlanID         *uint       `json:"plan_id"`
	GalleryImageID *uint       `json:"gallery_image_id"`
	LicenseType    LicenseType `json:"license_type" gorm:"type:varchar(20);not null"`
	UnitPrice      float64     `json:"unit_price" gorm:"not null"`
	Quantity       int         `json:"quantity" gorm:"default:1"`

	Plan         *Plan         `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	GalleryImage *GalleryImage `json:"gallery_image,omitempty" gorm:"foreignKey:GalleryImageID"`
}
