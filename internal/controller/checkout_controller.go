package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"planforge_backend/internal/model"
	"planforge_backend/pkg/database"
	"planforge_backend/pkg/email"
	"planforge_backend/pkg/license"
	"planforge_backend/pkg/utils/jwt"
	"planforge_backend/pkg/utils/validation"
)

type CheckoutItemInput struct {
	PlanID         *uint             `json:"plan_id"`
	GalleryImageID *uint             `json:"gallery_image_id"`
	LicenseType    model.LicenseType `json:"license_type" validate:"required,oneof=PREVIEW STANDARD COMMERCIAL EXTENDED"`
	Quantity       int               `json:"quantity" validate:"omitempty,min=1,max=10"`
}

type CheckoutInput struct {
	Items          []CheckoutItemInput `json:"items" validate:"required,min=1,max=20,dive"`
	BillingDetails datatypes.JSON      `json:"billing_details"`
	SuccessURL     string              `json:"success_url" validate:"omitempty,url"`
	CancelURL      string              `json:"cancel_url" validate:"omitempty,url"`
}

// toCents converts a price to Stripe's integer minor units. Rounding, not
// truncating: float error on amounts like 19.99 must never shave a cent off
// the charge while the order row records the full price.
func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.NewString()[:8]))
}

// CreateCheckoutSession prices the cart server-side, creates a PENDING order
// and hands off to a Stripe-hosted session. Carts that price to zero (all
// PREVIEW items) skip Stripe entirely and are fulfilled immediately.
func CreateCheckoutSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if fields := validation.ValidateStruct(input); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	db := database.GetDB()

	type pricedItem struct {
		item  model.OrderItem
		label string
	}
	var priced []pricedItem
	var total float64
	currency := ""

	for _, in := range input.Items {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}

		switch {
		case in.PlanID != nil:
			var plan model.Plan
			err := db.Where("id = ? AND status = ? AND is_active = ?",
				*in.PlanID, model.PlanStatusPublished, true).First(&plan).Error
			if err != nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": fmt.Sprintf("Plan %d not found", *in.PlanID),
				})
			}
			if currency == "" {
				currency = plan.Currency
			} else if plan.Currency != currency {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "All items in an order must use the same currency",
				})
			}
			unit := plan.PriceForTier(in.LicenseType)
			total += unit * float64(qty)
			priced = append(priced, pricedItem{
				item: model.OrderItem{
					PlanID:      in.PlanID,
					LicenseType: in.LicenseType,
					UnitPrice:   unit,
					Quantity:    qty,
				},
				label: fmt.Sprintf("%s (%s license)", plan.Title, in.LicenseType),
			})
		case in.GalleryImageID != nil:
			var img model.GalleryImage
			err := db.Where("id = ? AND is_published = ?", *in.GalleryImageID, true).First(&img).Error
			if err != nil {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": fmt.Sprintf("Gallery image %d not found", *in.GalleryImageID),
				})
			}
			if currency == "" {
				currency = img.Currency
			} else if img.Currency != currency {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "All items in an order must use the same currency",
				})
			}
			unit := img.PriceForTier(in.LicenseType)
			total += unit * float64(qty)
			priced = append(priced, pricedItem{
				item: model.OrderItem{
					GalleryImageID: in.GalleryImageID,
					LicenseType:    in.LicenseType,
					UnitPrice:      unit,
					Quantity:       qty,
				},
				label: fmt.Sprintf("%s (%s license)", img.Title, in.LicenseType),
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Each item needs a plan_id or gallery_image_id",
			})
		}
	}

	if currency == "" {
		currency = "USD"
	}

	order := model.Order{
		OrderNumber:    newOrderNumber(),
		UserID:         claims.UserID,
		Status:         model.OrderStatusPending,
		Subtotal:       total,
		Total:          total,
		Currency:       currency,
		BillingDetails: input.BillingDetails,
	}

	tx := db.Begin()
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create order",
		})
	}
	for _, p := range priced {
		p.item.OrderID = order.ID
		if err := tx.Create(&p.item).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save order items",
			})
		}
	}

	// Free path: nothing to charge, fulfill inside the same transaction
	if total == 0 {
		if err := tx.Model(&order).Update("status", model.OrderStatusProcessing).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not complete order",
			})
		}
		if err := fulfillOrder(tx, &order); err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not complete order",
			})
		}
		if err := tx.Commit().Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not complete order",
			})
		}
		return c.JSON(fiber.Map{
			"free":     true,
			"order_id": order.ID,
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create order",
		})
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	successURL := input.SuccessURL
	if successURL == "" {
		successURL = os.Getenv("PUBLIC_URL") + "/checkout/success"
	}
	cancelURL := input.CancelURL
	if cancelURL == "" {
		cancelURL = os.Getenv("PUBLIC_URL") + "/checkout/cancelled"
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(priced))
	for _, p := range priced {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.label),
				},
				UnitAmount: stripe.Int64(toCents(p.item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(p.item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.AddMetadata("order_id", strconv.FormatUint(uint64(order.ID), 10))

	s, err := session.New(params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create payment session, please try again",
		})
	}

	if err := db.Model(&order).Update("stripe_session_id", s.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save payment session",
		})
	}

	return c.JSON(fiber.Map{
		"free":         false,
		"order_id":     order.ID,
		"session_id":   s.ID,
		"checkout_url": s.URL,
	})
}

// fulfillOrder marks the order COMPLETED and creates its licenses. Runs
// inside a single transaction so a crash never leaves a paid order without
// licenses.
func fulfillOrder(tx *gorm.DB, order *model.Order) error {
	var items []model.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}

	for i := range items {
		lic := license.NewFromOrderItem(&items[i], order.UserID, order.ID)
		if err := tx.Create(&lic).Error; err != nil {
			return err
		}
	}

	return tx.Model(order).Update("status", model.OrderStatusCompleted).Error
}

// HandleStripeWebhook processes payment confirmations. Signature is verified
// before anything is trusted.
func HandleStripeWebhook(c *fiber.Ctx) error {
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	log.Printf("Processing Stripe webhook event: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		var sessionData struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sessionData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		var order model.Order
		err := database.GetDB().Where("stripe_session_id = ?", sessionData.ID).
			Preload("User").First(&order).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not find order for session",
			})
		}

		if order.Status == model.OrderStatusCompleted {
			// Stripe retries webhooks; fulfillment is idempotent
			return c.SendStatus(fiber.StatusOK)
		}

		tx := database.GetDB().Begin()
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, model.OrderStatusPending).
			Update("status", model.OrderStatusProcessing)
		if res.Error != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update order",
			})
		}
		if res.RowsAffected == 0 {
			// A concurrent delivery of the same event already claimed the order
			tx.Rollback()
			return c.SendStatus(fiber.StatusOK)
		}
		if err := fulfillOrder(tx, &order); err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not fulfill order",
			})
		}
		if err := tx.Commit().Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not fulfill order",
			})
		}

		if email.GlobalEmailService != nil {
			if err := email.GlobalEmailService.SendOrderConfirmationEmail(
				order.User.Email, order.OrderNumber, order.Total, order.Currency,
			); err != nil {
				logEmailError("order confirmation", order.User.Email, err)
			}
		}

		log.Printf("Order %s fulfilled from session %s", order.OrderNumber, sessionData.ID)

	case "checkout.session.expired":
		var sessionData struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sessionData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		database.GetDB().Model(&model.Order{}).
			Where("stripe_session_id = ? AND status = ?", sessionData.ID, model.OrderStatusPending).
			Update("status", model.OrderStatusCancelled)
	}

	return c.SendStatus(fiber.StatusOK)
}

// GetOrder returns an order to its owner or to staff.
func GetOrder(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	id := c.Params("id")

	var order model.Order
	err := database.GetDB().
		Preload("Items").
		Preload("Items.Plan").
		Preload("Items.GalleryImage").
		First(&order, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Order not found",
		})
	}

	if order.UserID != claims.UserID && !model.UserRole(claims.Role).IsStaff() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to view this order",
		})
	}

	return c.JSON(order)
}

// ListMyOrders returns the caller's order history.
func ListMyOrders(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	page, perPage, offset := pagination(c)

	var orders []model.Order
	err := database.GetDB().
		Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Limit(perPage).Offset(offset).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch orders",
		})
	}

	return c.JSON(fiber.Map{
		"orders":   orders,
		"page":     page,
		"per_page": perPage,
	})
}

// ListMyLicenses returns the caller's licenses with remaining quota.
func ListMyLicenses(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var licenses []model.License
	err := database.GetDB().
		Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Preload("Plan").
		Preload("GalleryImage").
		Find(&licenses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch licenses",
		})
	}

	return c.JSON(fiber.Map{
		"licenses": licenses,
	})
}
