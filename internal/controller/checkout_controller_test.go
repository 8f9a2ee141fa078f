package controller

import (
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"planforge_backend/pkg/utils/jwt"
)

func TestNewOrderNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		number := newOrderNumber()
		assert.True(t, pattern.MatchString(number), "got %s", number)
		assert.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
}

func TestToCents(t *testing.T) {
	// Truncation would turn 19.99 into 1998 and undercharge by a cent
	assert.Equal(t, int64(1999), toCents(19.99))
	assert.Equal(t, int64(29), toCents(0.29))
	assert.Equal(t, int64(1000), toCents(10))
	assert.Equal(t, int64(0), toCents(0))
	assert.Equal(t, int64(65000), toCents(650))
}

func planRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "base_price", "standard_price", "currency",
	})
}

func TestCreateCheckoutSession_MixedCurrencyRejected(t *testing.T) {
	db, mock := newMockDB(t)
	swapGlobalDB(t, db)

	app := fiber.New()
	app.Post("/checkout", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Claims{UserID: 1, Email: "buyer@example.com", Role: "CUSTOMER"})
		return CreateCheckoutSession(c)
	})

	mock.ExpectQuery(`SELECT \* FROM "plans"`).
		WillReturnRows(planRows().AddRow(1, "Aspen Ridge", 1800, 0, "USD"))
	mock.ExpectQuery(`SELECT \* FROM "plans"`).
		WillReturnRows(planRows().AddRow(2, "Birch Cabin", 650, 0, "EUR"))

	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(
		`{"items":[
			{"plan_id":1,"license_type":"STANDARD"},
			{"plan_id":2,"license_type":"STANDARD"}
		]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// No order may be created for a rejected cart
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleStripeWebhook_DuplicateDeliveryNotFulfilledTwice(t *testing.T) {
	db, mock := newMockDB(t)
	swapGlobalDB(t, db)

	secret := "whsec_test_secret"
	t.Setenv("STRIPE_WEBHOOK_SECRET", secret)

	app := fiber.New()
	app.Post("/webhook", HandleStripeWebhook)

	payload := `{"id":"evt_1","api_version":"` + stripe.APIVersion + `",` +
		`"type":"checkout.session.completed",` +
		`"data":{"object":{"id":"cs_123","metadata":{"order_id":"9"}}}}`

	// The order still reads PENDING, but a concurrent delivery claims it
	// first: the conditional update matches no row and fulfillment is skipped.
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_number", "user_id", "status", "total", "currency", "stripe_session_id",
		}).AddRow(9, "ORD-20250831-ABCDEF01", 1, "PENDING", 650, "USD", "cs_123"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(1, "buyer@example.com"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	now := time.Now()
	signature := webhook.ComputeSignature(now, []byte(payload), secret)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature",
		fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature)))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// No license INSERT, no COMPLETED update: every expectation above is final
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleStripeWebhook_BadSignature(t *testing.T) {
	db, _ := newMockDB(t)
	swapGlobalDB(t, db)

	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test_secret")

	app := fiber.New()
	app.Post("/webhook", HandleStripeWebhook)

	req := httptest.NewRequest("POST", "/webhook",
		strings.NewReader(`{"id":"evt_1","type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=0,v1=deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFileTypeFromName(t *testing.T) {
	assert.Equal(t, "PDF", string(fileTypeFromName("floorplan.pdf")))
	assert.Equal(t, "PDF", string(fileTypeFromName("FLOORPLAN.PDF")))
	assert.Equal(t, "DWG", string(fileTypeFromName("sources.dwg")))
	assert.Equal(t, "ZIP", string(fileTypeFromName("bundle.zip")))
	assert.Equal(t, "ZIP", string(fileTypeFromName("unknown.rar")))
}
