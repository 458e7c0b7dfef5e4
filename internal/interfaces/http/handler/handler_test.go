package handler

import (
	"context"
	"net/http"
	"testing"

	catalogapp "github.com/apparel/storefront/internal/application/catalog"
	"github.com/apparel/storefront/internal/application/checkout"
	appdesign "github.com/apparel/storefront/internal/application/design"
	apporder "github.com/apparel/storefront/internal/application/order"
	apppayment "github.com/apparel/storefront/internal/application/payment"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/pricing"
	"github.com/apparel/storefront/internal/infrastructure/cache"
	"github.com/apparel/storefront/internal/infrastructure/export"
	paymentinfra "github.com/apparel/storefront/internal/infrastructure/payment"
	"github.com/apparel/storefront/internal/infrastructure/persistence"
	"github.com/apparel/storefront/internal/interfaces/http/middleware"
	"github.com/apparel/storefront/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testBasePrice     = 30000
	testStripeSecret  = "whsec_handler_test"
	testServerURL     = "https://shop.example.com"
	testCardIntentURL = "https://checkout.stripe.test/session"
)

// cardAdapter stands in for the Stripe adapter
type cardAdapter struct {
	calls int
}

func (a *cardAdapter) Method() order.PaymentMethod { return order.PaymentMethodCard }

func (a *cardAdapter) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	a.calls++
	return &payment.InitiateResult{
		PaymentIntentID: "cs_test_" + req.OrderID.String()[:8],
		PaymentStatus:   order.PaymentStatusInitiated,
		RedirectURL:     testCardIntentURL,
	}, nil
}

// testApp is the storefront wired on an in-memory database
type testApp struct {
	db      *gorm.DB
	catalog testutil.Catalog
	orders  *persistence.GormOrderRepository
	card    *cardAdapter

	catalogHandler  *CatalogHandler
	configHandler   *ConfigurationHandler
	checkoutHandler *CheckoutHandler
	adminHandler    *AdminOrderHandler
	webhookHandler  *WebhookHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)
	seeded := testutil.SeedCatalog(t, db, testutil.CatalogSeed{
		FabricValue:  "polyester",
		ProductPrice: decimal.NewFromInt(45000),
	})

	colors := persistence.NewGormColorRepository(db)
	sizes := persistence.NewGormSizeRepository(db)
	fabrics := persistence.NewGormFabricRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	products := persistence.NewGormProductRepository(db)
	configs := persistence.NewGormConfigurationRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	users := persistence.NewGormUserRepository(db)

	resolver := design.NewResolver(colors, sizes, fabrics, products)
	calculator := pricing.NewCalculator(
		decimal.NewFromInt(testBasePrice),
		pricing.SurchargeTable{"polyester": decimal.NewFromInt(5000)},
		decimal.Zero,
	)
	redirects := paymentinfra.Redirects{ServerURL: testServerURL}
	card := &cardAdapter{}
	registry, err := payment.NewRegistry(paymentinfra.NewCODAdapter(redirects), card)
	require.NoError(t, err)

	catalogService := catalogapp.NewService(catalogapp.Repositories{
		Colors: colors, Sizes: sizes, Fabrics: fabrics, Categories: categories, Products: products,
	}, nil)
	designService := appdesign.NewService(configs, products, resolver, calculator, orders, nil)
	checkoutService := checkout.NewService(configs, resolver, calculator, orders, users, registry, redirects, checkout.Options{}, nil)
	statusService := checkout.NewStatusService(orders, configs, resolver, users, nil)
	adminService := apporder.NewAdminService(orders, export.NewOrderSheetWriter(), apporder.Dashboard{}, nil)
	stripeService := apppayment.NewStripeWebhookService(testStripeSecret, orders, cache.NewInMemoryIdempotencyStore(), nil)

	return &testApp{
		db:              db,
		catalog:         seeded,
		orders:          orders,
		card:            card,
		catalogHandler:  NewCatalogHandler(catalogService),
		configHandler:   NewConfigurationHandler(designService),
		checkoutHandler: NewCheckoutHandler(checkoutService, statusService),
		adminHandler:    NewAdminOrderHandler(adminService),
		webhookHandler:  NewWebhookHandler(stripeService, nil),
	}
}

// engine mounts the handlers the way the router does, authenticated as caller
func (a *testApp) engine(caller identity.Principal) *gin.Engine {
	e := gin.New()
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1")
	api.GET("/catalog/colors", a.catalogHandler.ListColors)
	api.GET("/catalog/products", a.catalogHandler.ListProducts)
	api.GET("/catalog/products/:id", a.catalogHandler.GetProduct)
	api.POST("/webhooks/stripe", a.webhookHandler.Stripe)
	api.POST("/webhooks/razorpay", a.webhookHandler.Razorpay)

	authed := api.Group("")
	if caller.IsAuthenticated() {
		authed.Use(testutil.AsPrincipal(caller))
	}
	authed.POST("/configurations/custom", a.configHandler.CreateCustom)
	authed.POST("/configurations/catalog", a.configHandler.CreateFromProduct)
	authed.POST("/configurations/uploads", a.configHandler.RequestUpload)
	authed.GET("/configurations/:id", a.configHandler.Get)
	authed.PUT("/configurations/:id/options", a.configHandler.UpdateOptions)
	authed.PUT("/configurations/:id/artwork", a.configHandler.AttachArtwork)
	authed.POST("/checkout", a.checkoutHandler.Checkout)
	authed.GET("/orders/:id/status", a.checkoutHandler.OrderStatus)

	admin := authed.Group("/admin")
	admin.POST("/colors", a.catalogHandler.CreateColor)
	admin.DELETE("/colors/:id", a.catalogHandler.DeleteColor)
	admin.POST("/fabrics", a.catalogHandler.CreateFabric)
	admin.POST("/products", a.catalogHandler.CreateProduct)
	admin.PUT("/products/:id", a.catalogHandler.UpdateProduct)
	admin.DELETE("/products/:id", a.catalogHandler.DeleteProduct)
	admin.GET("/orders", a.adminHandler.List)
	admin.GET("/orders/revenue", a.adminHandler.Revenue)
	admin.GET("/orders/export", a.adminHandler.Export)
	admin.PATCH("/orders/:id/status", a.adminHandler.UpdateStatus)
	admin.POST("/orders/:id/mark-paid", a.adminHandler.MarkPaid)
	return e
}

// customConfiguration creates a custom design through the API and returns its id
func (a *testApp) customConfiguration(t *testing.T, e *gin.Engine) string {
	t.Helper()
	w := testutil.Do(t, e, testutil.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/configurations/custom",
		Body:   map[string]any{"imageUrl": "https://cdn.example.com/art.png", "width": 500, "height": 600},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[appdesign.MutationResponse](t, w)
	return created.ID.String()
}

// checkoutAs places the order for cfgID and returns the result
func (a *testApp) checkoutAs(t *testing.T, e *gin.Engine, cfgID, method string) checkout.CheckoutResult {
	t.Helper()
	w := testutil.Do(t, e, testutil.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/checkout",
		Body:   map[string]any{"configurationId": cfgID, "paymentMethod": method},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testutil.DecodeData[checkout.CheckoutResult](t, w)
}
