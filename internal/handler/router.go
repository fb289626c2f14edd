package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tidebook/internal/domain/identity"
	"tidebook/internal/handler/api"
	"tidebook/internal/handler/middleware"
	"tidebook/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, bookingHandler *api.BookingHandler, operatorHandler *api.OperatorHandler, webhookHandler *api.WebhookHandler, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, operatorHandler, webhookHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, bookingHandler *api.BookingHandler, operatorHandler *api.OperatorHandler, webhookHandler *api.WebhookHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Webhooks authenticate by signature, not by token.
		apiGroup.POST("/webhooks/razorpay", webhookHandler.HandleRazorpay)

		apiGroup.GET("/slots/:id/availability", bookingHandler.GetSlotAvailability)

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "/holds", Handler: bookingHandler.CreateHold},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMyBookings},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
				{Method: http.MethodDelete, Path: "/:id", Handler: bookingHandler.CancelBooking},
				{Method: http.MethodPost, Path: "/:id/extend", Handler: bookingHandler.ExtendHold},
				{Method: http.MethodPost, Path: "/:id/payment-claim", Handler: bookingHandler.ClaimPayment},
				{Method: http.MethodPost, Path: "/:id/gateway-order", Handler: bookingHandler.CreateGatewayOrder},
			})
		}

		operator := apiGroup.Group("/operator/bookings")
		operator.Use(authMiddleware.RequireAuth())
		operator.Use(authMiddleware.RequireRoleAtLeast(identity.RoleSchoolOperator))
		{
			addRoutes(operator, []route{
				{Method: http.MethodGet, Path: "", Handler: operatorHandler.ListBookings},
				{Method: http.MethodGet, Path: "/:id", Handler: operatorHandler.GetBooking},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: operatorHandler.ConfirmDeposit},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: operatorHandler.RejectDeposit},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: operatorHandler.CancelBooking},
				{Method: http.MethodPost, Path: "/:id/refund", Handler: operatorHandler.RefundDeposit},
				{Method: http.MethodPost, Path: "/:id/consume", Handler: operatorHandler.ConsumeBooking},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
