package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resort-backend/controllers"
	"resort-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the HTTP surface: public booking/catalog/cart routes
// plus the staff-only management routes behind bearer auth.
func SetupRouter(
	db *gorm.DB,
	bc *controllers.BookingController,
	pc *controllers.PaymentController,
	ac *controllers.AvailabilityController,
	cc *controllers.CartController,
	cat *controllers.CatalogController,
	auth *controllers.AuthController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Cart-Session"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		staffOnly := middleware.StaffAuth(db)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bc.CreateBooking)
			bookings.GET("/:id", bc.GetBooking)

			bookings.GET("", staffOnly, bc.GetBookings)
			bookings.PATCH("/:id/status", staffOnly, bc.UpdateStatus)
			bookings.PATCH("/:id/rooms/:lineId/status", staffOnly, bc.UpdateRoomStatus)
			bookings.PATCH("/:id/rooms/:lineId/dates", staffOnly, bc.RescheduleRoom)
			bookings.POST("/:id/services", staffOnly, bc.AddServices)
			bookings.DELETE("/:id/services/:lineId", staffOnly, bc.RemoveService)
			bookings.PATCH("/:id/services/:lineId/dates", staffOnly, bc.RescheduleService)
		}

		payment := api.Group("/payment")
		{
			payment.GET("/callback", pc.Callback)
			payment.GET("/:code/url", pc.RegeneratePaymentURL)
		}

		availability := api.Group("/availability")
		{
			availability.POST("/search", ac.Search)
			availability.GET("/rooms/:roomId/booked", ac.BookedIntervals)
		}

		cart := api.Group("/cart")
		{
			cart.GET("", cc.GetCart)
			cart.POST("/items", cc.AddItem)
			cart.DELETE("/items/:id", cc.RemoveItem)
			cart.DELETE("", cc.ClearCart)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", cat.GetRooms)
			rooms.POST("", staffOnly, cat.CreateRoom)
			rooms.PATCH("/:id", staffOnly, cat.UpdateRoom)
			rooms.PUT("/:id", staffOnly, cat.UpdateRoom)
			rooms.DELETE("/:id", staffOnly, cat.DeleteRoom)
		}

		offers := api.Group("/offers")
		{
			offers.GET("", cat.GetOffers)
			offers.POST("", staffOnly, cat.CreateOffer)
			offers.DELETE("/:id", staffOnly, cat.DeleteOffer)
		}

		catalogServices := api.Group("/services")
		{
			catalogServices.GET("", cat.GetServices)
			catalogServices.POST("", staffOnly, cat.CreateService)
			catalogServices.DELETE("/:id", staffOnly, cat.DeleteService)
		}

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", auth.Login)
			authRoutes.POST("/logout", staffOnly, auth.Logout)
		}
	}

	return r
}
