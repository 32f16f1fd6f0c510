package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"curbside/handlers"
	"curbside/middleware"
)

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Collection *handlers.CollectionHandler
	Requests   *handlers.RequestHandler
	Policies   *handlers.PolicyHandler
}

// RegisterRoutes sets up all endpoints and shared middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	api := r.Group("/api")
	{
		api.GET("/policies", hb.Policies.List)

		collection := api.Group("/collection")
		collection.Use(middleware.ResidentAuthMiddleware())
		{
			collection.POST("/availability", hb.Collection.CheckAvailability)
			collection.POST("/confirm", hb.Collection.ConfirmBooking)
			collection.POST("/checkout/sync", hb.Collection.SyncCheckout)
			collection.GET("/requests", hb.Requests.List)
			collection.GET("/requests/:id", hb.Requests.GetByID)
		}
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Curbside"})
	})
}
