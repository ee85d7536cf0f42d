package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alvine998/marketplace-backend/controllers"
	"github.com/alvine998/marketplace-backend/middleware"
)

// Controllers bundles every HTTP handler group for registration.
type Controllers struct {
	Auth     *controllers.AuthController
	Products *controllers.ProductController
	Carts    *controllers.CartController
	Vouchers *controllers.VoucherController
	Orders   *controllers.TransactionController
	Payments *controllers.PaymentController
}

// RegisterRoutes wires the full HTTP surface. The payment notification
// endpoint stays outside the auth group: the processor calls it directly.
func RegisterRoutes(r *gin.Engine, c Controllers, jwtSecret []byte) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimit())

	api.POST("/auth/register", c.Auth.Register)
	api.POST("/auth/login", c.Auth.Login)

	api.GET("/products", c.Products.ListProducts)
	api.GET("/products/:id", c.Products.GetProduct)

	api.POST("/payments/notification", c.Payments.HandleNotification)

	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(jwtSecret))
	{
		auth.GET("/carts", c.Carts.GetCart)
		auth.POST("/carts", c.Carts.AddToCart)
		auth.PUT("/carts/:id", c.Carts.UpdateCartItem)
		auth.DELETE("/carts/:id", c.Carts.RemoveFromCart)
		auth.DELETE("/carts", c.Carts.ClearCart)

		auth.GET("/vouchers", c.Vouchers.ListVouchers)
		auth.GET("/vouchers/:code", c.Vouchers.GetVoucherByCode)

		auth.POST("/transactions/checkout", c.Orders.Checkout)
		auth.GET("/transactions", c.Orders.GetOrders)
		auth.GET("/transactions/:id", c.Orders.GetOrderByID)

		auth.POST("/payments/token", c.Payments.CreateToken)
		auth.GET("/payments/methods", c.Payments.ListMethods)
	}

	admin := auth.Group("")
	admin.Use(middleware.AdminOnly())
	{
		admin.POST("/products", c.Products.CreateProduct)
		admin.PUT("/products/:id", c.Products.UpdateProduct)
		admin.DELETE("/products/:id", c.Products.DeleteProduct)

		admin.POST("/vouchers", c.Vouchers.CreateVoucher)
		admin.PUT("/vouchers/:id", c.Vouchers.UpdateVoucher)
		admin.DELETE("/vouchers/:id", c.Vouchers.DeleteVoucher)
	}
}
