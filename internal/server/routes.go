package server

import (
	"swiftshop/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Item.RegisterRoutes(e)
	h.AdminItem.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Checkout.RegisterRoutes(e, cfg)
	h.Receipt.RegisterRoutes(e, cfg)
}
