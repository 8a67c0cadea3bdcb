package server

import (
	"swiftshop/internal/config"
	"swiftshop/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Item      *handler.ItemHandler
	AdminItem *handler.AdminItemHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Receipt   *handler.ReceiptHandler
}

// New はechoを組み立てて返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, cfg, h)

	return e
}

// Start はサーバーを起動する。
func Start(addr string, cfg config.Config, h Handlers) error {
	e := New(cfg, h)
	return e.Start(addr)
}
