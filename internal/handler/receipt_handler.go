package handler

import (
	"net/http"
	"strconv"

	"swiftshop/internal/config"
	"swiftshop/internal/middleware"
	"swiftshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /receiptsのHTTP（参照のみ）
type ReceiptHandler struct {
	uc *usecase.ReceiptUsecase
}

// DI
func NewReceiptHandler(uc *usecase.ReceiptUsecase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

func (h *ReceiptHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/receipts")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *ReceiptHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyReceipts(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ReceiptHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetMyReceiptDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
