package handler

import (
	"errors"
	"net/http"
	"strconv"

	"swiftshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseの型付きエラーをHTTPステータスに変換する。
// ステータスの割り当てはここだけが知っている。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	if errors.Is(err, usecase.ErrInvalidQuantity) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
	}
	if errors.Is(err, usecase.ErrEmptyCart) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart empty"})
	}
	if ise, ok := usecase.AsInsufficientStock(err); ok {
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error: "insufficient stock: item " + strconv.FormatInt(ise.ItemID, 10),
		})
	}
	if errors.Is(err, usecase.ErrStockUnderflow) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "stock underflow"})
	}
	if usecase.IsTransient(err) {
		//再試行可能
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable"})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /items の公開API
type ItemHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewItemHandler(uc *usecase.CatalogUsecase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ItemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/items", h.list)
	e.GET("/items/:id", h.detail)
}

func (h *ItemHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	q := c.QueryParam("q")
	sort := c.QueryParam("sort")

	var minPrice *int64
	if v := c.QueryParam("min_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid min_price"})
		}
		minPrice = &x
	}

	var maxPrice *int64
	if v := c.QueryParam("max_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid max_price"})
		}
		maxPrice = &x
	}

	out, err := h.uc.ListItems(c.Request().Context(), usecase.ListItemsInput{
		Page:     page,
		Limit:    limit,
		Q:        q,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     sort,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetItem(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
