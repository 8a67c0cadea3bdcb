package middleware

import (
	"net/http"

	"swiftshop/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがADMINかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get(CtxUserRoleKey)
			role, ok := v.(string)
			if !ok || role != string(model.RoleAdmin) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}
