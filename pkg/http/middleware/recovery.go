package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "DeskStream/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover turns a handler panic into a 500 and logs the stack.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					l.Error("panic recovered",
						applogger.Error(err),
						applogger.String("path", c.Path()),
						applogger.String("stack", string(debug.Stack())),
					)
					if !c.Response().Committed {
						_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
							"status":  http.StatusInternalServerError,
							"message": "Internal Server Error",
						})
					}
				}
			}()
			return next(c)
		}
	}
}
