package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lumistone/atelier/internal/operatorctx"
)

// OperatorContext propagates the acting operator from the X-Operator header
// into the request context, falling back to the system operator.
func OperatorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := strings.TrimSpace(c.GetHeader("X-Operator"))
		if operator == "" {
			operator = operatorctx.DefaultOperator
		}
		c.Request = c.Request.WithContext(operatorctx.WithOperator(c.Request.Context(), operator))
		c.Next()
	}
}
