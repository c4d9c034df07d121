package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminRequired пропускает только запросы оператора с валидным токеном в заголовке
// AdminTokenHeader. Сравнение токенов константное по времени.
func AdminRequired(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AdminTokenHeader)
		if adminToken == "" ||
			subtle.ConstantTimeCompare([]byte(header), []byte(adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
