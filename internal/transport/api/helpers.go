package api

import (
	"github.com/fsdevblog/groph-pay/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

// Стабильные машиночитаемые коды ошибок. Клиенты ветвятся по коду, не по тексту.
const (
	CodeInvalidAmount       = "invalid_amount"
	CodeAmountTooLarge      = "amount_too_large"
	CodeAccountNotFound     = "account_not_found"
	CodeTransactionNotFound = "transaction_not_found"
	CodeAlreadyFinalized    = "transaction_already_finalized"
	CodeGiftCodeNotFound    = "gift_code_not_found"
	CodeGiftCodeClaimed     = "gift_code_claimed"
	CodePayloadFailed       = "payload_generation_failed"
	CodeStoreUnavailable    = "store_unavailable"
)

func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}

// abortWithCode завершает запрос машиночитаемым кодом и человекочитаемым сообщением.
func abortWithCode(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "error": msg})
}
