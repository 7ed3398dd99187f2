package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/services"
	"go.uber.org/zap"
)

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{services.ErrUnsupportedFormat, "unsupported_format", http.StatusBadRequest},
	{services.ErrFileTooLarge, "file_too_large", http.StatusBadRequest},
	{services.ErrUnknownGenre, "unknown_genre", http.StatusBadRequest},
	{services.ErrDuplicateGenreSelection, "duplicate_genre_selection", http.StatusBadRequest},
	{services.ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{services.ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
	{services.ErrUnauthorized, "unauthorized", http.StatusUnauthorized},
	{services.ErrForbidden, "forbidden", http.StatusForbidden},
	{services.ErrNotFound, "not_found", http.StatusNotFound},
	{services.ErrConflict, "conflict", http.StatusConflict},
}

var messages = map[string]string{
	"invalid_credentials": "Неверное имя пользователя или пароль.",
	"unauthorized":        "Требуется авторизация.",
	"forbidden":           "Недостаточно прав для этого действия.",
	"not_found":           "Не найдено.",
	"conflict":            "Запись с таким именем уже существует.",
}

// respondError writes the JSON error body for err. Unknown errors are logged
// and reported as a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	for _, e := range errorCodes {
		if !errors.Is(err, e.err) {
			continue
		}
		body := gin.H{"error": e.code}
		var fe *services.FieldError
		if errors.As(err, &fe) {
			body["field"] = fe.Field
			body["message"] = fe.Message
		} else if msg, ok := messages[e.code]; ok {
			body["message"] = msg
		}
		c.AbortWithStatusJSON(e.status, body)
		return
	}

	_ = c.Error(err)
	log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "Внутренняя ошибка сервера."})
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": message})
}
