package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	boarderrors "github.com/hrygo/personalboard/server/internal/errors"
	"github.com/hrygo/personalboard/internal/observability"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse is returned by operations that have no resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

var statusByCode = map[boarderrors.ErrorCode]int{
	boarderrors.ErrCodeValidationFailed:    http.StatusBadRequest,
	boarderrors.ErrCodeNotFound:            http.StatusNotFound,
	boarderrors.ErrCodePermissionDenied:    http.StatusForbidden,
	boarderrors.ErrCodeRateLimitExceeded:   http.StatusTooManyRequests,
	boarderrors.ErrCodeGenerationFailed:    http.StatusBadGateway,
	boarderrors.ErrCodeTimeout:             http.StatusGatewayTimeout,
	boarderrors.ErrCodePersonaLookupFailed: http.StatusInternalServerError,
	boarderrors.ErrCodePersistenceFailed:   http.StatusInternalServerError,
}

// HTTPStatus maps an error code to its response status.
func HTTPStatus(code boarderrors.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (s *APIV1Service) errorResponse(c echo.Context, err error) error {
	code := boarderrors.GetCodeFromError(err, boarderrors.ErrCodeInternal)
	status := HTTPStatus(code)

	message := err.Error()
	var boardErr *boarderrors.BoardError
	if errors.As(err, &boardErr) {
		message = boardErr.Message
	}

	if status >= http.StatusInternalServerError {
		if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
			reqCtx.Error("request failed", err, slog.String(observability.LogFieldErrorCode, string(code)))
		} else {
			s.Logger.Error("request failed", slog.String("error", err.Error()), slog.String(observability.LogFieldErrorCode, string(code)))
		}
	}
	return c.JSON(status, ErrorResponse{Error: message, Code: string(code)})
}
