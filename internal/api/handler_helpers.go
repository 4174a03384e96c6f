package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/auth"
	"github.com/yourname/aidiary/internal/response"
)

const msgUnexpected = "予期しないエラーが発生しました。もう一度お試しください。"

// HandleError logs err and renders it. Errors that are not *internal.AppError
// are reported as fallback with a generic message so nothing raw reaches the client.
func HandleError(c *gin.Context, logger internal.Logger, err error, fallback internal.ErrorKind) {
	requestID := c.GetString("request_id")
	appErr, ok := internal.AsAppError(err)
	if !ok {
		appErr = &internal.AppError{Kind: fallback, Message: "unexpected error", UserMessage: msgUnexpected, Err: err}
	}
	fields := []interface{}{
		"request_id", requestID,
		"path", c.FullPath(),
		"kind", appErr.Kind.String(),
		"error", err,
	}
	if appErr.Kind == internal.KindValidation || appErr.Kind == internal.KindNotFound {
		logger.Infow("request rejected", fields...)
	} else {
		logger.Errorw("request failed", fields...)
	}
	c.JSON(response.Failure(appErr))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, status int, body response.APIResponse) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(status, body)
}

// mustUser is only used behind AuthMiddleware.
func mustUser(c *gin.Context) *internal.User {
	return c.MustGet(auth.UserKey).(*internal.User)
}
