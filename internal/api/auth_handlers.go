package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/auth"
	"github.com/yourname/aidiary/internal/response"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

const msgInvalidCredentials = "メールアドレスとパスワードを入力してください"

// accountError turns an auth API failure into an AppError. Answers from the
// API carry a message meant for the user; transport failures do not.
func accountError(err error, kind internal.ErrorKind) error {
	var gte *auth.GoTrueError
	if !errors.As(err, &gte) {
		return internal.NewUpstreamError("auth api call failed", err)
	}
	if gte.StatusCode >= http.StatusInternalServerError {
		return internal.NewUpstreamError("auth api unavailable", err)
	}
	_, status := response.Classify(kind)
	return &internal.AppError{Kind: kind, Message: gte.Error(), UserMessage: gte.Message, StatusCode: status, Err: err}
}

func PostSignUp(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error(), msgInvalidCredentials), internal.KindUpstream)
			return
		}
		session, err := app.Accounts().SignUp(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			HandleError(c, app.Logger(), accountError(err, internal.KindValidation), internal.KindUpstream)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusCreated, response.Success(session))
	}
}

func PostLogin(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error(), msgInvalidCredentials), internal.KindUpstream)
			return
		}
		session, err := app.Accounts().SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			HandleError(c, app.Logger(), accountError(err, internal.KindAuthentication), internal.KindUpstream)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(session))
	}
}

func PostLogout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Accounts().SignOut(c.Request.Context(), mustUser(c)); err != nil {
			HandleError(c, app.Logger(), accountError(err, internal.KindAuthentication), internal.KindUpstream)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(nil))
	}
}

func PostResetPassword(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError(err.Error(), "メールアドレスを入力してください"), internal.KindUpstream)
			return
		}
		if err := app.Accounts().ResetPassword(c.Request.Context(), req.Email); err != nil {
			HandleError(c, app.Logger(), accountError(err, internal.KindValidation), internal.KindUpstream)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(nil))
	}
}
