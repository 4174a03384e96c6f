package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/aidiary/internal/auth"
)

func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	requireUser := auth.AuthMiddleware(app.AuthProvider(), app.AuthMode(), app.Logger())

	accounts := r.Group("/auth")
	accounts.POST("/signup", PostSignUp(app))
	accounts.POST("/login", PostLogin(app))
	accounts.POST("/reset-password", PostResetPassword(app))
	accounts.POST("/logout", requireUser, PostLogout(app))

	// Protected routes
	protected := r.Group("/api", requireUser)
	protected.POST("/ai/generate", PostGenerate(app))
	protected.POST("/diaries", PostDiary(app))
	protected.GET("/diaries", ListDiaries(app))
	protected.GET("/diaries/:id", GetDiary(app))
	protected.PUT("/diaries/:id", PutDiary(app))
	protected.DELETE("/diaries/:id", DeleteDiary(app))

	return r
}
