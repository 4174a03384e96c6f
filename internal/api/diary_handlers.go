package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/response"
	"github.com/yourname/aidiary/internal/service"
)

func diaries(app App) *service.DiaryService {
	return service.NewDiaryService(app.DiaryRepo(), app.Logger())
}

func malformedBody(err error) error {
	return internal.NewValidationError("malformed body: "+err.Error(), msgMalformedBody)
}

func PostDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateDiaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), malformedBody(err), internal.KindDatabase)
			return
		}

		diary, err := diaries(app).Create(c.Request.Context(), mustUser(c), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, internal.KindDatabase)
			return
		}

		HandleSuccess(c, app.Logger(), http.StatusCreated, response.Success(gin.H{"id": diary.ID}))
	}
}

func ListDiaries(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := diaries(app).List(c.Request.Context(), mustUser(c))
		if err != nil {
			HandleError(c, app.Logger(), err, internal.KindDatabase)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(items))
	}
}

func GetDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		diary, err := diaries(app).Get(c.Request.Context(), mustUser(c), c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, internal.KindDatabase)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(diary))
	}
}

func PutDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateDiaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), malformedBody(err), internal.KindDatabase)
			return
		}

		diary, err := diaries(app).Update(c.Request.Context(), mustUser(c), c.Param("id"), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, internal.KindDatabase)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(diary))
	}
}

func DeleteDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := diaries(app).Delete(c.Request.Context(), mustUser(c), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, internal.KindDatabase)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(nil))
	}
}
