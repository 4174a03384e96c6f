package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/generation"
	"github.com/yourname/aidiary/internal/response"
	"github.com/yourname/aidiary/internal/validation"
)

const msgMalformedBody = "リクエストボディが不正です"

// generateRequest keeps its fields untyped so a non-string value is reported
// by the validators instead of failing the decode.
type generateRequest struct {
	UserInput any `json:"userInput"`
	Date      any `json:"date"`
}

// PostGenerate runs behind AuthMiddleware, which covers the unauthenticated branch.
func PostGenerate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("malformed body: "+err.Error(), msgMalformedBody), internal.KindGeneration)
			return
		}

		if r := validation.ValidateUserNote(req.UserInput); !r.IsValid {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid userInput", r.Error), internal.KindGeneration)
			return
		}
		if r := validation.ValidateDate(req.Date); !r.IsValid {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid date", r.Error), internal.KindGeneration)
			return
		}
		date, err := validation.ParseDate(req.Date.(string))
		if err != nil {
			HandleError(c, app.Logger(), internal.NewValidationError("invalid date", err.Error()), internal.KindGeneration)
			return
		}

		result, err := app.Generator().Generate(c.Request.Context(), generation.Request{
			UserNote: req.UserInput.(string),
			Date:     date,
		})
		if err != nil {
			HandleError(c, app.Logger(), err, internal.KindGeneration)
			return
		}

		HandleSuccess(c, app.Logger(), http.StatusOK, response.Generated(result.Content))
	}
}
