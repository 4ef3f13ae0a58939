package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/utils"
)

// respondServiceError maps a service error onto the response envelope.
// Typed application errors keep their kind, code and failing step;
// anything else is an opaque 500.
func respondServiceError(c *gin.Context, err error) {
	if appErr, ok := utils.AsAppError(err); ok {
		if appErr.Kind == utils.KindInternal {
			log.Error().Err(appErr.Err).Str("step", appErr.Step).Str("path", c.Request.URL.Path).Msg("request failed")
		}
		utils.AppErrorResponse(c, appErr)
		return
	}
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	utils.Error(c, 500, "INTERNAL_ERROR", "unexpected server error")
}
