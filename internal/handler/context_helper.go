package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/middleware"
	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func sessionFromContext(c *gin.Context) (string, error) {
	id := middleware.SessionID(c)
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "worklist session is required")
	}
	return id, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a number")
	}
	return v, nil
}
