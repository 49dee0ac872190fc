package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/dto"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/response"
)

type commandRunner interface {
	Names() []string
	Run(ctx context.Context, name string, payload json.RawMessage) (interface{}, error)
}

type reportOpener interface {
	OpenReport(token string) (*service.ReportFile, error)
}

// CommandHandler runs named commands and serves the files they produce.
type CommandHandler struct {
	commands commandRunner
	reports  reportOpener
}

// NewCommandHandler builds a new handler.
func NewCommandHandler(commands commandRunner, reports reportOpener) *CommandHandler {
	return &CommandHandler{commands: commands, reports: reports}
}

// List godoc
// @Summary List available commands
// @Tags Commands
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /commands [get]
func (h *CommandHandler) List(c *gin.Context) {
	response.OK(c, dto.CommandListResponse{Commands: h.commands.Names()})
}

// Run godoc
// @Summary Run a command
// @Tags Commands
// @Accept json
// @Produce json
// @Param name path string true "Command name"
// @Param payload body dto.CommandRequest false "Command arguments"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /commands/{name} [post]
func (h *CommandHandler) Run(c *gin.Context) {
	var req dto.CommandRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid command payload"))
			return
		}
	}
	result, err := h.commands.Run(c.Request.Context(), c.Param("name"), req.Args)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Download godoc
// @Summary Download a generated report
// @Tags Commands
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *CommandHandler) Download(c *gin.Context) {
	file, err := h.reports.OpenReport(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Content.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.FileName))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, file.Info.Size(), file.ContentType, file.Content, nil)
}
