package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nazim1903/Businesstracker/internal/apierror"
	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/service"

	"github.com/gin-gonic/gin"
)

// maxBackupBytes bounds an uploaded dataset.
const maxBackupBytes = 64 << 20

type BackupHandler struct{ svc service.BackupService }

func NewBackupHandler(svc service.BackupService) *BackupHandler {
	return &BackupHandler{svc: svc}
}

// Export godoc
// @Summary  Download the whole dataset as one JSON document
// @Tags     backup
// @Produce  json
// @Success  200 {object} dto.BackupDocument
// @Router   /v1/backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.svc.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("backup_%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.JSON(http.StatusOK, doc)
}

// Import godoc
// @Summary  Replace the whole dataset from a backup document
// @Description Accepts a multipart "backup" file or a JSON body.
// @Tags     backup
// @Accept   json,mpfd
// @Produce  json
// @Success  200 {object} dto.ImportSummary
// @Failure  422 {object} apierror.ValidationError
// @Router   /v1/backup/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupBytes)

	var doc dto.BackupDocument
	if fh, err := c.FormFile("backup"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("cannot read uploaded file"))
			return
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&doc); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid backup file: "+err.Error()))
			return
		}
	} else if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return
	}

	summary, err := h.svc.Import(c.Request.Context(), &doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
