package webserver

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	deps Deps
}

func NewLogs(deps Deps) LogHandler {
	return LogHandler{deps: deps}
}

func (h LogHandler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.deps.AuditLog.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": records})
}

func (h LogHandler) Notes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	notes, err := h.deps.AuditLog.RecentNotes(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

type reqNote struct {
	Content string `json:"content" binding:"required"`
}

func (h LogHandler) AddNote(c *gin.Context) {
	var req reqNote
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	id, err := h.deps.AuditLog.AddNote(req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"note_id": id, "message": "note saved"})
}

// Artifact serves a screenshot or other side-channel output by filename.
// Only plain filenames inside the artifact dir are allowed.
func (h LogHandler) Artifact(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid artifact name"})
		return
	}
	c.File(filepath.Join(h.deps.ArtifactDir, name))
}
