package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-labs/home-agent/src/core"
)

type ModuleHandler struct {
	deps Deps
}

func NewModules(deps Deps) ModuleHandler {
	return ModuleHandler{deps: deps}
}

func (h ModuleHandler) List(c *gin.Context) {
	var out []gin.H
	for _, m := range h.deps.Registry.All() {
		out = append(out, h.describe(m, false, c))
	}
	c.JSON(http.StatusOK, gin.H{"modules": out})
}

func (h ModuleHandler) Get(c *gin.Context) {
	name := c.Param("name")
	m, ok := h.deps.Registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"err": "module not found"})
		return
	}
	c.JSON(http.StatusOK, h.describe(m, true, c))
}

func (h ModuleHandler) Enable(c *gin.Context) {
	h.setEnabled(c, true)
}

func (h ModuleHandler) Disable(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h ModuleHandler) setEnabled(c *gin.Context, enabled bool) {
	name := c.Param("name")
	if !h.deps.Registry.SetEnabled(name, enabled) {
		c.JSON(http.StatusNotFound, gin.H{"err": "module not found"})
		return
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"message": "module " + name + " " + state})
}

func (h ModuleHandler) describe(m core.Module, withState bool, c *gin.Context) gin.H {
	out := gin.H{
		"name":         m.Name(),
		"description":  m.Description(),
		"version":      m.Version(),
		"enabled":      h.deps.Registry.IsEnabled(m.Name()),
		"capabilities": m.Capabilities(),
	}
	if withState {
		out["state"] = m.State(c.Request.Context())
	}
	return out
}
