// Package webserver is the request/response front end: a JSON API mirroring
// everything the conversational front end can do, authenticated with a
// pre-shared owner secret exchanged for a short-lived JWT.
package webserver

import (
	"github.com/gin-gonic/gin"

	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/config"
	"github.com/halcyon-labs/home-agent/src/core"
	"github.com/halcyon-labs/home-agent/src/interpreter"
)

// Deps carries the shared agent components the API serves.
type Deps struct {
	Registry    *core.Registry
	Dispatcher  *core.Dispatcher
	Interpreter *interpreter.Interpreter
	AuditLog    *audit.Store
	ArtifactDir string
}

func New(cfg config.Config, deps Deps) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, deps)
	return g
}
