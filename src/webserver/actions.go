package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/core"
)

type ActionHandler struct {
	deps Deps
}

func NewActions(deps Deps) ActionHandler {
	return ActionHandler{deps: deps}
}

type reqMessage struct {
	Message string `json:"message" binding:"required"`
}

// Message runs free text through the interpreter and executes the resulting
// action, if any. Confirmation-gated actions come back as
// requires_confirmation; the HTTP caller re-submits via /action/confirm.
func (h ActionHandler) Message(c *gin.Context) {
	var req reqMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	in, err := h.deps.Interpreter.Interpret(c.Request.Context(), req.Message, requester(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	if in.Action == nil {
		c.JSON(http.StatusOK, gin.H{"thought": in.Thought, "response": in.Response, "action_result": nil})
		return
	}

	result := h.deps.Dispatcher.Dispatch(c.Request.Context(), in.Action.Capability, in.Action.Params)
	if result.Status != core.StatusRequiresConfirmation {
		if !h.auditDispatch(c, in.Action.Capability, in.Action.Params, result) {
			return
		}
		if result.Status == core.StatusSuccess && in.Response != "" {
			result.Message = in.Response
		}
	}
	c.JSON(http.StatusOK, gin.H{"thought": in.Thought, "response": in.Response, "action_result": result})
}

type reqAction struct {
	Capability string         `json:"capability" binding:"required"`
	Params     map[string]any `json:"params"`
	Confirmed  bool           `json:"confirmed"`
}

// Action dispatches a capability directly. The confirmation gate is
// stateless here: the caller carries the confirmed flag instead of a
// per-requester slot.
func (h ActionHandler) Action(c *gin.Context) {
	var req reqAction
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	h.execute(c, req.Capability, req.Params, req.Confirmed)
}

type reqConfirm struct {
	Capability string         `json:"capability" binding:"required"`
	Params     map[string]any `json:"params"`
}

// Confirm completes a previously deferred action.
func (h ActionHandler) Confirm(c *gin.Context) {
	var req reqConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	h.execute(c, req.Capability, req.Params, true)
}

func (h ActionHandler) execute(c *gin.Context, capability string, params map[string]any, confirmed bool) {
	var result core.Result
	if confirmed {
		result = h.deps.Dispatcher.DispatchConfirmed(c.Request.Context(), capability, params)
	} else {
		result = h.deps.Dispatcher.Dispatch(c.Request.Context(), capability, params)
	}

	// Only an actual execution is audited; a requires_confirmation response
	// has not run anything yet.
	if result.Status != core.StatusRequiresConfirmation {
		if !h.auditDispatch(c, capability, params, result) {
			return
		}
	}
	c.JSON(http.StatusOK, result)
}

// auditDispatch appends the dispatch record, failing the request when the
// audit write fails. Returns false when the response has been written.
func (h ActionHandler) auditDispatch(c *gin.Context, capability string, params map[string]any, result core.Result) bool {
	module, action := capability, capability
	if mod, act, ok := strings.Cut(capability, "."); ok {
		module, action = mod, act
	}
	if _, err := h.deps.AuditLog.Log(module, action, string(result.Status), audit.Entry{
		RequesterID: requester(c),
		Params:      params,
		Result:      result.Message,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "audit write failed: " + err.Error()})
		return false
	}
	return true
}

func (h ActionHandler) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"capabilities": h.deps.Dispatcher.ListCapabilities()})
}

func (h ActionHandler) ClearConversation(c *gin.Context) {
	h.deps.Interpreter.ClearHistory()
	c.JSON(http.StatusOK, gin.H{"message": "conversation history cleared"})
}
