package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/airwavefm/airwave/internal/pipeline"
	"github.com/airwavefm/airwave/internal/script"
)

type workflowReq struct {
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
	Limit      int      `json:"limit"`
}

// completeWorkflow runs all five pipeline stages and persists the result.
func (s *Server) completeWorkflow(c *gin.Context) {
	userID := currentUser(c)

	var req workflowReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		fail(c, http.StatusBadRequest, "Invalid workflow payload")
		return
	}

	p, err := s.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		s.book.Error("Workflow profile load: %v", err)
		fail(c, http.StatusInternalServerError, "Error loading presenter profile")
		return
	}

	result, err := s.runner.Run(c.Request.Context(), userID, p, pipeline.Options{
		Sources:    req.Sources,
		Categories: req.Categories,
		Limit:      req.Limit,
	})
	if err != nil {
		s.book.Error("Workflow run: %v", err)
		fail(c, http.StatusInternalServerError, "Error executing workflow")
		return
	}

	resp := gin.H{
		"success": true,
		"message": "Complete workflow executed successfully",
		"stats": gin.H{
			"newsItemsFetched":   len(result.RawNews),
			"newsItemsCleaned":   len(result.Cleaned),
			"sectionsGenerated":  len(result.Populated.Sections),
			"teleprompterChunks": len(result.Teleprompter.Chunks),
		},
	}
	if result.Script != nil {
		resp["scriptId"] = result.Script.ID
		resp["teleprompterUrl"] = fmt.Sprintf("/teleprompter?scriptId=%s", result.Script.ID)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listScripts(c *gin.Context) {
	scripts, err := s.scripts.ListByOwner(c.Request.Context(), currentUser(c))
	if err != nil {
		s.book.Error("List scripts: %v", err)
		fail(c, http.StatusInternalServerError, "Error fetching scripts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    scripts,
		"count":   len(scripts),
	})
}

func (s *Server) getScript(c *gin.Context) {
	sc, err := s.scripts.GetForUser(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeScriptError(c, s, err, "Error fetching script")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sc})
}

type deliverReq struct {
	ScriptID string `json:"scriptId"`
}

func (s *Server) deliverScript(c *gin.Context) {
	var req deliverReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ScriptID) == "" {
		fail(c, http.StatusBadRequest, "Script ID is required")
		return
	}
	sc, err := s.scripts.Deliver(c.Request.Context(), req.ScriptID, currentUser(c))
	if err != nil {
		writeScriptError(c, s, err, "Error delivering script")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Script delivered successfully",
		"data":            sc,
		"teleprompterUrl": fmt.Sprintf("/teleprompter?scriptId=%s", sc.ID),
	})
}

func (s *Server) deleteScript(c *gin.Context) {
	err := s.scripts.Delete(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeScriptError(c, s, err, "Error deleting script")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Script deleted"})
}

// writeScriptError maps store errors onto the REST status codes.
func writeScriptError(c *gin.Context, s *Server, err error, fallback string) {
	switch {
	case errors.Is(err, script.ErrNotFound):
		fail(c, http.StatusNotFound, "Script not found")
	case errors.Is(err, script.ErrNotOwner):
		fail(c, http.StatusForbidden, "Unauthorized access")
	default:
		s.book.Error("%s: %v", fallback, err)
		fail(c, http.StatusInternalServerError, fallback)
	}
}
