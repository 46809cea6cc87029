package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

type feedRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type targetRequest struct {
	SiteURL    string `json:"siteUrl"`
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

// TargetResponse describes the publish target without its credential.
type TargetResponse struct {
	Configured bool   `json:"configured"`
	SiteURL    string `json:"siteUrl,omitempty"`
	Username   string `json:"username,omitempty"`
}

func (s *Server) listFeeds(c *gin.Context) {
	feeds, err := s.store.ListFeeds(c.Request.Context())
	if err != nil {
		log.Printf("Error listing feeds: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if feeds == nil {
		feeds = []model.FeedSource{}
	}
	c.JSON(http.StatusOK, feeds)
}

func (s *Server) addFeed(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	feed, err := s.store.AddFeed(c.Request.Context(), req.URL, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feed)
}

func (s *Server) removeFeed(c *gin.Context) {
	if err := s.store.RemoveFeed(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getTarget(c *gin.Context) {
	target, err := s.store.GetPublishTarget(c.Request.Context())
	if err != nil {
		log.Printf("Error loading publish target: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, targetResponse(target))
}

func (s *Server) putTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	target, err := model.NewPublishTarget(req.SiteURL, req.Username, req.Credential)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.SavePublishTarget(c.Request.Context(), target); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, targetResponse(&target))
}

func (s *Server) listLog(c *gin.Context) {
	limit := model.LogRetention
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	entries, err := s.store.ListLog(c.Request.Context(), limit)
	if err != nil {
		log.Printf("Error listing log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) run(c *gin.Context) {
	res := s.trigger(c.Request.Context())
	if res.Entries == nil {
		res.Entries = []model.LogEntry{}
	}
	c.JSON(http.StatusOK, res)
}

func targetResponse(t *model.PublishTarget) TargetResponse {
	if t == nil {
		return TargetResponse{}
	}
	return TargetResponse{Configured: true, SiteURL: t.SiteURL, Username: t.Username}
}

func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": verr.Fields})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		log.Printf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}
