package server

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/TobiSchelling/FeedPress/internal/model"
)

func (s *Server) handleIndex(c *gin.Context) {
	ctx := c.Request.Context()

	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		log.Printf("Error listing feeds: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	target, err := s.store.GetPublishTarget(ctx)
	if err != nil {
		log.Printf("Error loading publish target: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	entries, err := s.store.ListLog(ctx, model.LogRetention)
	if err != nil {
		log.Printf("Error listing log: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "base.html", gin.H{
		"Feeds":   feeds,
		"Target":  target,
		"Entries": entries,
		"Message": c.Query("msg"),
		"Error":   c.Query("err"),
	})
}

func (s *Server) handleAddFeedForm(c *gin.Context) {
	_, err := s.store.AddFeed(c.Request.Context(), c.PostForm("url"), c.PostForm("name"))
	if err != nil {
		redirect(c, "", formError(err, "Failed to add feed."))
		return
	}
	redirect(c, "Feed added successfully.", "")
}

func (s *Server) handleDeleteFeedForm(c *gin.Context) {
	if err := s.store.RemoveFeed(c.Request.Context(), c.Param("id")); err != nil {
		log.Printf("Error removing feed %s: %v", c.Param("id"), err)
		redirect(c, "", "Failed to remove feed.")
		return
	}
	redirect(c, "Feed removed successfully.", "")
}

func (s *Server) handleTargetForm(c *gin.Context) {
	target, err := model.NewPublishTarget(c.PostForm("siteUrl"), c.PostForm("username"), c.PostForm("credential"))
	if err != nil {
		redirect(c, "", formError(err, "Invalid WordPress configuration."))
		return
	}
	if err := s.store.SavePublishTarget(c.Request.Context(), target); err != nil {
		log.Printf("Error saving publish target: %v", err)
		redirect(c, "", "Failed to save WordPress configuration.")
		return
	}
	redirect(c, "WordPress configuration saved.", "")
}

func (s *Server) handleRunForm(c *gin.Context) {
	res := s.trigger(c.Request.Context())
	if !res.Success {
		redirect(c, "", res.Message)
		return
	}
	redirect(c, res.Message, "")
}

func redirect(c *gin.Context, msg, errMsg string) {
	q := url.Values{}
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

func formError(err error, fallback string) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	log.Printf("%s %v", fallback, err)
	return fallback
}
