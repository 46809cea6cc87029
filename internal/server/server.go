package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/FeedPress/internal/model"
	"github.com/TobiSchelling/FeedPress/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Store is the persistent state the dashboard reads and edits.
type Store interface {
	ListFeeds(ctx context.Context) ([]model.FeedSource, error)
	AddFeed(ctx context.Context, url, name string) (model.FeedSource, error)
	RemoveFeed(ctx context.Context, id string) error
	GetPublishTarget(ctx context.Context) (*model.PublishTarget, error)
	SavePublishTarget(ctx context.Context, target model.PublishTarget) error
	ListLog(ctx context.Context, limit int) ([]model.LogEntry, error)
}

// Runner triggers a processing run.
type Runner interface {
	Run(ctx context.Context) *pipeline.Result
}

// Server is the HTTP server for the dashboard and JSON API.
type Server struct {
	store  Store
	runner Runner
	engine *gin.Engine

	// runMu keeps two triggers in this process from interleaving.
	runMu sync.Mutex
}

// New creates a new Server. corsOrigins lists the origins allowed to call
// the JSON API from a browser; empty disables CORS handling.
func New(store Store, runner Runner, corsOrigins []string) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"ago":      humanize.Time,
		"deref": func(b *bool) bool {
			return b != nil && *b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		engine.Use(gin.Logger())
	}
	if len(corsOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}
	engine.SetHTMLTemplate(tmpl)

	s := &Server{store: store, runner: runner, engine: engine}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.engine.StaticFS("/static", http.FS(staticSub))

	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/feeds/add", s.handleAddFeedForm)
	s.engine.POST("/feeds/:id/delete", s.handleDeleteFeedForm)
	s.engine.POST("/target", s.handleTargetForm)
	s.engine.POST("/run", s.handleRunForm)

	api := s.engine.Group("/api")
	api.GET("/feeds", s.listFeeds)
	api.POST("/feeds", s.addFeed)
	api.DELETE("/feeds/:id", s.removeFeed)
	api.GET("/target", s.getTarget)
	api.PUT("/target", s.putTarget)
	api.GET("/log", s.listLog)
	api.POST("/run", s.run)
}

// trigger runs the pipeline with the run lock held. The run outlives a
// disconnected client.
func (s *Server) trigger(ctx context.Context) *pipeline.Result {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runner.Run(context.WithoutCancel(ctx))
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(store Store, runner Runner, corsOrigins []string, port int) error {
	srv, err := New(store, runner, corsOrigins)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
