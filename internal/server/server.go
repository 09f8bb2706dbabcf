package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openfoia/foiagraph/internal/core"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/store"
)

type Server struct {
	Pipeline *core.Pipeline
	// ImageRoot is the only tree image_dir may name. Empty rejects image_dir.
	ImageRoot string
	logger    *zap.Logger
}

func New(p *core.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Pipeline: p, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/documents", s.ProcessDocument)
	r.POST("/documents/batch", s.ProcessBatch)
	r.GET("/documents/:id", s.GetDocument)

	r.GET("/graph", s.ExportGraph)
	r.POST("/graph/save", s.SaveGraph)
	r.GET("/graph/communities", s.Communities)
	r.GET("/graph/entities/:id/documents", s.DocumentsMentioning)

	r.POST("/redactions", s.ScanRedactions)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

type DocumentRequest struct {
	ID       string       `json:"id"`
	Context  string       `json:"context"`
	Text     string       `json:"text"`
	Pages    []model.Page `json:"pages"`
	ImageDir string       `json:"image_dir"`
}

func (s *Server) toDocument(r DocumentRequest) (model.Document, error) {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	doc := model.Document{ID: id, Context: r.Context, Text: r.Text, Pages: r.Pages}
	if r.ImageDir != "" {
		dir, err := resolveImageDir(s.ImageRoot, r.ImageDir)
		if err != nil {
			return model.Document{}, err
		}
		doc.ImageDir = dir
	}
	return doc, nil
}

func (r DocumentRequest) empty() bool {
	return r.Text == "" && len(r.Pages) == 0
}

func (s *Server) ProcessDocument(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: text or pages required"})
		return
	}

	doc, err := s.toDocument(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.Pipeline.ProcessDocument(c.Request.Context(), doc)
	if err != nil {
		s.logger.Error("Failed to process document", zap.String("doc_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process document"})
		return
	}

	c.JSON(http.StatusOK, res)
}

type BatchRequest struct {
	Documents []DocumentRequest `json:"documents"`
}

type BatchResponse struct {
	Results []*core.DocumentResult `json:"results"`
	Errors  []string               `json:"errors,omitempty"`
}

func (s *Server) ProcessBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Documents) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: documents required"})
		return
	}

	docs := make([]model.Document, len(req.Documents))
	for i, d := range req.Documents {
		if d.empty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: every document needs text or pages"})
			return
		}
		doc, err := s.toDocument(d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		docs[i] = doc
	}

	results, err := s.Pipeline.ProcessBatch(c.Request.Context(), docs)
	resp := BatchResponse{Results: results}
	if err != nil {
		s.logger.Warn("Batch completed with failures", zap.Error(err))
		resp.Errors = splitJoined(err)
	}
	c.JSON(http.StatusOK, resp)
}

func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func (s *Server) GetDocument(c *gin.Context) {
	rec, err := s.Pipeline.GetDocument(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	case errors.Is(err, core.ErrNoDocumentStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document store not configured"})
		return
	case err != nil:
		s.logger.Error("Failed to load document", zap.String("doc_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) ExportGraph(c *gin.Context) {
	c.JSON(http.StatusOK, s.Pipeline.ExportGraph())
}

func (s *Server) SaveGraph(c *gin.Context) {
	err := s.Pipeline.SaveGraph(c.Request.Context())
	switch {
	case errors.Is(err, core.ErrNoGraphStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph store not configured"})
		return
	case err != nil:
		s.logger.Error("Failed to save graph", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save graph"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) Communities(c *gin.Context) {
	communities := s.Pipeline.Communities()
	if communities == nil {
		communities = []model.Community{}
	}
	c.JSON(http.StatusOK, gin.H{"communities": communities})
}

func (s *Server) DocumentsMentioning(c *gin.Context) {
	id := c.Param("id")
	docs, err := s.Pipeline.DocumentsMentioning(c.Request.Context(), id)
	switch {
	case errors.Is(err, core.ErrUnknownEntity):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	case errors.Is(err, core.ErrNoDocumentStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document store not configured"})
		return
	case err != nil:
		s.logger.Error("Failed to list documents for entity", zap.String("canonical_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"canonical_id": id, "documents": docs})
}

type RedactionRequest struct {
	Text string `json:"text"`
}

func (s *Server) ScanRedactions(c *gin.Context) {
	var req RedactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Pipeline.Redaction.ScanText(req.Text))
}
