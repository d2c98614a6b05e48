package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shapedtime/fmp4segmenter/internal/publish"
)

// Server is the HTTP delivery layer over a publish.Session. It is an
// external collaborator in the sense spec.md describes: the segmenter
// core has no notion of HTTP, this package only routes requests back
// into the Session's read accessors using the load-bearing URI
// convention from spec.md §6 (init-<hlsBase>.mp4, <hlsBase><seq>.m4s).
type Server struct {
	router  *gin.Engine
	session *publish.Session
	hlsBase string
	hub     *wsHub
}

// NewServer creates an HTTP server for the given session. hlsBase must
// match the Options.HLSBase the session was constructed with, so that
// incoming paths can be matched back to it.
func NewServer(session *publish.Session, hlsBase string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		session: session,
		hlsBase: hlsBase,
		hub:     newWSHub(),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.wireSegmentNotifications()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	s.router.Use(func(c *gin.Context) {
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	})
}

func (s *Server) setupRoutes() {
	s.router.GET("/status", s.getStatus)
	s.router.GET("/ws", s.serveWS)

	// The init/playlist/segment URIs share one filename stem (hlsBase) and
	// are not separable into static-prefix + param routes that gin's tree
	// can express cleanly (a root catch-all cannot sit beside /status and
	// /ws), so every path without a route of its own reaches a single
	// fallback handler that applies the load-bearing naming convention
	// from spec.md §6 (init-<hlsBase>.mp4, <hlsBase><sequence>.m4s,
	// <hlsBase>.m3u8) by hand.
	s.router.NoRoute(s.dispatchByFilename)
}

func (s *Server) dispatchByFilename(c *gin.Context) {
	name := strings.TrimPrefix(c.Request.URL.Path, "/")

	switch {
	case c.Request.Method != http.MethodGet:
		c.Status(http.StatusNotFound)
	case name == "init-"+s.hlsBase+".mp4":
		s.getInitSegment(c)
	case name == s.hlsBase+".m3u8":
		s.getPlaylist(c)
	case strings.HasPrefix(name, s.hlsBase) && strings.HasSuffix(name, ".m4s"):
		seq := strings.TrimSuffix(strings.TrimPrefix(name, s.hlsBase), ".m4s")
		s.getMediaSegment(c, seq)
	default:
		c.Status(http.StatusNotFound)
	}
}

// getInitSegment serves the concatenated ftyp+moov initialization blob.
// GET /init-<hlsBase>.mp4
func (s *Server) getInitSegment(c *gin.Context) {
	blob := s.session.Initialization()
	if blob == nil {
		errorResponse(c, http.StatusNotFound, "initialization segment not available")
		return
	}
	c.Data(http.StatusOK, s.mimeOrDefault(), blob)
}

// getMediaSegment serves one moof+mdat segment by sequence number.
// GET /<hlsBase><sequence>.m4s
func (s *Server) getMediaSegment(c *gin.Context, seq string) {
	data := s.session.GetHlsSegment(seq)
	if data == nil {
		errorResponse(c, http.StatusNotFound, "segment not in ring")
		return
	}
	c.Data(http.StatusOK, "video/mp4", data)
}

// getPlaylist serves the current M3U8 text.
// GET /<hlsBase>.m3u8
func (s *Server) getPlaylist(c *gin.Context) {
	playlist := s.session.M3U8()
	if playlist == "" {
		errorResponse(c, http.StatusNotFound, "playlist not available")
		return
	}
	c.String(http.StatusOK, playlist)
}

// getStatus reports basic session state for operational visibility.
// GET /status
func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mime":      s.session.Mime(),
		"sequence":  s.session.Sequence(),
		"duration":  s.session.Duration(),
		"timestamp": s.session.Timestamp(),
	})
}

func (s *Server) mimeOrDefault() string {
	if m := s.session.Mime(); m != "" {
		return m
	}
	return "video/mp4"
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
