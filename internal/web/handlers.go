package web

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"glossaudio/internal/logging"
	"glossaudio/internal/pipeline"
	"glossaudio/internal/report"
	"glossaudio/internal/services"
)

type page struct {
	User         string
	Error        string
	Instructions string
	Archives     []string
	Report       template.HTML
	Summary      string
}

// user is the configured session account, or the UserHeader value when the
// config trusts a fronting proxy to set it.
func (s *Server) user(c *gin.Context) string {
	if !s.cfg.Server.TrustUserHeader {
		return s.cfg.Session.User
	}
	if user := strings.TrimSpace(c.GetHeader(UserHeader)); user != "" {
		return user
	}
	return s.cfg.Session.User
}

func (s *Server) form(c *gin.Context) {
	user := s.user(c)
	p, err := s.newPipeline(user)
	if err != nil {
		s.fail(c, user, err, nil)
		return
	}
	plan, err := p.Plan(c.Request.Context())
	if err != nil {
		s.fail(c, user, err, nil)
		return
	}
	c.HTML(http.StatusOK, "page.html", page{
		User:         user,
		Instructions: pipeline.Instructions,
		Archives:     plan.Archives,
	})
}

func (s *Server) run(c *gin.Context) {
	user := s.user(c)
	var archives []string
	for _, name := range c.PostFormArray("archive") {
		if name = strings.TrimSpace(name); name != "" {
			archives = append(archives, name)
		}
	}
	if len(archives) == 0 {
		c.HTML(http.StatusBadRequest, "page.html", page{User: user, Error: "no archives submitted"})
		return
	}

	p, err := s.newPipeline(user)
	if err != nil {
		s.fail(c, user, err, nil)
		return
	}
	rep, err := p.Run(c.Request.Context(), archives)
	if err != nil {
		s.fail(c, user, err, rep)
		return
	}
	c.HTML(http.StatusOK, "page.html", s.reportPage(user, rep))
}

func (s *Server) health(c *gin.Context) {
	response := gin.H{"status": "ok"}
	if _, _, err := s.store.Setting(c.Request.Context(), "glossaudio", "health"); err != nil {
		response["status"] = "degraded"
		response["database"] = gin.H{"status": "unhealthy", "error": err.Error()}
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	response["database"] = gin.H{"status": "healthy"}
	c.JSON(http.StatusOK, response)
}

func (s *Server) reportPage(user string, rep *report.Report) page {
	pg := page{User: user}
	if rep == nil || rep.Len() == 0 {
		return pg
	}
	var b strings.Builder
	if err := rep.RenderHTML(&b); err == nil {
		pg.Report = template.HTML(b.String())
		pg.Summary = rep.Summary()
	}
	return pg
}

func (s *Server) fail(c *gin.Context, user string, err error, rep *report.Report) {
	status := statusFor(err)
	logging.WarnWithContext(s.logger, "request failed", services.Kind(err),
		logging.String("user", user),
		logging.Int("status", status),
		logging.Error(err),
	)
	pg := s.reportPage(user, rep)
	pg.Error = err.Error()
	c.HTML(status, "page.html", pg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrImportRunning):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoBatchFound), errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConfiguration), errors.Is(err, services.ErrManifestMissing):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
