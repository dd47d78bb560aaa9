package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glossaudio/internal/cdrstore"
	"glossaudio/internal/config"
	"glossaudio/internal/testsupport"
)

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*Server, *config.Config, *cdrstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	return NewServer(cfg, store, nil), cfg, store
}

func postRun(s *Server, user string, archives ...string) *httptest.ResponseRecorder {
	form := url.Values{}
	for _, name := range archives {
		form.Add("archive", name)
	}
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, map[string]any{"status": "healthy"}, body["database"])
}

func TestFormListsArchives(t *testing.T) {
	s, cfg, store := newTestServer(t)
	testsupport.GrantImport(t, store)
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10_r2.zip")
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10_r1.zip")
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_09.zip")

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	first := strings.Index(body, `value="Week_2024_10_r1.zip"`)
	second := strings.Index(body, `value="Week_2024_10_r2.zip"`)
	assert.True(t, first > 0 && second > first, "archives missing or out of order:\n%s", body)
	assert.NotContains(t, body, "Week_2024_09.zip")
	assert.Contains(t, body, "Session: tester")
}

func TestFormRequiresPermissions(t *testing.T) {
	s, cfg, store := newTestServer(t, testsupport.WithTrustedUserHeader())
	testsupport.GrantImport(t, store)
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10.zip")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "visitor")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "visitor")
	assert.NotContains(t, w.Body.String(), `name="archive"`)
}

func TestUserHeaderIgnoredUnlessTrusted(t *testing.T) {
	s, cfg, store := newTestServer(t)
	testsupport.GrantImport(t, store)
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10.zip")
	// A grant for another account must not be reachable through the header.
	require.NoError(t, store.Grant(t.Context(), "mallory", testsupport.ImportPermissions...))
	require.NoError(t, store.Revoke(t.Context(), "tester", testsupport.ImportPermissions[3]))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "mallory")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "tester")
	assert.NotContains(t, w.Body.String(), "mallory")

	w = postRun(s, "mallory", "Week_2024_10.zip")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), `class="report"`)
}

func TestTrustedUserHeaderSelectsAccount(t *testing.T) {
	s, cfg, store := newTestServer(t, testsupport.WithTrustedUserHeader())
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10.zip")
	require.NoError(t, store.Grant(t.Context(), "operator", testsupport.ImportPermissions...))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserHeader, "operator")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Session: operator")
}

func TestFormWithoutBatch(t *testing.T) {
	s, _, store := newTestServer(t)
	testsupport.GrantImport(t, store)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no batch found")
}

func TestRunRendersReport(t *testing.T) {
	s, cfg, store := newTestServer(t)
	testsupport.GrantImport(t, store)
	docID := testsupport.SeedGlossary(t, store, testsupport.GlossaryName{English: "alpha"})
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10.zip",
		testsupport.ManifestEntry{DocID: docID, Term: "alpha", Language: "English", Filename: "alpha.mp3"})

	w := postRun(s, "", "Week_2024_10.zip")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `class="report"`)
	assert.Contains(t, body, fmt.Sprintf("created Media doc for CDR%d (alpha [en]) from Week_2024_10.zip", docID))
	assert.Contains(t, body, "Adding link from this document to Media document")
	assert.Contains(t, body, "1 created")
}

func TestRunRejectsBadSubmissions(t *testing.T) {
	s, cfg, store := newTestServer(t, testsupport.WithTrustedUserHeader())
	testsupport.GrantImport(t, store)
	testsupport.WriteWeekArchive(t, cfg.Paths.DropDir, "Week_2024_10.zip")

	tests := []struct {
		name     string
		user     string
		archives []string
		status   int
	}{
		{"nothing submitted", "", nil, http.StatusBadRequest},
		{"path traversal", "", []string{"../Week_2024_10.zip"}, http.StatusBadRequest},
		{"wrong pattern", "", []string{"notes.zip"}, http.StatusBadRequest},
		{"missing archive", "", []string{"Week_2024_11.zip"}, http.StatusNotFound},
		{"unauthorized user", "visitor", []string{"Week_2024_10.zip"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRun(s, tt.user, tt.archives...)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), `class="report"`)
		})
	}
}
