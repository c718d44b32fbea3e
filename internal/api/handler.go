package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ashhhleyyy/gitit/internal/browse"
	"github.com/ashhhleyyy/gitit/internal/config"
	"github.com/ashhhleyyy/gitit/internal/errors"
	"github.com/ashhhleyyy/gitit/internal/gitstore"
	"github.com/ashhhleyyy/gitit/internal/mirror"
)

// ErrorResponse is the JSON shape of an API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// RepoResponse is one repository in the listing, config plus mirror state
type RepoResponse struct {
	Name   string       `json:"name"`
	Title  string       `json:"title"`
	URL    string       `json:"url"`
	Status mirror.State `json:"status"`
}

// webhookPayload is the minimal shape shared by GitHub/Gitea style push
// payloads; authentication is handled before this layer.
type webhookPayload struct {
	Repository struct {
		Name string `json:"name"`
	} `json:"repository"`
}

// Handler serves the read-only browsing API and the sync trigger surface
type Handler struct {
	browser *browse.Service
	syncer  mirror.Syncer
	cfg     *config.Config
	logger  *logrus.Logger
}

// NewHandler creates an API handler
func NewHandler(browser *browse.Service, syncer mirror.Syncer, cfg *config.Config, logger *logrus.Logger) *Handler {
	return &Handler{
		browser: browser,
		syncer:  syncer,
		cfg:     cfg,
		logger:  logger,
	}
}

// ListRepositories returns all configured repositories with mirror state
func (h *Handler) ListRepositories(c *gin.Context) {
	repos := make([]RepoResponse, 0, len(h.cfg.Repos))
	for _, repo := range h.cfg.Repos {
		status, err := h.browser.MirrorStatus(repo.Name)
		if err != nil {
			h.respondError(c, err)
			return
		}
		repos = append(repos, RepoResponse{
			Name:   repo.Name,
			Title:  repo.Title,
			URL:    repo.URL,
			Status: status,
		})
	}
	c.JSON(http.StatusOK, repos)
}

// GetMirrorStatus returns the mirror state of one repository
func (h *Handler) GetMirrorStatus(c *gin.Context) {
	status, err := h.browser.MirrorStatus(c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetCommitLog returns the commit log for a ref (default HEAD)
func (h *Handler) GetCommitLog(c *gin.Context) {
	ref := c.DefaultQuery("ref", "HEAD")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit parameter"})
		return
	}
	commits, err := h.browser.CommitLog(c.Param("name"), ref, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commits)
}

// GetCommit returns a single commit with patch and diffstat
func (h *Handler) GetCommit(c *gin.Context) {
	detail, err := h.browser.Commit(c.Param("name"), c.Param("hash"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetDiff returns the changed paths between two commits
func (h *Handler) GetDiff(c *gin.Context) {
	changes, err := h.browser.Diff(c.Param("name"), c.Param("a"), c.Param("b"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if changes == nil {
		changes = []gitstore.Change{}
	}
	c.JSON(http.StatusOK, changes)
}

// GetTree returns the directory listing at a path under a ref
func (h *Handler) GetTree(c *gin.Context) {
	entries, err := h.browser.ListDirectory(c.Param("name"), c.Param("ref"), treePath(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetBlob serves the raw bytes of a file at a path under a ref
func (h *Handler) GetBlob(c *gin.Context) {
	file, err := h.browser.ReadFile(c.Param("name"), c.Param("ref"), treePath(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if file.Binary {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, file.Content)
}

// SyncRepository triggers a sync of one repository
func (h *Handler) SyncRepository(c *gin.Context) {
	result, err := h.syncer.SyncByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncAllRepositories triggers a sync of every configured repository
func (h *Handler) SyncAllRepositories(c *gin.Context) {
	results := h.syncer.SyncAll(c.Request.Context())
	type entry struct {
		Name   string             `json:"name"`
		Result *mirror.SyncResult `json:"result,omitempty"`
		Error  string             `json:"error,omitempty"`
	}
	out := make([]entry, 0, len(results))
	for _, r := range results {
		e := entry{Name: r.Name, Result: r.Result}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, out)
}

// Webhook resyncs the repository named in a push payload
func (h *Handler) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Repository.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing repository name in payload"})
		return
	}

	// the sync outlives this request, so it gets its own context
	name := payload.Repository.Name
	go func() {
		if _, err := h.syncer.SyncByName(context.Background(), name); err != nil {
			if !errors.IsSyncInProgress(err) {
				h.logger.WithError(err).WithField("repository", name).Error("Webhook sync failed")
			}
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "sync triggered", "repository": name})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrRepoNotFound, errors.ErrRefNotFound, errors.ErrObjectNotFound,
		errors.ErrPathNotFound, errors.ErrNotADirectory:
		status = http.StatusNotFound
	case errors.ErrSyncInProgress:
		status = http.StatusConflict
	case errors.ErrRepoNotSynced:
		status = http.StatusServiceUnavailable
	case errors.ErrSync:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("Request failed")
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func treePath(c *gin.Context) string {
	return strings.Trim(c.Param("path"), "/")
}
