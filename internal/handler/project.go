package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foliohq/folio/internal/auth"
	"github.com/foliohq/folio/internal/store"
)

type ProjectHandler struct {
	projects *store.ProjectStore
	logger   *slog.Logger
}

func NewProjectHandler(projects *store.ProjectStore, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type projectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Thumbnail    string   `json:"thumbnail"`
}

func (req *projectRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return "title is required"
	case strings.TrimSpace(req.Description) == "":
		return "description is required"
	}
	return ""
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, KindUnauthorized, "User not authenticated")
		return
	}

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, msg)
		return
	}

	project, err := h.projects.Create(userID, req.Title, req.Description, req.Technologies, req.Thumbnail)
	if err != nil {
		h.logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List()
	if err != nil {
		h.logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, KindUnauthorized, "User not authenticated")
		return
	}

	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidInput, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, KindInvalidInput, msg)
		return
	}

	project, err := h.projects.Update(r.PathValue("id"), userID, req.Title, req.Description, req.Technologies, req.Thumbnail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, KindNotFound, "Project not found")
			return
		}
		h.logger.Error("update project", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, KindUnauthorized, "User not authenticated")
		return
	}

	if err := h.projects.Delete(r.PathValue("id"), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, KindNotFound, "Project not found")
			return
		}
		h.logger.Error("delete project", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}
