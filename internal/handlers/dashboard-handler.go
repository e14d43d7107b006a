package handlers

import (
	"context"
	"net/http"
	"strconv"

	"casr-tracker/internal/models"
	"casr-tracker/internal/search"
	"casr-tracker/internal/services"
	"casr-tracker/internal/table"
)

type ActivityStore interface {
	List(ctx context.Context, tenant string, f services.ActivityFilter) ([]models.ActivityLog, error)
}

type UserStore interface {
	List(ctx context.Context, tenant string) ([]models.User, error)
}

// Searcher is implemented by *search.Index.
type Searcher interface {
	Search(tenant, query string, groupLimit int) []search.Group
}

type ActivityHandler struct {
	Activity ActivityStore
}

func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	logs, err := h.Activity.List(r.Context(), tenant, services.ActivityFilter{
		ProjectID: q.Get("projectId"),
		Actor:     q.Get("actor"),
		Type:      models.ActivityType(q.Get("type")),
		Limit:     limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityTable.Apply(logs, table.ParseState(q)))
}

type UserHandler struct {
	Users UserStore
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	users, err := h.Users.List(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userTable.Apply(users, table.ParseState(r.URL.Query())))
}

type SearchHandler struct {
	Index Searcher
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = search.DefaultGroupLimit
	}
	groups := h.Index.Search(tenant, r.URL.Query().Get("q"), limit)
	if groups == nil {
		groups = []search.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}
