package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"casr-tracker/internal/table"
	"casr-tracker/internal/validation"
)

// RecordStore is implemented by services.RecordService.
type RecordStore[T any] interface {
	Name() string
	List(ctx context.Context, tenant string) ([]T, error)
	Get(ctx context.Context, tenant, id string) (*T, error)
	Create(ctx context.Context, tenant, actor string, rec *T) error
	Update(ctx context.Context, tenant, actor, id string, rec *T) error
	Delete(ctx context.Context, tenant, actor, id string) error
}

// RecordHandler serves list/get/create/update/delete for one record kind.
// Members may read; managers may write.
type RecordHandler[T any] struct {
	Store     RecordStore[T]
	Table     *table.Table[T]
	Validator *validation.Validator
}

func NewRecordHandler[T any](store RecordStore[T], tbl *table.Table[T], v *validation.Validator) *RecordHandler[T] {
	return &RecordHandler[T]{Store: store, Table: tbl, Validator: v}
}

// Register mounts the handler under prefix, e.g. /api/sanctions.
func (h *RecordHandler[T]) Register(r *mux.Router, prefix string) {
	r.HandleFunc(prefix, h.List).Methods(http.MethodGet)
	r.HandleFunc(prefix, h.Create).Methods(http.MethodPost)
	r.HandleFunc(prefix+"/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc(prefix+"/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc(prefix+"/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *RecordHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	rows, err := h.Store.List(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Table.Apply(rows, table.ParseState(r.URL.Query())))
}

func (h *RecordHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	rec, err := h.Store.Get(r.Context(), tenant, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var rec T
	if !decodeJSON(w, r, &rec) {
		return
	}
	if err := h.Validator.Struct(rec); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.Create(r.Context(), tenant, actor, &rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var rec T
	if !decodeJSON(w, r, &rec) {
		return
	}
	if err := h.Validator.Struct(rec); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.Update(r.Context(), tenant, actor, mux.Vars(r)["id"], &rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), tenant, actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
