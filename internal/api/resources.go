package api

import (
	"context"
	"net/http"

	"trailhead/internal/models"
)

// resourceService is the CRUD surface every catalog service exposes.
type resourceService[T any] interface {
	List(ctx context.Context, q models.ListQuery) ([]T, int, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, id int64, record *T) error
	Delete(ctx context.Context, id int64) error
}

type resource[T any] struct {
	plural   string
	singular string
	svc      resourceService[T]
}

// registerResource mounts list/get/create/update/delete under /api/<plural>.
// Writes require an admin token.
func registerResource[T any](mux *http.ServeMux, auth *Authenticator, plural, singular string, svc resourceService[T]) {
	res := &resource[T]{plural: plural, singular: singular, svc: svc}
	base := "/api/" + plural

	mux.HandleFunc("GET "+base, res.list)
	mux.HandleFunc("GET "+base+"/{id}", res.get)
	mux.HandleFunc("POST "+base, auth.Require(res.create))
	mux.HandleFunc("PUT "+base+"/{id}", auth.Require(res.update))
	mux.HandleFunc("DELETE "+base+"/{id}", auth.Require(res.remove))
}

func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	items, total, err := res.svc.List(r.Context(), q)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		res.plural: items,
		"total":    total,
		"limit":    q.Limit,
		"offset":   q.Offset,
	})
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	record, err := res.svc.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	res.writeRecord(w, http.StatusOK, record)
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	var record T
	if err := decodeJSON(w, r, &record); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := res.svc.Create(r.Context(), &record); err != nil {
		writeFailure(w, r, err)
		return
	}
	res.writeRecord(w, http.StatusCreated, &record)
}

func (res *resource[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var record T
	if err := decodeJSON(w, r, &record); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := res.svc.Update(r.Context(), id, &record); err != nil {
		writeFailure(w, r, err)
		return
	}

	stored, err := res.svc.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	res.writeRecord(w, http.StatusOK, stored)
}

func (res *resource[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := res.svc.Delete(r.Context(), id); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (res *resource[T]) writeRecord(w http.ResponseWriter, status int, record *T) {
	writeJSON(w, status, map[string]any{"success": true, res.singular: record})
}
