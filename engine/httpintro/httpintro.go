// Package httpintro exposes the engine's introspection surface over
// HTTP+JSON, for scripts and tests that want to drive it without a
// terminal — the non-TUI counterpart to cmd/inspect.
package httpintro

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lanewayhq/laneway/engine"
)

// Handler serves the introspection surface for one *engine.Database.
//
// Thread Safety: Handler holds no mutable state of its own; every
// request reads straight through to the Database, which is safe for
// concurrent use.
type Handler struct {
	db *engine.Database
}

// NewHandler wraps db for HTTP introspection.
func NewHandler(db *engine.Database) *Handler {
	return &Handler{db: db}
}

// RegisterHandlers registers the introspection endpoints on mux under
// prefix (default "/debug/engine" if empty):
//
//	GET {prefix}/revision             -> {"revision": N}
//	GET {prefix}/derived               -> ["derived(name)sig", ...]
//	GET {prefix}/keys?id=...           -> [key, ...] for one DerivedId
//	GET {prefix}/entry?id=...&key=...  -> EntrySnapshot for one (id, key)
func (h *Handler) RegisterHandlers(mux *http.ServeMux, prefix string) {
	if prefix == "" {
		prefix = "/debug/engine"
	}
	if prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}

	mux.HandleFunc(prefix+"/revision", h.serveRevision)
	mux.HandleFunc(prefix+"/derived", h.serveDerivedIds)
	mux.HandleFunc(prefix+"/keys", h.serveKeys)
	mux.HandleFunc(prefix+"/entry", h.serveEntry)
}

func checkMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) serveRevision(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}
	writeJSON(w, map[string]engine.Revision{"revision": h.db.Revision()})
}

func (h *Handler) serveDerivedIds(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}
	ids := h.db.DerivedIds()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	writeJSON(w, names)
}

// findDerivedId resolves the "id" query parameter (the String() form of
// a DerivedId) against the currently registered set. There is no
// parse-back-to-struct path since DerivedId's fields are unexported by
// design (§9's "stable identity token" re-architecture note) — the
// string form is an opaque label, not a serialization format.
func (h *Handler) findDerivedId(name string) (engine.DerivedId, bool) {
	for _, id := range h.db.DerivedIds() {
		if id.String() == name {
			return id, true
		}
	}
	return engine.DerivedId{}, false
}

func (h *Handler) serveKeys(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}
	name := r.URL.Query().Get("id")
	id, ok := h.findDerivedId(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown derived id %q", name), http.StatusNotFound)
		return
	}
	keys := h.db.Keys(id)
	rendered := make([]string, len(keys))
	for i, k := range keys {
		rendered[i] = fmt.Sprintf("%v", k)
	}
	writeJSON(w, rendered)
}

// entryResponse is the JSON rendering of an engine.EntrySnapshot: string
// forms of the value and each dependency, since arbitrary user value
// types and DependencyKey aren't guaranteed JSON-marshalable as-is.
type entryResponse struct {
	Value        string   `json:"value"`
	Dependencies []string `json:"dependencies"`
	ChangedAt    uint64   `json:"changedAt"`
	VerifiedAt   uint64   `json:"verifiedAt"`
}

func (h *Handler) serveEntry(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r) {
		return
	}
	idName := r.URL.Query().Get("id")
	id, ok := h.findDerivedId(idName)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown derived id %q", idName), http.StatusNotFound)
		return
	}

	keyName := r.URL.Query().Get("key")
	var matchedArgs any
	found := false
	for _, k := range h.db.Keys(id) {
		if fmt.Sprintf("%v", k) == keyName {
			matchedArgs = k
			found = true
			break
		}
	}
	if !found {
		http.Error(w, fmt.Sprintf("no cached key %q for %q", keyName, idName), http.StatusNotFound)
		return
	}

	snap, ok := h.db.Dependencies(id, matchedArgs)
	if !ok {
		http.Error(w, "entry no longer cached", http.StatusNotFound)
		return
	}

	deps := make([]string, len(snap.Dependencies))
	for i, d := range snap.Dependencies {
		deps[i] = d.String()
	}
	writeJSON(w, entryResponse{
		Value:        fmt.Sprintf("%v", snap.Value),
		Dependencies: deps,
		ChangedAt:    uint64(snap.ChangedAt),
		VerifiedAt:   uint64(snap.VerifiedAt),
	})
}
