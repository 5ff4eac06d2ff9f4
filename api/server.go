package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/matt-g-everett/ledcount/anim"
)

// Counters is the view of the counters the API serves.
type Counters interface {
	Snapshots() []anim.Snapshot
	Snapshot(name string) (anim.Snapshot, error)
	Restart(name string) error
}

type Api struct {
	addr     string
	counters Counters
	mux      *http.ServeMux
}

func NewApi(addr string, counters Counters) *Api {
	a := new(Api)
	a.addr = addr
	a.counters = counters
	a.mux = http.NewServeMux()
	a.mux.HandleFunc("GET /counters", a.handleList)
	a.mux.HandleFunc("GET /counters/{name}", a.handleGet)
	a.mux.HandleFunc("POST /counters/{name}/restart", a.handleRestart)
	return a
}

// Handler returns the HTTP routes.
func (a *Api) Handler() http.Handler {
	return a.mux
}

func (a *Api) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.counters.Snapshots())
}

func (a *Api) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := a.counters.Snapshot(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *Api) handleRestart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := a.counters.Restart(name); err != nil {
		writeError(w, err)
		return
	}
	log.Printf("Restarted counter %s", name)
	w.WriteHeader(http.StatusAccepted)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, anim.ErrUnknownCounter) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println(err)
	}
}

// Serve listens until ctx is done, then shuts down gracefully.
func (a *Api) Serve(ctx context.Context) error {
	server := &http.Server{Addr: a.addr, Handler: a.mux}

	errs := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s...", a.addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
