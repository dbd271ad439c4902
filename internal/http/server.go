package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franoropeza/reportrunner/internal/log"
	"github.com/franoropeza/reportrunner/internal/service"
	"github.com/franoropeza/reportrunner/pkg/storage"
)

// StartServer exposes the recorded run history over HTTP.
func StartServer(port string, store storage.Store) error {
	svc := service.NewHistoryService(store)
	http.HandleFunc("/health", HealthHandler)
	http.HandleFunc("/runs", RunsHandler(svc))
	http.HandleFunc("/runs/", RunByIDHandler(svc))

	log.GetLogger().Infof("Starting reportrunner history server on :%s", port)
	return http.ListenAndServe(":"+port, nil)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "reportrunner server is running")
}

func RunsHandler(svc *service.HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		runs, err := svc.ListRuns()
		if err != nil {
			log.GetLogger().Errorf("Failed to list runs: %v", err)
			writeError(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			log.GetLogger().Errorf("Failed to encode runs: %v", err)
		}
	}
}

func RunByIDHandler(svc *service.HistoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		idStr := strings.TrimPrefix(r.URL.Path, "/runs/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeError(w, fmt.Sprintf("Invalid run ID '%s'", idStr), http.StatusBadRequest)
			return
		}
		run, err := svc.GetRun(id)
		if err == storage.ErrNotFound {
			writeError(w, fmt.Sprintf("Run %d not found", id), http.StatusNotFound)
			return
		}
		if err != nil {
			log.GetLogger().Errorf("Failed to get run %d: %v", id, err)
			writeError(w, fmt.Sprintf("Failed to get run: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(run); err != nil {
			log.GetLogger().Errorf("Failed to encode run: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
