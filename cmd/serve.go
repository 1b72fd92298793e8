package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/whiterabbit74/kinopub-wnldr/internal/engine"
	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local HTTP API for downloads",
	Long: `serve starts a local HTTP server so other tools can list tracks, start
downloads and poll their progress. The server binds to 127.0.0.1 only.`,
	Run: func(cmd *cobra.Command, args []string) {
		isMaster, err := AcquireLock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error acquiring lock: %v\n", err)
			os.Exit(1)
		}
		if !isMaster {
			fmt.Fprintln(os.Stderr, "Error: another instance is already serving.")
			os.Exit(1)
		}
		defer ReleaseLock()

		port, _ := cmd.Flags().GetInt("port")
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not bind to port %d: %v\n", port, err)
			os.Exit(1)
		}

		orch, store, rc := buildOrchestrator()
		if store != nil {
			defer store.Close()
		}
		manager := engine.NewManager(orch, rc.MaxConcurrentJobs)

		srv := &http.Server{Handler: newAPIHandler(orch, manager, rc.DefaultDownloadDir, rc.DefaultThreads)}
		fmt.Printf("Listening on http://%s\n", ln.Addr())
		utils.Debug("HTTP API on %s", ln.Addr())
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

type downloadRequest struct {
	Source     string `json:"source"`
	VideoIndex int    `json:"video_index"`
	AudioIndex int    `json:"audio_index"`
	OutputDir  string `json:"output_dir"`
	Filename   string `json:"filename"`
	Threads    int    `json:"threads"`
}

func newAPIHandler(orch *engine.Orchestrator, manager *engine.Manager, defaultDir string, defaultThreads int) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
	})

	mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
		source := r.URL.Query().Get("source")
		if source == "" {
			writeError(w, http.StatusBadRequest, "missing source parameter")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
		defer cancel()

		catalog, err := orch.ListTracks(ctx, source)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, catalog)
	})

	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var req downloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.OutputDir == "" {
			req.OutputDir = defaultDir
		}
		if req.Filename == "" {
			req.Filename = "video"
		}
		if req.Threads <= 0 {
			req.Threads = defaultThreads
		}

		id, err := manager.Start(&engine.Job{
			Source:     req.Source,
			VideoIndex: req.VideoIndex,
			AudioIndex: req.AudioIndex,
			OutputDir:  req.OutputDir,
			Filename:   req.Filename,
			Threads:    req.Threads,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		state, ok := manager.Status(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown job id")
			return
		}
		writeJSON(w, http.StatusOK, state)
	})

	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.List())
	})

	mux.HandleFunc("/cancel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		id := r.URL.Query().Get("id")
		if !manager.Cancel(id) {
			writeError(w, http.StatusNotFound, "unknown job id")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "cancelling"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8654, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
