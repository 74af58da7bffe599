package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crm-cleaner/internal/fetcher"
	"github.com/sells-group/crm-cleaner/internal/model"
	"github.com/sells-group/crm-cleaner/internal/queue"
	"github.com/sells-group/crm-cleaner/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload and job status HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var dispatcher queue.Dispatcher
		if cfg.Queue.URL != "" {
			q, err := queue.DialAMQP(cfg.Queue.URL, cfg.Queue.Name)
			if err != nil {
				return err
			}
			dispatcher = q
		} else {
			dispatcher = queue.NewInlinePool(ctx, p, cfg.Worker.MaxConcurrentJobs)
		}
		defer dispatcher.Close() //nolint:errcheck

		if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
			return eris.Wrap(err, "create upload dir")
		}

		mux := newMux(st, dispatcher, cfg.Upload.Dir)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go shutdownOnDone(ctx, srv, 10*time.Second)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// shutdownOnDone waits for ctx to be cancelled, then shuts the server down
// with its own grace period. The signal context is already cancelled at that
// point, so it must not bound the drain.
func shutdownOnDone(ctx context.Context, srv *http.Server, grace time.Duration) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

func newMux(st store.Store, dispatcher queue.Dispatcher, uploadDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error":"file field is required"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if !fetcher.SupportedExt(header.Filename) {
			http.Error(w, `{"error":"only .csv and .xlsx files are supported"}`, http.StatusBadRequest)
			return
		}

		// Persist under a fresh name so concurrent uploads of the same
		// filename never collide.
		dst := filepath.Join(uploadDir, uuid.New().String()+filepath.Ext(header.Filename))
		out, err := os.Create(dst)
		if err != nil {
			zap.L().Error("upload: create file", zap.Error(err))
			http.Error(w, `{"error":"failed to store upload"}`, http.StatusInternalServerError)
			return
		}
		if _, err := io.Copy(out, file); err != nil {
			out.Close()
			zap.L().Error("upload: write file", zap.Error(err))
			http.Error(w, `{"error":"failed to store upload"}`, http.StatusInternalServerError)
			return
		}
		out.Close()

		job, err := st.CreateJob(r.Context(), header.Filename)
		if err != nil {
			zap.L().Error("upload: create job", zap.Error(err))
			http.Error(w, `{"error":"failed to create job"}`, http.StatusInternalServerError)
			return
		}

		if err := dispatcher.Dispatch(queue.Task{JobID: job.ID, FilePath: dst}); err != nil {
			zap.L().Error("upload: dispatch job", zap.String("job_id", job.ID), zap.Error(err))
			http.Error(w, `{"error":"failed to queue job"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{
			"job_id":   job.ID,
			"filename": job.Filename,
			"status":   string(job.Status),
		})
	})

	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		job, err := st.GetJob(r.Context(), r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, job)
	})

	mux.HandleFunc("GET /jobs/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		job, err := st.GetJob(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
			return
		}
		if !job.Status.Terminal() {
			http.Error(w, `{"error":"job is still processing"}`, http.StatusConflict)
			return
		}

		contacts, err := st.ListCleanedContacts(r.Context(), id)
		if err != nil {
			zap.L().Error("download: list contacts", zap.String("job_id", id), zap.Error(err))
			http.Error(w, `{"error":"failed to load contacts"}`, http.StatusInternalServerError)
			return
		}

		records := make([]model.Record, 0, len(contacts))
		for _, c := range contacts {
			records = append(records, c.Data)
		}

		w.Header().Set("Content-Type", "text/csv")
		base := strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cleaned_"+base+".csv"))
		if err := fetcher.WriteCSV(w, records); err != nil {
			zap.L().Error("download: write csv", zap.String("job_id", id), zap.Error(err))
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
