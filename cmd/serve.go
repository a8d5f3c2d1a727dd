package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reply webhook and prospect lookup server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// replyWebhook is the shape of the outreach platform's reply event. The
// profile URL arrives under different keys depending on the event version.
type replyWebhook struct {
	LeadLinkedInURL string `json:"leadLinkedInUrl"`
	CampaignID      string `json:"campaignId"`
	Message         string `json:"message"`
	Lead            struct {
		LinkedInURL string `json:"linkedinUrl"`
	} `json:"lead"`
}

func (w replyWebhook) profileURL() string {
	if w.LeadLinkedInURL != "" {
		return w.LeadLinkedInURL
	}
	return w.Lead.LinkedInURL
}

// newRouter builds the HTTP API: the inbound reply webhook and the
// processed-ledger lookup.
func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/webhooks/heyreach", func(w http.ResponseWriter, req *http.Request) {
		var hook replyWebhook
		if err := json.NewDecoder(req.Body).Decode(&hook); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		url := hook.profileURL()
		if url == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no profile URL in webhook"})
			return
		}

		reply := model.ReplyEvent{
			ProfileURL: model.NormalizeProfileURL(url),
			CampaignID: hook.CampaignID,
			Message:    hook.Message,
			ReceivedAt: time.Now().UTC(),
		}
		if err := st.RecordReply(req.Context(), reply); err != nil {
			zap.L().Error("record reply failed", zap.String("profile", reply.ProfileURL), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "record reply failed"})
			return
		}
		zap.L().Info("reply recorded",
			zap.String("profile", reply.ProfileURL),
			zap.String("campaign", reply.CampaignID),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	})

	r.Get("/prospects", func(w http.ResponseWriter, req *http.Request) {
		raw := req.URL.Query().Get("url")
		if raw == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url query parameter is required"})
			return
		}
		url := model.NormalizeProfileURL(raw)
		entry, err := st.GetProcessedLead(req.Context(), url)
		if err != nil {
			zap.L().Error("prospect lookup failed", zap.String("profile", url), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		if entry == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not processed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"profile_url": url,
			"name":        entry.Name,
			"added_at":    entry.AddedAt,
			"source":      entry.Source,
			"list_id":     entry.ListID,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
