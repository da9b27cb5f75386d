package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storyline-backend/config"
	"storyline-backend/controllers/httpCors"
	storyctl "storyline-backend/controllers/stories"
	"storyline-backend/models/story"
	"storyline-backend/models/users"
	"storyline-backend/services/realtime"
	"storyline-backend/services/stories"
)

func main() {
	root := &cobra.Command{
		Use:   "storyline-backend",
		Short: "Ephemeral story lifecycle service",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic archival scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Run one archival scan plus the orphan recovery sweep, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context())
		},
	}

	root.AddCommand(serve, sweep)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*stories.Service, *realtime.Publisher, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := config.InitDB(); err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	if err := migrate(); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	redisCli, err := config.InitRedis(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}
	pub := realtime.NewPublisher(redisCli, logger)

	svc := stories.New(config.DB, logger).WithHook(pub)
	return svc, pub, nil
}

func migrate() error {
	return config.DB.AutoMigrate(
		&users.User{},
		&story.Story{},
		&story.Reaction{},
		&story.View{},
		&story.Comment{},
		&story.Notification{},
		&story.ArchivedStory{},
		&story.ArchivedReaction{},
		&story.ArchivedView{},
		&story.ArchivedComment{},
		&story.Highlight{},
		&story.HighlightLink{},
	)
}

func runServe(ctx context.Context) error {
	svc, pub, err := setup(ctx)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Passive archival trigger: hourly scan plus orphan recovery.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := svc.RunArchivalScan(ctx); err != nil {
					log.Printf("archival scan: %v", err)
				}
				if _, err := svc.SweepOrphans(ctx); err != nil {
					log.Printf("orphan sweep: %v", err)
				}
			}
		}
	}()

	handler := httpCors.CorsSettings().Handler(newMux(svc, pub))

	log.Printf("Server listening on port %s", port)
	return http.ListenAndServe(":"+port, handler)
}

func newMux(svc *stories.Service, pub *realtime.Publisher) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/stories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			storyctl.CreateStory(w, r, svc)
		case http.MethodDelete:
			storyctl.DeleteStory(w, r, svc)
		case http.MethodGet:
			storyctl.GetUserStories(w, r, svc)
		default:
			http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/stories/view", func(w http.ResponseWriter, r *http.Request) {
		storyctl.RecordView(w, r, svc)
	})
	mux.HandleFunc("/stories/archive", func(w http.ResponseWriter, r *http.Request) {
		storyctl.ArchiveStory(w, r, svc)
	})
	mux.HandleFunc("/stories/repost", func(w http.ResponseWriter, r *http.Request) {
		storyctl.RepostStory(w, r, svc)
	})
	mux.HandleFunc("/stories/archive/list", func(w http.ResponseWriter, r *http.Request) {
		storyctl.GetArchive(w, r, svc)
	})
	mux.HandleFunc("/stories/reactions/toggle", func(w http.ResponseWriter, r *http.Request) {
		storyctl.ToggleStoryReaction(w, r, svc)
	})
	mux.HandleFunc("/stories/reactions", func(w http.ResponseWriter, r *http.Request) {
		storyctl.GetReactionSummary(w, r, svc)
	})
	mux.HandleFunc("/stories/typing", func(w http.ResponseWriter, r *http.Request) {
		storyctl.Typing(w, r, pub)
	})
	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			storyctl.DeleteComment(w, r, svc)
		default:
			storyctl.CreateComment(w, r, svc)
		}
	})
	mux.HandleFunc("/comments/reactions/toggle", func(w http.ResponseWriter, r *http.Request) {
		storyctl.ToggleCommentReaction(w, r, svc)
	})
	mux.HandleFunc("/highlights", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			storyctl.CreateHighlight(w, r, svc)
		case http.MethodGet:
			storyctl.GetHighlight(w, r, svc)
		default:
			http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/highlights/items", func(w http.ResponseWriter, r *http.Request) {
		storyctl.AddHighlightItems(w, r, svc)
	})
	mux.HandleFunc("/highlights/links", func(w http.ResponseWriter, r *http.Request) {
		storyctl.RemoveHighlightLink(w, r, svc)
	})
	mux.HandleFunc("/highlights/reorder", func(w http.ResponseWriter, r *http.Request) {
		storyctl.ReorderHighlightLinks(w, r, svc)
	})
	mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
		storyctl.GetNotifications(w, r, svc)
	})
	return mux
}

func runSweep(ctx context.Context) error {
	svc, _, err := setup(ctx)
	if err != nil {
		return err
	}

	report, err := svc.RunArchivalScan(ctx)
	if err != nil {
		return err
	}
	swept, err := svc.SweepOrphans(ctx)
	if err != nil {
		return err
	}

	log.Printf("archived %d of %d expired stories, recovered %d orphans",
		report.SuccessCount, report.TotalExpired, swept)
	return nil
}
