package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/blob"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jobs"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/endpoints"
)

const shutdownTimeout = 20 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "3000"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the SEEK application server",
	Long: `Run the SEEK application server.

To run the server requires the environment variables DATABASE_URL and
SEEK_SESSION_SECRET.

By default, database migrations are run on startup. Use --no-migrate to skip.
The queue workers are scheduled from reindex_schedule and
auth_lookup_schedule. Use --no-jobs to run the server without them.

On SIGHUP the server drains its requests, reloads the configuration and
starts again on the same address.`,
	Run: func(cmd *cobra.Command, args []string) {
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}
		if os.Getenv(config.EnvName("session_secret")) == "" {
			fmt.Fprintf(os.Stderr, "%s environment variable is required\n", config.EnvName("session_secret"))
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			logging.Log.Info("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		database, err := connectDB()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noJobs, _ := cmd.Flags().GetBool("no-jobs")
		if err := serve(database, host, port, !noJobs); err != nil {
			logging.Log.WithError(err).Fatal("Server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("no-jobs", false, "do not schedule the queue workers")
}

// serve runs the server until SIGINT or SIGTERM, rebuilding it on SIGHUP
func serve(database *gorm.DB, host, port string, withJobs bool) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	for {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, scheduler, err := buildServer(cfg, database, host, port, withJobs)
		if err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() { errc <- s.Start() }()
		scheduler.Start()
		logging.Log.Infof("Running server at http://%s", s.Addr())

		var sig os.Signal
		select {
		case err := <-errc:
			<-scheduler.Stop().Done()
			return err
		case sig = <-sigs:
		}

		logging.Log.WithField("signal", sig.String()).Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = s.Shutdown(ctx)
		cancel()
		<-scheduler.Stop().Done()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil {
			return err
		}
		if sig != syscall.SIGHUP {
			return nil
		}
		logging.Log.Info("Reloading configuration")
	}
}

func buildServer(cfg *config.SeekConfig, database *gorm.DB, host, port string, withJobs bool) (*server.Server, *jobs.Manager, error) {
	ctx := context.Background()

	c, err := newCatalog(cfg, database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SearchEnabled {
		if err := c.index.EnsureSchema(ctx); err != nil {
			// Search answers 503 until the index is reachable.
			logging.Log.WithError(err).Warn("Search index is not ready")
		}
	}

	s := server.NewServer(cfg, database, host, port)
	s.Authorizer = c.authorizer
	s.Searcher = c.searcher()
	s.Fetcher = c.fetcher

	blobs, err := blob.Open(ctx, cfg)
	if err != nil {
		logging.Log.WithError(err).Warn("Content blob storage is unavailable")
	} else {
		s.Blobs = blobs
	}

	endpoints.RegisterAll(s)

	scheduler := jobs.NewManager()
	if withJobs {
		if err := scheduler.Add(jobs.AuthLookupJob, cfg.AuthLookupSchedule, jobs.AuthLookup(c.authorizer)); err != nil {
			return nil, nil, err
		}
		if cfg.SearchEnabled {
			if err := scheduler.Add(jobs.ReindexJob, cfg.ReindexSchedule, jobs.Reindex(c.indexer())); err != nil {
				return nil, nil, err
			}
		}
	}
	return s, scheduler, nil
}
