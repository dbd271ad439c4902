package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/franoropeza/reportrunner/internal/config"
	internal_http "github.com/franoropeza/reportrunner/internal/http"
	"github.com/franoropeza/reportrunner/internal/log"
	"github.com/franoropeza/reportrunner/internal/runner"
	"github.com/franoropeza/reportrunner/internal/service"
	internal_storage "github.com/franoropeza/reportrunner/internal/storage"
	"github.com/franoropeza/reportrunner/pkg/storage"
)

func SetupCLI(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file (default reportrunner.yaml, or REPORT_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Database connection string (overrides the config file)")

	runCmd := &cobra.Command{
		Use:   "run [report...]",
		Short: "Run the configured report scripts and log their output",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			store := initStoreIfConfigured(cmd, cfg)
			if store != nil {
				defer store.Close()
			}

			reports := cfg.Reports
			if len(args) > 0 {
				reports = nil
				for _, name := range args {
					rep, ok := cfg.Report(name)
					if !ok {
						log.GetLogger().Errorf("Unknown report '%s'", name)
						fmt.Fprintf(os.Stderr, "Error: unknown report '%s'\n", name)
						os.Exit(1)
					}
					reports = append(reports, rep)
				}
			}

			svc := service.NewRunService(store, runner.New(cfg.Interpreter, cfg.ProjectDir), cfg.LogDir, log.GetLogger())
			code, err := svc.ExecuteAll(cmd.Context(), reports)
			if err != nil {
				log.GetLogger().Errorf("Run aborted: %v", err)
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if code != 0 {
				// Propagate the failed report's exit code as our own
				os.Exit(code)
			}
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Run: func(cmd *cobra.Command, args []string) {
			store := mustInitStore(cmd)
			defer store.Close()
			svc := service.NewHistoryService(store)
			listRuns(svc)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run history over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			store := initStoreIfConfigured(cmd, cfg)
			if store == nil {
				fmt.Fprintln(os.Stderr, "Error: serve requires a database (set database.url or --db)")
				os.Exit(1)
			}
			defer store.Close()
			if err := internal_http.StartServer(cfg.HTTP.Port, store); err != nil {
				log.GetLogger().Errorf("Server stopped: %v", err)
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(runCmd, historyCmd, serveCmd)
}

func loadConfig(cmd *cobra.Command) *config.Config {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving config flag: %v", err)
		os.Exit(1)
	}
	if path == "" {
		path = os.Getenv("REPORT_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.GetLogger().Errorf("Failed to load config: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.GetLogger().Errorf("Invalid config: %v", err)
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// initStoreIfConfigured returns nil when no database is configured: runs are
// then logged to the per-day file only.
func initStoreIfConfigured(cmd *cobra.Command, cfg *config.Config) storage.Store {
	connStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	if connStr == "" {
		connStr = cfg.Database.URL
	}
	if connStr == "" {
		return nil
	}
	return initStore(connStr)
}

func mustInitStore(cmd *cobra.Command) storage.Store {
	connStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	if connStr == "" {
		connStr = os.Getenv("DATABASE_URL")
	}
	if connStr == "" {
		fmt.Fprintln(os.Stderr, "Error: --db flag or DATABASE_URL required")
		os.Exit(1)
	}
	return initStore(connStr)
}

func listRuns(svc *service.HistoryService) {
	runs, err := svc.ListRuns()
	if err != nil {
		log.GetLogger().Errorf("Failed to list runs: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to list runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Fprintf(os.Stdout, "No runs found.\n")
		return
	}
	fmt.Fprintf(os.Stdout, "Runs:\n")
	for _, r := range runs {
		exit := "-"
		if r.ExitCode != nil {
			exit = fmt.Sprintf("%d", *r.ExitCode)
		}
		fmt.Fprintf(os.Stdout, "- ID: %d, Report: %s, Status: %s, Exit: %s, Started: %s, Log: %s\n",
			r.ID, r.ReportName, r.Status, exit, r.StartedAt.Format(time.RFC3339), r.LogPath)
	}
}

func initStore(dbConnStr string) *internal_storage.PostgresStore {
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
