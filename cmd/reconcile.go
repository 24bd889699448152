package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"datarecon/core/config"
	"datarecon/core/logger"
	"datarecon/core/recon"
	"datarecon/core/report"
	"datarecon/core/source"
	"datarecon/core/staging"
	"datarecon/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	reconPageSize   int
	reconSampleCap  int
	reconWorkers    int
	reconExclude    []string
	reconIDField    string
	reconStaging    string
	reconJSONOutput bool
	reconArchive    bool
)

// reconcileCmd runs one reconciliation between the configured source and
// target datasets and prints the report.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the source dataset against the target dataset",
	Long: `Reconcile scans both configured datasets, digests every record in
canonical form, and classifies each id as match, source only, target only,
or differing.

Examples:
  # Plain run with settings from the environment / .env
  datarecon reconcile

  # Ignore volatile fields and keep more diff samples
  datarecon reconcile --exclude updated_at,etag --sample-cap 50

  # Large datasets: sqlite staging survives a process restart
  datarecon reconcile --staging sqlite --page-size 100000

  # Machine-readable output
  datarecon reconcile --json`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().IntVar(&reconPageSize, "page-size", 0, "Records fetched per batch (overrides RECON_PAGE_SIZE)")
	reconcileCmd.Flags().IntVar(&reconSampleCap, "sample-cap", 0, "Max differing records kept in the report (overrides RECON_SAMPLE_CAP)")
	reconcileCmd.Flags().IntVar(&reconWorkers, "workers", 0, "Hashing workers per batch, 0 = auto (overrides RECON_WORKERS)")
	reconcileCmd.Flags().StringSliceVar(&reconExclude, "exclude", nil, "Top-level fields ignored when hashing (overrides RECON_EXCLUDE)")
	reconcileCmd.Flags().StringVar(&reconIDField, "id-field", "", "Record identifier field (overrides RECON_ID_FIELD)")
	reconcileCmd.Flags().StringVar(&reconStaging, "staging", "", "Staging backend: memory or sqlite (overrides STAGING_BACKEND)")
	reconcileCmd.Flags().BoolVar(&reconJSONOutput, "json", false, "Print the report as JSON instead of text")
	reconcileCmd.Flags().BoolVar(&reconArchive, "archive", false, "Upload the report to object storage (overrides RECON_ARCHIVE_REPORTS)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyReconcileFlags(cmd, cfg)

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	l.Info("Starting reconciliation",
		zap.String("source", cfg.Source.Kind),
		zap.String("target", cfg.Target.Kind),
		zap.Int("page_size", cfg.Recon.PageSize),
	)

	// Object storage is only dialed when a dataset or the archive needs it.
	var client storage.Client
	if cfg.Source.Kind == "object" || cfg.Target.Kind == "object" || cfg.Recon.ArchiveReports {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}
	deps := source.Deps{Storage: client, Bucket: cfg.Storage.Bucket}

	// Open both dataset sides
	src, err := source.New("source", cfg.Source, cfg.Recon.IDField, deps)
	if err != nil {
		return err
	}
	defer src.Close()

	tgt, err := source.New("target", cfg.Target, cfg.Recon.IDField, deps)
	if err != nil {
		return err
	}
	defer tgt.Close()

	// Open the staging store
	store, err := staging.New(cfg.Staging)
	if err != nil {
		return err
	}
	defer store.Close()

	// Run the engine
	engine := recon.New(store, l, cfg.Recon.Options())
	rep, err := engine.Run(ctx, src, tgt)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	// Print the report
	if reconJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		fmt.Println(report.Render(rep))
	}

	// Archive the report
	if cfg.Recon.ArchiveReports {
		key, err := report.Archive(ctx, client, cfg.Storage.Bucket, rep)
		if err != nil {
			return fmt.Errorf("failed to archive report: %w", err)
		}
		l.Info("Report archived", zap.String("object", key))
	}

	if !rep.Complete {
		l.Warn("Run completed partially",
			zap.Int("failed_batches", rep.FailedBatches),
			zap.Int64("unresolved", rep.Unresolved),
		)
	}
	return nil
}

// applyReconcileFlags lets explicitly passed flags override the environment.
func applyReconcileFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("page-size") {
		cfg.Recon.PageSize = reconPageSize
	}
	if flags.Changed("sample-cap") {
		cfg.Recon.SampleCap = reconSampleCap
	}
	if flags.Changed("workers") {
		cfg.Recon.Workers = reconWorkers
	}
	if flags.Changed("exclude") {
		cfg.Recon.Exclude = strings.Join(reconExclude, ",")
	}
	if flags.Changed("id-field") {
		cfg.Recon.IDField = reconIDField
	}
	if flags.Changed("staging") {
		cfg.Staging.Backend = reconStaging
	}
	if flags.Changed("archive") {
		cfg.Recon.ArchiveReports = reconArchive
	}
}
