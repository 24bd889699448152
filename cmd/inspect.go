package cmd

import (
	"context"
	"fmt"

	"datarecon/core/config"
	"datarecon/core/logger"
	"datarecon/core/record"
	"datarecon/core/source"
	"datarecon/core/storage"

	"github.com/spf13/cobra"
)

var (
	inspectSide  string
	inspectLimit int
)

// inspectCmd previews one dataset side: record count plus the canonical
// digests of the first few records. Useful for checking connectivity and
// field exclusion before a full run.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Preview a dataset side and its canonical digests",
	Long: `Inspect connects to one configured dataset, prints its record count,
and shows the id and canonical digest of the first records.

Examples:
  datarecon inspect --side source
  datarecon inspect --side target --limit 25`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSide, "side", "source", "Dataset side to inspect: source or target")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 10, "Number of records to preview")

	RootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	var sideCfg source.Config
	switch inspectSide {
	case "source":
		sideCfg = cfg.Source
	case "target":
		sideCfg = cfg.Target
	default:
		return fmt.Errorf("unknown side %q (want source or target)", inspectSide)
	}

	var client storage.Client
	if sideCfg.Kind == "object" {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	src, err := source.New(inspectSide, sideCfg, cfg.Recon.IDField, source.Deps{
		Storage: client,
		Bucket:  cfg.Storage.Bucket,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	count, err := src.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count %s dataset: %w", inspectSide, err)
	}

	fmt.Printf("Dataset:  %s (%s)\n", inspectSide, sideCfg.Kind)
	fmt.Printf("Records:  %d\n", count)

	fields := cfg.Recon.ExcludeFields()
	if len(fields) > 0 {
		fmt.Printf("Excluded: %v\n", fields)
	}
	exclude := cfg.Recon.Options().Exclude

	page, err := src.Page(ctx, exclude, 0, inspectLimit)
	if err != nil {
		return fmt.Errorf("failed to read %s dataset: %w", inspectSide, err)
	}

	fmt.Println()
	for _, rec := range page {
		id, err := record.ID(rec, cfg.Recon.IDField)
		if err != nil {
			fmt.Printf("  <no %s>  %v\n", cfg.Recon.IDField, err)
			continue
		}
		digest, err := record.DigestRecord(rec, exclude)
		if err != nil {
			fmt.Printf("  %s  malformed: %v\n", id, err)
			continue
		}
		fmt.Printf("  %s  %s\n", id, digest)
	}
	return nil
}
