package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"qrmenu/internal/config"
	"qrmenu/internal/storage"
	"qrmenu/internal/store"
)

// DefaultSweepMinAge keeps fresh uploads that have not been attached to a
// product yet.
const DefaultSweepMinAge = 24 * time.Hour

// SweepOptions holds the flags of the sweep command.
type SweepOptions struct {
	DryRun bool
	MinAge time.Duration
}

// imageFiles lists and deletes stored images by public path.
type imageFiles interface {
	List(ctx context.Context) ([]storage.StoredImage, error)
	Delete(ctx context.Context, publicPath string) (bool, error)
}

// imageReferences reports every public path some row still points at.
type imageReferences interface {
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(_ *RootOptions) *cobra.Command {
	opts := &SweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete uploaded images no product or category references",
		Long: `Delete uploaded images no product or category references.

Removing an image from a product, deleting a product and replacing a
category image leave the old file on storage; so do uploads that were
never attached to anything. Files younger than --min-age are kept so an
upload waiting for its product form is not lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			images, err := openImageStore(cfg)
			if err != nil {
				return err
			}

			_, err = runSweep(cmd.Context(), images, store.NewProductStore(db), opts, time.Now(), cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "only print what would be deleted")
	cmd.Flags().DurationVar(&opts.MinAge, "min-age", DefaultSweepMinAge, "skip files modified more recently than this")

	return cmd
}

// runSweep deletes every stored image that is older than opts.MinAge at now
// and missing from the reference set. It returns those paths in sorted order.
func runSweep(ctx context.Context, files imageFiles, refs imageReferences, opts *SweepOptions, now time.Time, out io.Writer) ([]string, error) {
	images, err := files.List(ctx)
	if err != nil {
		return nil, err
	}
	// Listing before reading references means a path attached in between
	// is seen as used.
	used, err := refs.ReferencedImages(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-opts.MinAge)
	var orphans []string
	skipped := 0
	for _, img := range images {
		if _, ok := used[img.Path]; ok {
			continue
		}
		if img.ModTime.After(cutoff) {
			skipped++
			continue
		}
		orphans = append(orphans, img.Path)
	}
	sort.Strings(orphans)

	for _, p := range orphans {
		if opts.DryRun {
			fmt.Fprintf(out, "would delete %s\n", p)
			continue
		}
		if _, err := files.Delete(ctx, p); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "deleted %s\n", p)
	}

	slog.Info("sweep finished", "stored", len(images), "orphaned", len(orphans), "too_recent", skipped, "dry_run", opts.DryRun)
	return orphans, nil
}
