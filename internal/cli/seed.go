package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rolodexapp/rolodex-server/internal/config"
	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/normalize"
	"github.com/rolodexapp/rolodex-server/internal/service"
	"github.com/rolodexapp/rolodex-server/internal/store"
	"github.com/rolodexapp/rolodex-server/internal/store/sqlstore"
	"github.com/rolodexapp/rolodex-server/internal/validation"
)

// SeedOptions controls how much sample data the seed command writes.
type SeedOptions struct {
	Contacts    int
	Tags        int
	Concurrency int
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	ContactsCreated int
	ContactsSkipped int
	TagsCreated     int
	TagsReused      int
	Associations    int
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with sample contacts and tags",
		Long: `Create sample tags and contacts, tagging each contact with one of the tags.

Rows go through the same validation as the API. Contacts whose email already
exists are skipped, so seeding twice is safe.`,
		Example: `  # Create 100 contacts spread over 8 tags
  rolodexctl seed --contacts 100 --tags 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := GetConfig(cmd.Context())
			if err != nil {
				return err
			}

			res, err := runSeed(cmd.Context(), cmd, cfg, opts)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"Tags: %d created, %d reused\nContacts: %d created, %d skipped\nAssociations: %d\n",
				res.TagsCreated, res.TagsReused, res.ContactsCreated, res.ContactsSkipped, res.Associations)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Contacts, "contacts", 25, "Number of contacts to create")
	cmd.Flags().IntVar(&opts.Tags, "tags", 5, "Number of tags to create")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Concurrent contact writers")

	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts SeedOptions) (SeedResult, error) {
	log := commandLogger(cmd, cfg)

	dialect, db, err := openDatabase(ctx, cfg)
	if err != nil {
		return SeedResult{}, err
	}
	s := sqlstore.New(db, dialect, log)
	defer func() { _ = s.Close() }()

	if _, err := s.Migrator().Up(ctx); err != nil {
		return SeedResult{}, err
	}

	v := validation.New()
	return Seed(ctx, s,
		service.NewContactService(s, v, log),
		service.NewTagService(s, v, log),
		opts,
	)
}

// Seed writes opts.Tags tags and opts.Contacts contacts through the services.
// Contacts are created concurrently, bounded by opts.Concurrency.
func Seed(ctx context.Context, st store.Store, contacts *service.ContactService, tags *service.TagService, opts SeedOptions) (SeedResult, error) {
	if opts.Contacts < 0 || opts.Tags < 0 {
		return SeedResult{}, errors.New("seed counts must not be negative")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	var res SeedResult

	tagList := make([]*domain.Tag, 0, opts.Tags)
	for i := 1; i <= opts.Tags; i++ {
		name := fmt.Sprintf("seed-tag-%d", i)
		t, err := tags.Create(ctx, service.TagInput{Name: &name})
		switch {
		case err == nil:
			res.TagsCreated++
		case errors.Is(err, store.ErrAlreadyExists):
			t, err = st.GetTagByKey(ctx, normalize.Key(name))
			if err != nil {
				return res, fmt.Errorf("load existing tag %q: %w", name, err)
			}
			res.TagsReused++
		default:
			return res, fmt.Errorf("create tag %q: %w", name, err)
		}
		tagList = append(tagList, t)
	}

	var created, skipped, associated atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := 1; i <= opts.Contacts; i++ {
		g.Go(func() error {
			name := fmt.Sprintf("Seed Contact %d", i)
			email := fmt.Sprintf("seed-%d@example.com", i)

			c, err := contacts.Create(gctx, service.ContactInput{Name: &name, Email: &email})
			if errors.Is(err, store.ErrAlreadyExists) {
				skipped.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("create contact %q: %w", email, err)
			}
			created.Add(1)

			if len(tagList) == 0 {
				return nil
			}
			tag := tagList[(i-1)%len(tagList)]
			if _, err := contacts.AddTag(gctx, c.ID, tag.ID); err != nil {
				return fmt.Errorf("tag contact %d: %w", c.ID, err)
			}
			associated.Add(1)
			return nil
		})
	}

	err := g.Wait()
	res.ContactsCreated = int(created.Load())
	res.ContactsSkipped = int(skipped.Load())
	res.Associations = int(associated.Load())
	return res, err
}
