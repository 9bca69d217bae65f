package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/petroops-lab/derrick/pkg/utils/logging"
	"github.com/petroops-lab/derrick/pkg/utils/safe"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("DERRICK_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Value:       "(default)",
				Sources:     cli.EnvVars("DERRICK_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig()

			client, err := fireconf.New(ctx, projectID, databaseID, indexConfig,
				fireconf.WithLogger(logger))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer safe.Close(ctx, client)

			if dryRun {
				collections := make([]string, 0, len(indexConfig.Collections))
				for _, col := range indexConfig.Collections {
					collections = append(collections, col.Name)
				}

				current, err := client.Import(ctx, collections...)
				if err != nil {
					return goerr.Wrap(err, "failed to read current index configuration")
				}

				diff, err := client.DiffConfigs(current)
				if err != nil {
					return goerr.Wrap(err, "failed to diff index configuration")
				}

				if len(diff.Collections) == 0 {
					color.New(color.FgGreen).Println("No changes required")
					return nil
				}

				for _, col := range diff.Collections {
					for _, idx := range col.IndexesToAdd {
						color.New(color.FgYellow).Printf("[ADD] ")
						fmt.Printf("%s: %s\n", col.Name, describeIndex(idx))
					}
					for _, idx := range col.IndexesToDelete {
						color.New(color.FgRed).Printf("[DELETE] ")
						fmt.Printf("%s: %s\n", col.Name, describeIndex(idx))
					}
				}
			} else {
				logger.Info("Applying migrations")
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Migrations applied successfully")
			}

			return nil
		},
	}
}

func describeIndex(idx fireconf.Index) string {
	parts := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Path, f.Order))
	}
	return strings.Join(parts, ", ")
}

// getIndexConfig returns the composite indexes needed by task and
// notification queries. Documents are stored with Go struct field
// names, so index paths use those names.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "tasks",
				Indexes: []fireconf.Index{
					// GetByActionAndType: ActionID ASC, Type ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "ActionID", Order: fireconf.OrderAscending},
							{Path: "Type", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: "notifications",
				Indexes: []fireconf.Index{
					// CountUnread: UserID ASC, IsRead ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "UserID", Order: fireconf.OrderAscending},
							{Path: "IsRead", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
