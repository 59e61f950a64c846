package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dalemusser/flotahub/internal/app/store/audit"
	"github.com/dalemusser/flotahub/internal/app/system/auditlog"
	"github.com/dalemusser/flotahub/internal/app/system/integrity"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type scanOptions struct {
	mongoURI string
	database string
	fix      bool
	asJSON   bool
	timeout  time.Duration
}

func newScanCmd() *cobra.Command {
	var o scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report documents without an organization and cross-organization references",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wafflemongo.ValidateURI(o.mongoURI); err != nil {
				return fmt.Errorf("invalid --mongo-uri: %w", err)
			}
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.mongoURI))
			if err != nil {
				return fmt.Errorf("mongo connect: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return fmt.Errorf("mongo ping: %w", err)
			}

			rep, err := runScan(ctx, client.Database(o.database), o.fix, log)
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), rep, o.asJSON); err != nil {
				return err
			}
			if !rep.Clean() && !o.fix {
				return fmt.Errorf("%d findings", len(rep.Findings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	cmd.Flags().StringVar(&o.database, "database", "flotahub", "Database name")
	cmd.Flags().BoolVar(&o.fix, "fix", false, "Deactivate and flag users without an organization")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 5*time.Minute, "Overall time limit")
	return cmd
}

// runScan scans db and, when fix is set, quarantines orphaned users. Each
// quarantined account gets an admin audit event.
func runScan(ctx context.Context, db *mongo.Database, fix bool, log *zap.Logger) (integrity.Report, error) {
	auditor := integrity.NewForDB(db, log)
	rep, err := auditor.Scan(ctx)
	if err != nil {
		return rep, fmt.Errorf("scan: %w", err)
	}
	if !fix {
		return rep, nil
	}
	if err := auditor.Fix(ctx, &rep); err != nil {
		return rep, err
	}

	trail := auditlog.New(audit.New(db), log, auditlog.Config{})
	for _, f := range rep.Findings {
		if f.Problem != integrity.UserWithoutOrganization {
			continue
		}
		id := f.ID
		trail.Log(ctx, audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: audit.EventUserQuarantined,
			UserID:    &id,
			Success:   true,
			Details:   map[string]string{"source": "flotaudit"},
		})
	}
	return rep, nil
}

func writeReport(w io.Writer, rep integrity.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	colls := make([]string, 0, len(rep.Scanned))
	for coll := range rep.Scanned {
		colls = append(colls, coll)
	}
	sort.Strings(colls)
	for _, coll := range colls {
		fmt.Fprintf(w, "scanned %s: %d\n", coll, rep.Scanned[coll])
	}
	for _, f := range rep.Findings {
		fmt.Fprintln(w, f.String())
	}
	if rep.Quarantined > 0 {
		fmt.Fprintf(w, "quarantined users: %d\n", rep.Quarantined)
	}
	if rep.Clean() {
		fmt.Fprintln(w, "no findings")
	}
	return nil
}
