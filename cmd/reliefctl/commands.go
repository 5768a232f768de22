package main

import (
	"fmt"

	"github.com/reliefnet/disaster-api/pkg/auth"
	"github.com/reliefnet/disaster-api/pkg/database"
	"github.com/reliefnet/disaster-api/pkg/models"
	"github.com/reliefnet/disaster-api/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newTokenCmd mints a session token, handy for calling admin routes from scripts
func newTokenCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "token <accountID>",
		Short: "Issue a session token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := models.ParseRole(role)
			if !ok {
				return fmt.Errorf("invalid role %q", role)
			}
			token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL).CreateToken(args[0], r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "role carried by the token")
	return cmd
}

func newSeedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the default admin account if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()
			return auth.EnsureAdminExists(cmd.Context(), s, logger, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <db.json>",
		Short: "Load a JSON document into the database",
		Long: `Loads a db.json document with the emergencies, users, admins, volunteers
and agencies collections. Records are upserted by id; collections missing
from the file are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.LoadLegacyFile(args[0])
			if err != nil {
				return err
			}
			s, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := s.Import(cmd.Context(), doc); err != nil {
				return err
			}
			logger.Info("document imported",
				zap.String("file", args[0]),
				zap.Int("emergencies", len(doc.Emergencies)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", args[0])
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write every collection to a JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "db.json"
			if len(args) == 1 {
				path = args[0]
			}
			s, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			doc, err := s.Read(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.WriteLegacyFile(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
			return nil
		},
	}
}

func openStore() (*store.Store, func(), error) {
	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { _ = database.Close(db) }, nil
}
