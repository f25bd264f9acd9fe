package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed roles, privileges, an administrator and a few categories for development and testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "password123"
		}
		hash, err := auth.HashPassword(password, cfg.Security.BCryptCost)
		if err != nil {
			return err
		}

		ctx := context.Background()
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck

		if clearData {
			if err := clearSeedData(ctx, tx); err != nil {
				return err
			}
		}
		if err := seedRoles(ctx, tx); err != nil {
			return err
		}
		if err := seedUsers(ctx, tx, hash); err != nil {
			return err
		}
		if err := seedCategories(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Database seeded successfully")
		return nil
	},
}

type seedRole struct {
	Name        string
	Description string
	IsSuper     bool
	Permissions []auth.Permission
}

var seedRoleSet = []seedRole{
	{Name: "superadmin", Description: "Unrestricted access", IsSuper: true},
	{
		Name:        "editor",
		Description: "Maintains categories",
		Permissions: []auth.Permission{
			auth.PermCategoriesView, auth.PermCategoriesCreate, auth.PermCategoriesUpdate, auth.PermCategoriesDelete, auth.PermStatsView,
		},
	},
	{
		Name:        "auditor",
		Description: "Read-only access to users, roles and the audit trail",
		Permissions: []auth.Permission{
			auth.PermUsersView, auth.PermRolesView, auth.PermCategoriesView, auth.PermAuditLogsView, auth.PermStatsView,
		},
	},
}

// clearSeedData empties every mutable table. audit_logs is append-only and is left alone.
func clearSeedData(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `TRUNCATE categories, users, role_privileges, roles RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	fmt.Println("Cleared existing data")
	return nil
}

func seedRoles(ctx context.Context, tx *sqlx.Tx) error {
	for _, r := range seedRoleSet {
		var id int64
		err := tx.GetContext(ctx, &id, `
			INSERT INTO roles (name, description, is_active, is_super, created_at, updated_at)
			VALUES ($1, $2, true, $3, now(), now())
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, r.Name, r.Description, r.IsSuper)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
		}

		for _, p := range r.Permissions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO role_privileges (role_id, permission, created_at)
				VALUES ($1, $2, now())
				ON CONFLICT (role_id, permission) DO NOTHING`, id, string(p))
			if err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", p, r.Name, err)
			}
		}
		fmt.Printf("Seeded role %s (%d privileges)\n", r.Name, len(r.Permissions))
	}
	return nil
}

func seedUsers(ctx context.Context, tx *sqlx.Tx, hash string) error {
	users := []struct {
		Email string
		Name  string
		Role  string
	}{
		{"admin@mail.com", "Admin", "superadmin"},
		{"editor@mail.com", "Editor", "editor"},
		{"auditor@mail.com", "Auditor", "auditor"},
	}

	for _, u := range users {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO users (email, name, password_hash, role_id, is_active, created_at, updated_at)
			SELECT $1, $2, $3, id, true, now(), now() FROM roles WHERE name = $4
			ON CONFLICT DO NOTHING`, u.Email, u.Name, hash, u.Role)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			fmt.Printf("User %s already exists\n", u.Email)
			continue
		}
		fmt.Println("Seeded user:", u.Email)
	}
	return nil
}

func seedCategories(ctx context.Context, tx *sqlx.Tx) error {
	categories := []struct {
		Name        string
		Description string
	}{
		{"travel", "Flights, hotels and ground transport"},
		{"meals", "Client and team meals"},
		{"office", "Office supplies and equipment"},
		{"software", "Subscriptions and licenses"},
	}

	for _, c := range categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, description, is_active, created_at, updated_at)
			VALUES ($1, $2, true, now(), now())
			ON CONFLICT (name) DO NOTHING`, c.Name, c.Description)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}
	fmt.Printf("Seeded %d categories\n", len(categories))
	return nil
}
