// Seed creates two profiles, a "Trip" checklist with a nested task and a
// pending share request between them. Run from project root: go run ./scripts/seed
package main

import (
	"context"
	"fmt"
	"os"

	"checklist-api/internal/apperr"
	"checklist-api/internal/clone"
	"checklist-api/internal/config"
	"checklist-api/internal/database"
	"checklist-api/internal/models"
	"checklist-api/internal/repository"
	"checklist-api/internal/share"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	senderName   string
	receiverName string
	password     string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo profiles, a checklist and a share request",
	RunE:  seed,
}

func init() {
	rootCmd.Flags().StringVar(&senderName, "sender", "alice", "Name of the profile that owns and shares the checklist")
	rootCmd.Flags().StringVar(&receiverName, "receiver", "bob", "Name of the profile that receives the share request")
	rootCmd.Flags().StringVarP(&password, "password", "p", "password", "Password for both profiles")
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		return err
	}
	stores := repository.New(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		return err
	}
	sender, err := ensureProfile(ctx, stores.Profiles, senderName, string(hash))
	if err != nil {
		return err
	}
	receiver, err := ensureProfile(ctx, stores.Profiles, receiverName, string(hash))
	if err != nil {
		return err
	}

	trip := &models.Checklist{ProfileID: sender.ID, Title: "Trip"}
	if err := stores.Checklists.Create(ctx, trip); err != nil {
		return err
	}
	pack := &models.Task{ChecklistID: trip.ID, Title: "Pack", OrderNumber: 1}
	if err := stores.Tasks.Create(ctx, pack); err != nil {
		return err
	}
	shoes := &models.Task{ChecklistID: trip.ID, ParentID: &pack.ID, Title: "Pack>Shoes", OrderNumber: 2}
	if err := stores.Tasks.Create(ctx, shoes); err != nil {
		return err
	}

	svc := share.NewService(stores.Shares, stores.Profiles, stores.Checklists, clone.New(stores.Checklists, stores.Tasks))
	req, err := svc.Create(ctx, trip.ID, sender.ID, receiver.Name)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Sender:        %s (%s)\n", sender.Name, sender.ID)
	fmt.Printf("✓ Receiver:      %s (%s)\n", receiver.Name, receiver.ID)
	fmt.Printf("✓ Checklist:     %s\n", trip.ID)
	fmt.Printf("✓ Share request: %s\n", req.ID)
	return nil
}

// ensureProfile returns the profile called name, creating it if needed.
func ensureProfile(ctx context.Context, profiles *repository.ProfileStore, name, hash string) (*models.Profile, error) {
	p, err := profiles.GetByName(ctx, name)
	if err == nil {
		return p, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	p = &models.Profile{Name: name, PasswordHash: hash}
	if err := profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
