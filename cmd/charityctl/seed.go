package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unclebandit/charity-backend/internal/config"
	"github.com/unclebandit/charity-backend/internal/db"
	"github.com/unclebandit/charity-backend/internal/model"
	"github.com/unclebandit/charity-backend/internal/repository"
	"github.com/unclebandit/charity-backend/internal/service"
)

type seedOptions struct {
	creator string
	secret  string
	count   int
}

func seedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo charities with payment campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, closeStore, err := db.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			return seed(cmd.Context(), store, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.creator, "creator", "demo-user", "subject that owns the seeded charities")
	cmd.Flags().StringVar(&opts.secret, "secret", "demo-secret", "notification secret for the seeded campaigns")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 3, "number of charities to create")
	return cmd
}

var demoCities = []model.Location{
	{Latitude: 55.7558, Longitude: 37.6173},
	{Latitude: 59.9343, Longitude: 30.3351},
	{Latitude: 56.8389, Longitude: 60.6057},
}

// seed goes through the services so the seeded rows satisfy the same rules as API writes.
func seed(ctx context.Context, store repository.Store, opts seedOptions, out io.Writer) error {
	charities := &service.CharityService{Store: store}
	campaigns := &service.CampaignService{Store: store}
	organization := false

	for i := 0; i < opts.count; i++ {
		loc := demoCities[i%len(demoCities)]
		charityID, err := charities.Create(ctx, service.CharityInput{
			Name:             fmt.Sprintf("Demo charity %d", i+1),
			BriefDescription: "Seeded for local development",
			Description:      "A charity created by charityctl seed.",
			Organization:     &organization,
			CreatorID:        opts.creator,
			ManagerContact:   "manager@example.org",
			Location:         &loc,
			Tags:             []string{"demo"},
			Campaigns:        []string{},
		})
		if err != nil {
			return fmt.Errorf("seed charity %d: %w", i+1, err)
		}

		campaignID, err := campaigns.CreateCampaignAndPayment(ctx, service.CampaignInput{
			Yoomoney: fmt.Sprintf("41001000000%04d", i+1),
			Secret:   opts.secret,
			OwnerID:  charityID,
		})
		if err != nil {
			return fmt.Errorf("seed campaign %d: %w", i+1, err)
		}
		fmt.Fprintf(out, "Seeded: charity %s campaign %s\n", charityID, campaignID)
	}

	fmt.Fprintln(out, "Database seeding completed successfully!")
	return nil
}
