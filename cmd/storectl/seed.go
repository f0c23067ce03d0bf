package main

import (
	"fmt"

	"github.com/spf13/cobra"

	adminapp "github.com/dwikikusuma/storefront/internal/admin/app"
	adminpg "github.com/dwikikusuma/storefront/internal/admin/infra/postgres"
	customerapp "github.com/dwikikusuma/storefront/internal/customer/app"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	paymentpg "github.com/dwikikusuma/storefront/internal/payment/infra/postgres"
	"github.com/dwikikusuma/storefront/pkg/config"
)

func seedCommand(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "insert reference data",
	}
	cmd.AddCommand(seedPaymentOptionCommand(cfg), seedAdminCommand(cfg))
	return cmd
}

func seedPaymentOptionCommand(cfg config.Config) *cobra.Command {
	var inactive bool

	cmd := &cobra.Command{
		Use:   "payment-option [code] [name]",
		Short: "create or update a payment option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := paymentapp.NewService(paymentpg.NewOptionRepo(db))
			opt, err := svc.Upsert(cmd.Context(), args[0], args[1], !inactive)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payment option %s (%s) active=%t\n", opt.Code, opt.Name, opt.IsActive)
			return nil
		},
	}
	cmd.Flags().BoolVar(&inactive, "inactive", false, "store the option as inactive")
	return cmd
}

func seedAdminCommand(cfg config.Config) *cobra.Command {
	var fullName string

	cmd := &cobra.Command{
		Use:   "admin [email] [password]",
		Short: "create a back-office account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := adminapp.NewService(adminpg.NewAdminRepo(db), customerapp.NewVerifier(cfg.BcryptCost))
			a, err := svc.Create(cmd.Context(), args[0], fullName, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", a.Email, a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "Administrator", "display name")
	return cmd
}
