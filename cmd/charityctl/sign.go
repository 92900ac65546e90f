package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unclebandit/charity-backend/internal/payment"
)

// signNotificationCmd prints the sha1_hash a provider would send, for replaying
// notifications against a local webhook.
func signNotificationCmd() *cobra.Command {
	var (
		n      payment.Notification
		secret string
	)
	cmd := &cobra.Command{
		Use:   "sign-notification",
		Short: "Compute sha1_hash for a payment notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), payment.Sign(n, secret))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&secret, "secret", "", "campaign notification secret")
	f.StringVar(&n.NotificationType, "type", "p2p-incoming", "notification_type")
	f.StringVar(&n.OperationID, "operation-id", "", "operation_id")
	f.StringVar(&n.Amount, "amount", "", "amount")
	f.StringVar(&n.Currency, "currency", "643", "currency")
	f.StringVar(&n.Datetime, "datetime", "", "datetime")
	f.StringVar(&n.Sender, "sender", "", "sender")
	f.StringVar(&n.Codepro, "codepro", "false", "codepro")
	f.StringVar(&n.Label, "label", "", "label")
	return cmd
}
