package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"routine-planner/internal/auth"
	"routine-planner/internal/model"
)

var carryOverCmd = &cobra.Command{
	Use:   "carry-over",
	Short: "Move a user's unfinished past tasks to today",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetString("user")
		date, _ := cmd.Flags().GetString("date")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runCarryOver(ctx, a, cmd.OutOrStdout(), userID, date)
		})
	},
}

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Create routine tasks for a date",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetString("user")
		date, _ := cmd.Flags().GetString("date")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runMaterialize(ctx, a, cmd.OutOrStdout(), userID, date)
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the user with the given email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runToken(ctx, a, cmd.OutOrStdout(), email)
		})
	},
}

func init() {
	carryOverCmd.Flags().String("user", "", "User id (required)")
	carryOverCmd.Flags().String("date", "", "Displayed date, YYYY-MM-DD (default today)")
	_ = carryOverCmd.MarkFlagRequired("user")

	materializeCmd.Flags().String("user", "", "User id (default all users)")
	materializeCmd.Flags().String("date", "", "Date, YYYY-MM-DD (default today)")

	tokenCmd.Flags().String("email", "", "Email of the user (required)")
	_ = tokenCmd.MarkFlagRequired("email")
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// dateOrToday parses raw, falling back to today in the configured zone.
func dateOrToday(raw string, today model.Date) (model.Date, error) {
	if raw == "" {
		return today, nil
	}
	return model.ParseDate(raw)
}

func runCarryOver(ctx context.Context, a *app, out io.Writer, userID, rawDate string) error {
	date, err := dateOrToday(rawDate, a.days.Today())
	if err != nil {
		return err
	}
	if date != a.days.Today() {
		fmt.Fprintf(out, "%s is not today (%s), nothing to carry over\n", date, a.days.Today())
		return nil
	}
	moved, err := a.carry.Run(ctx, userID, date)
	if err != nil {
		return fmt.Errorf("carry-over: %w", err)
	}
	fmt.Fprintf(out, "moved %d task(s) to %s\n", moved, date)
	return nil
}

func runMaterialize(ctx context.Context, a *app, out io.Writer, userID, rawDate string) error {
	date, err := dateOrToday(rawDate, a.routines.Today())
	if err != nil {
		return err
	}
	var created int
	if userID == "" {
		created, err = a.routines.MaterializeAll(ctx, date)
	} else {
		created, err = a.routines.Materialize(ctx, userID, date)
	}
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	fmt.Fprintf(out, "created %d routine task(s) for %s\n", created, date)
	return nil
}

func runToken(ctx context.Context, a *app, out io.Writer, email string) error {
	if a.cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	user, err := a.profiles.FromEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := auth.GenerateJWT(user.ID, a.cfg.JWTSecret, auth.DefaultTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
