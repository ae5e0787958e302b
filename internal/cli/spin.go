package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anihub/anihub-web/internal/backend"
	"github.com/anihub/anihub-web/internal/config"
	"github.com/anihub/anihub-web/internal/roulette"
)

var (
	spinGenre string
	spinWidth float64
)

var spinCmd = &cobra.Command{
	Use:   "spin",
	Short: "Run one roulette draw against the backend and print the plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := backend.NewClient(config.GetConfig())
		defer client.Close()

		ctx, cancel := contextWithTimeout(cmd, 30*time.Second)
		defer cancel()

		plan, err := roulette.NewSpinner(client, nil).Spin(ctx, spinGenre)
		if err != nil {
			return err
		}

		winner := plan.Winner()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "genre:   %s (page %d)\n", plan.Genre, plan.Page)
		fmt.Fprintf(out, "reel:    %d cards, winner at index %d\n", len(plan.Reel), plan.WinnerIndex)
		fmt.Fprintf(out, "winner:  %s (id %d)\n", winner.Title.DisplayTitle(), winner.ID)
		fmt.Fprintf(out, "anchor:  %dpx (jitter %+dpx)\n", plan.Anchor, plan.Jitter)
		fmt.Fprintf(out, "offset:  %.1fpx in a %.0fpx container\n", plan.Offset(spinWidth), spinWidth)
		return nil
	},
}

func init() {
	spinCmd.Flags().StringVar(&spinGenre, "genre", "All", "genre to draw from")
	spinCmd.Flags().Float64Var(&spinWidth, "width", 1200, "container width used to compute the final offset")
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
