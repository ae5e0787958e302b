package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/anihub/anihub-web/internal/backend"
	"github.com/anihub/anihub-web/internal/catalog"
	"github.com/anihub/anihub-web/internal/config"
)

var inspectTimeout time.Duration

var inspectCmd = &cobra.Command{
	Use:   "inspect <home|catalog|anime NAME|watch NAME EP|suggest QUERY>",
	Short: "Call the backend and print the decoded answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *config.GetConfig()
		// Always hit the backend, never a cached copy.
		cfg.Cache.Provider = "none"
		client := backend.NewClient(&cfg)
		defer client.Close()

		ctx, cancel := contextWithTimeout(cmd, inspectTimeout)
		defer cancel()

		var (
			result any
			err    error
		)
		switch target, rest := args[0], args[1:]; target {
		case "home":
			result, err = client.Home(ctx)
		case "catalog":
			q := catalog.DefaultQuery()
			q.Genre, _ = cmd.Flags().GetString("genre")
			q.Format, _ = cmd.Flags().GetString("format")
			q.Sort, _ = cmd.Flags().GetString("sort")
			q.Page, _ = cmd.Flags().GetInt("page")
			result, err = client.Catalog(ctx, q.Values())
		case "anime":
			if len(rest) == 0 {
				return fmt.Errorf("inspect anime needs a NAME")
			}
			result, err = client.AnimeDetail(ctx, strings.Join(rest, " "))
		case "watch":
			if len(rest) < 2 {
				return fmt.Errorf("inspect watch needs NAME and EP")
			}
			ep, convErr := strconv.Atoi(rest[len(rest)-1])
			if convErr != nil {
				return fmt.Errorf("invalid episode %q: %w", rest[len(rest)-1], convErr)
			}
			result, err = client.Stream(ctx, strings.Join(rest[:len(rest)-1], " "), ep)
		case "suggest":
			result, err = client.Suggest(ctx, strings.Join(rest, " "))
		default:
			return fmt.Errorf("unknown inspect target %q", target)
		}
		if err != nil {
			return err
		}

		_, err = pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", result)
		return err
	},
}

func init() {
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", 30*time.Second, "overall deadline for the backend call")
	inspectCmd.Flags().String("genre", catalog.All, "catalog genre filter")
	inspectCmd.Flags().String("format", catalog.All, "catalog format filter")
	inspectCmd.Flags().String("sort", catalog.DefaultSort, "catalog sort order")
	inspectCmd.Flags().Int("page", 1, "catalog page")
}
