package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show game statistics and match history",
		Long:  "Show a user's profile. Without a user id the logged-in user's profile is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/users/me/profile"
			if len(args) == 1 {
				id, err := parseUserID(args[0])
				if err != nil {
					return err
				}
				path = fmt.Sprintf("/api/v1/users/%d/profile", id)
			}

			var result Profile
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
