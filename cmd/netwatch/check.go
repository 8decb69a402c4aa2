package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/netwatch/internal/banner"
	"github.com/hamed0406/netwatch/internal/domain"
)

func checkCmd(f *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe once and print the banner; exits 1 when a banner would show",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.close()

			started := time.Now()
			st := a.monitor.Refresh(cmd.Context())
			view := banner.Render(st)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{
					"status": st,
					"state":  st.State(),
					"banner": view,
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "target:   %s\n", cfg.BaseURL)
				fmt.Fprintf(out, "link:     connected=%t type=%s internet=%s\n",
					st.IsConnected, st.ConnectionType, domain.TriString(st.IsInternetReachable))
				fmt.Fprintf(out, "server:   reachable=%t (%s)\n", st.IsServerReachable, time.Since(started).Round(time.Millisecond))
				fmt.Fprintf(out, "banner:   %s\n", describe(view))
			}

			if view.Visible {
				return exitError{msg: string(view.Kind)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func describe(v banner.View) string {
	if !v.Visible {
		return "hidden"
	}
	return fmt.Sprintf("%s - %s", v.Title, v.Message)
}
