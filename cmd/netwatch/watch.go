package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/netwatch/internal/banner"
	"github.com/hamed0406/netwatch/internal/domain"
)

func watchCmd(f *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print banner changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			defer a.close()

			p := &bannerPrinter{all: all}
			out := cmd.OutOrStdout()
			a.source.Start()
			if err := a.monitor.Initialize(ctx); err != nil {
				return err
			}
			unsubscribe := a.monitor.Subscribe(func(st domain.NetworkStatus) {
				if line, ok := p.line(st, time.Now()); ok {
					fmt.Fprintln(out, line)
				}
			})
			defer unsubscribe()

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every status update, not only banner changes")
	return cmd
}

// bannerPrinter formats status updates, dropping ones that leave the
// banner unchanged unless all is set.
type bannerPrinter struct {
	all bool

	mu   sync.Mutex
	last banner.Kind
	seen bool
}

func (p *bannerPrinter) line(st domain.NetworkStatus, at time.Time) (string, bool) {
	view := banner.Render(st)
	p.mu.Lock()
	changed := !p.seen || view.Kind != p.last
	p.last, p.seen = view.Kind, true
	p.mu.Unlock()
	if !changed && !p.all {
		return "", false
	}
	return fmt.Sprintf("%s  %-18s connected=%t server=%t type=%s",
		at.Format(time.RFC3339), view.Kind, st.IsConnected, st.IsServerReachable, st.ConnectionType), true
}
