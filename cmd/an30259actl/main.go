// Command an30259actl is a command-line client for the an30259ad REST API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/micro-nova/an30259a/internal/models"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr   string
		apiKey string
	)
	cl := func() *client { return newClient(addr, apiKey) }

	root := &cobra.Command{
		Use:          "an30259actl",
		Short:        "Control an AN30259A LED driver through an30259ad",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", envOr("AN30259A_ADDR", "http://localhost:8259"), "daemon base URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("AN30259A_API_KEY"), "API key for secured daemons")

	root.AddCommand(
		newStateCmd(cl),
		newKnobCmd(cl),
		newPatternCmd(cl),
		newBlinkCmd(cl),
		newChannelCmd(cl),
		newTunablesCmd(cl),
		newWatchCmd(cl),
	)
	return root
}

func newStateCmd(cl func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the full device state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := cl().state(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newKnobCmd(cl func() *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knob",
		Short: "Read and write text knobs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every knob with its current value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				kvs, err := cl().knobs(cmd.Context())
				if err != nil {
					return err
				}
				for _, kv := range kvs {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", kv.Name, kv.Value)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Read a knob",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kv, err := cl().knob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), kv.Value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Write a knob, exactly as if echoed into its file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				kv, err := cl().setKnob(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if kv.Value != "" {
					fmt.Fprintln(cmd.OutOrStdout(), kv.Value)
				}
				return nil
			},
		},
	)
	return cmd
}

func newPatternCmd(cl func() *client) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "pattern [name|index]",
		Short: "Trigger a named lighting pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list || len(args) == 0 {
				names, err := cl().patterns(cmd.Context())
				if err != nil {
					return err
				}
				for i, n := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", i, n)
				}
				return nil
			}
			st, err := cl().pattern(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.Pattern)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the available patterns")
	return cmd
}

func newBlinkCmd(cl func() *client) *cobra.Command {
	var onMs, offMs int
	cmd := &cobra.Command{
		Use:   "blink <0xRRGGBB>",
		Short: "Blink all three channels with one color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cl().blink(cmd.Context(), models.BlinkRequest{Color: args[0], OnMs: onMs, OffMs: offMs})
			return err
		},
	}
	cmd.Flags().IntVar(&onMs, "on", 500, "on time in ms (0 with --off 0 turns the channels off)")
	cmd.Flags().IntVar(&offMs, "off", 500, "off time in ms (0 means solid)")
	return cmd
}

func newChannelCmd(cl func() *client) *cobra.Command {
	var (
		brightness, delayOn, delayOff, raw int
		blink                              bool
	)
	cmd := &cobra.Command{
		Use:   "channel <r|g|b|0-2>",
		Short: "Update or show one channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			if flags.Changed("raw") {
				if raw < 0 || raw > 255 {
					return fmt.Errorf("raw code %d out of range 0-255", raw)
				}
				ch, err := cl().setRaw(ctx, args[0], raw)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ch)
			}

			var upd models.ChannelUpdate
			if flags.Changed("brightness") {
				upd.Brightness = &brightness
			}
			if flags.Changed("delay-on") {
				upd.DelayOnMs = &delayOn
			}
			if flags.Changed("delay-off") {
				upd.DelayOffMs = &delayOff
			}
			if flags.Changed("blink") {
				upd.Blink = &blink
			}
			ch, err := cl().setChannel(ctx, args[0], upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ch)
		},
	}
	cmd.Flags().IntVar(&brightness, "brightness", 0, "brightness 0-255")
	cmd.Flags().IntVar(&delayOn, "delay-on", 0, "blink on time in ms")
	cmd.Flags().IntVar(&delayOff, "delay-off", 0, "blink off time in ms")
	cmd.Flags().BoolVar(&blink, "blink", false, "start or stop blinking with the stored delays")
	cmd.Flags().IntVar(&raw, "raw", 0, "write an unscaled current code 0-255")
	return cmd
}

func newTunablesCmd(cl func() *client) *cobra.Command {
	var (
		fade, intensity, speed, lowPower, disabled, imax int
		slopes                                          []int
	)
	cmd := &cobra.Command{
		Use:   "tunables",
		Short: "Show or update the intensity tunables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			var upd models.TunablesUpdate
			set := func(name string, v *int, dst **int) {
				if flags.Changed(name) {
					*dst = v
				}
			}
			set("fade", &fade, &upd.Fade)
			set("intensity", &intensity, &upd.Intensity)
			set("speed", &speed, &upd.Speed)
			set("lowpower", &lowPower, &upd.LowPower)
			set("disable-patterns", &disabled, &upd.PatternsDisabled)
			set("imax", &imax, &upd.IMax)
			if flags.Changed("slopes") {
				if len(slopes) != 4 {
					return fmt.Errorf("--slopes needs exactly 4 values, got %d", len(slopes))
				}
				var s [4]int
				copy(s[:], slopes)
				upd.Slopes = &s
			}

			tun, err := cl().setTunables(cmd.Context(), upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tun)
		},
	}
	cmd.Flags().IntVar(&fade, "fade", 0, "0 or 1")
	cmd.Flags().IntVar(&intensity, "intensity", 0, "0-40")
	cmd.Flags().IntVar(&speed, "speed", 0, "1-15")
	cmd.Flags().IntVar(&lowPower, "lowpower", 0, "0 or 1")
	cmd.Flags().IntVar(&disabled, "disable-patterns", 0, "0 or 1")
	cmd.Flags().IntVar(&imax, "imax", 0, "current range 0-3")
	cmd.Flags().IntSliceVar(&slopes, "slopes", nil, "four slope presets, e.g. 1,2,3,4")
	return cmd
}

func newWatchCmd(cl func() *client) *cobra.Command {
	var kinds string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream state and pattern events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return cl().subscribe(cmd.Context(), kinds, func(line string) {
				if line != "" && line[0] != ':' {
					fmt.Fprintln(out, line)
				}
			})
		},
	}
	cmd.Flags().StringVar(&kinds, "kinds", "", "comma-separated event kinds: commit, pattern, error")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
