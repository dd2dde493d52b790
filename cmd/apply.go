// Package cmd holds the colornode subcommands.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/colornode/internal/color"
	"github.com/smazurov/colornode/internal/led"
	"github.com/smazurov/colornode/internal/logging"
)

// LedsFactory opens the configured LED hardware and names the driver used.
type LedsFactory func() (*led.Leds, string, error)

// CreateApplyCmd creates the apply command.
func CreateApplyCmd(newLeds LedsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [#rrggbb]",
		Short: "Apply one colour and exit",
		Long: `Drives a colour to the addressable pixel and both PWM LEDs once, ` +
			`then exits. Nothing is stored; the server applies its own colour on start.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runApply(c.OutOrStdout(), newLeds, args[0])
		},
	}
}

func runApply(out io.Writer, newLeds LedsFactory, hex string) error {
	c, err := color.ParseHex(hex)
	if err != nil {
		return err
	}

	leds, driver, err := newLeds()
	if err != nil {
		return fmt.Errorf("failed to initialize LEDs: %w", err)
	}
	defer leds.Close()

	manager := led.NewManager(led.NewStore(c), leds, nil, logging.GetLogger("led"))
	manager.SetFatalHandler(func(error) {})

	if _, err := manager.ApplyAndStore(led.SourceCLI, &c); err != nil {
		return err
	}

	d, _ := manager.Duties()
	fmt.Fprintf(out, "%s applied via %s\n", c.Hex(), driver)
	fmt.Fprintf(out, "  anode   %v\n", d.Anode)
	fmt.Fprintf(out, "  cathode %v\n", d.Cathode)
	return nil
}
