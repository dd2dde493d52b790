package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/colornode/internal/led"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd(newLeds LedsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Show the LED driver and PWM resolution",
		Long:  `Opens the configured LED hardware and prints the driver in use and the max duty of every PWM channel.`,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runProbe(c.OutOrStdout(), newLeds)
		},
	}
}

func runProbe(out io.Writer, newLeds LedsFactory) error {
	leds, driver, err := newLeds()
	if err != nil {
		return fmt.Errorf("failed to initialize LEDs: %w", err)
	}
	defer leds.Close()

	fmt.Fprintf(out, "driver: %s\n", driver)
	bank := leds.Bank()
	for _, t := range []*led.Triple{bank.Anode(), bank.Cathode()} {
		fmt.Fprintf(out, "%s (%s):", t.Name(), t.Polarity())
		for i := range 3 {
			fmt.Fprintf(out, " %d", t.Channel(i).MaxDuty())
		}
		fmt.Fprintln(out)
	}
	return nil
}
