package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/colornode/cmd"
	"github.com/smazurov/colornode/internal/api"
	"github.com/smazurov/colornode/internal/color"
	"github.com/smazurov/colornode/internal/config"
	"github.com/smazurov/colornode/internal/events"
	"github.com/smazurov/colornode/internal/led"
	"github.com/smazurov/colornode/internal/logging"
	"github.com/smazurov/colornode/internal/metrics/exporters"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":80" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings, disabled while either is empty
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// LED settings
	LedDriver      string `help:"LED driver (auto, periph, sysfs, sim)" default:"auto" toml:"led.driver" env:"LED_DRIVER"`
	LedColor       string `help:"Colour applied at startup" default:"#808080" toml:"led.color" env:"LED_COLOR"`
	LedSpiPort     string `help:"SPI port of the addressable pixel" default:"" toml:"led.spi_port" env:"LED_SPI_PORT"`
	LedPwmFreq     int    `help:"PWM frequency in Hz" default:"1000" toml:"led.pwm_freq" env:"LED_PWM_FREQ"`
	LedPwmBits     int    `help:"PWM duty resolution in bits (periph)" default:"10" toml:"led.pwm_bits" env:"LED_PWM_BITS"`
	LedAnodePins   string `help:"Anode pins red,green,blue (periph)" default:"GPIO12,GPIO13,GPIO18" toml:"led.anode_pins" env:"LED_ANODE_PINS"`
	LedCathodePins string `help:"Cathode pins red,green,blue (periph)" default:"GPIO19,GPIO20,GPIO21" toml:"led.cathode_pins" env:"LED_CATHODE_PINS"`
	LedAnodePwm    string `help:"Anode PWM channels chip:index,... (sysfs)" default:"0:0,0:1,0:2" toml:"led.anode_pwm" env:"LED_ANODE_PWM"`
	LedCathodePwm  string `help:"Cathode PWM channels chip:index,... (sysfs)" default:"1:0,1:1,1:2" toml:"led.cathode_pwm" env:"LED_CATHODE_PWM"`
	LedSysfsRoot   string `help:"sysfs PWM class directory" default:"/sys/class/pwm" toml:"led.sysfs_root" env:"LED_SYSFS_ROOT"`
	LedSimMaxDuty  int    `help:"Max duty of simulated channels" default:"1023" toml:"led.sim_max_duty" env:"LED_SIM_MAX_DUTY"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLed    string `help:"LED logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingAPI    string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func (o *Options) ledConfig() led.Config {
	return led.Config{
		Driver:          o.LedDriver,
		SPIPort:         o.LedSpiPort,
		PWMFreqHz:       o.LedPwmFreq,
		PWMBits:         o.LedPwmBits,
		AnodePins:       splitList(o.LedAnodePins),
		CathodePins:     splitList(o.LedCathodePins),
		AnodeChannels:   splitList(o.LedAnodePwm),
		CathodeChannels: splitList(o.LedCathodePwm),
		SysfsRoot:       o.LedSysfsRoot,
		SimMaxDuty:      o.LedSimMaxDuty,
	}
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"led": o.LoggingLed,
			"api": o.LoggingAPI,
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	var (
		cli     humacli.CLI
		current *Options
	)

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		current = opts

		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")

		var (
			server  *api.Server
			leds    *led.Leds
			watcher *config.Watcher[logging.Config]
			cancel  context.CancelFunc
		)

		hooks.OnStart(func() {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			// Create event bus for in-process event handling
			eventBus := events.New()
			logging.SetLogCallback(func(entry logging.LogEntry) {
				eventBus.Publish(api.LogEventFromEntry(entry))
			})

			initial, err := color.ParseHex(opts.LedColor)
			if err != nil {
				logger.Warn("Invalid startup colour, using default", "color", opts.LedColor, "error", err)
				initial = color.Default
			}

			var driver string
			leds, driver, err = led.New(opts.ledConfig(), logging.GetLogger("led"))
			if err != nil {
				logger.Error("Failed to initialize LEDs", "error", err)
				os.Exit(1)
			}

			manager := led.NewManager(led.NewStore(initial), leds, eventBus, logging.GetLogger("led"))
			if startErr := manager.Start(); startErr != nil {
				logger.Warn("Startup colour not applied", "error", startErr)
			}

			// Log levels follow the config file without a restart
			watcher = config.NewConfigWatcher(opts.Config, config.LoadLoggingConfig, logger)
			watcher.OnReload(func(cfg logging.Config) {
				logger.Info("Logging levels reloaded", "level", cfg.Level)
				logging.UpdateLevels(cfg)
			})
			if watchErr := watcher.Start(ctx); watchErr != nil {
				logger.Warn("Config file not watched", "path", opts.Config, "error", watchErr)
			}

			server = api.NewServer(&api.Options{
				AuthUsername:      opts.AuthUsername,
				AuthPassword:      opts.AuthPassword,
				Colors:            manager,
				EventBus:          eventBus,
				Driver:            driver,
				PrometheusHandler: exporters.HTTPHandler(),
			})

			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("sd_notify failed", "error", notifyErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port, "driver", driver)
			if startErr := server.Start(opts.Port); startErr != nil {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

			if server != nil {
				ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				if stopErr := server.Stop(ctx); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
			}
			if cancel != nil {
				cancel()
			}
			if watcher != nil {
				_ = watcher.Stop()
			}
			// Release the hardware after requests stop arriving
			if leds != nil {
				if closeErr := leds.Close(); closeErr != nil {
					logger.Error("Error closing LED hardware", "error", closeErr)
				}
			}
		})
	})

	newLeds := func() (*led.Leds, string, error) {
		return led.New(current.ledConfig(), logging.GetLogger("led"))
	}
	cli.Root().AddCommand(cmd.CreateApplyCmd(newLeds))
	cli.Root().AddCommand(cmd.CreateProbeCmd(newLeds))

	// Run the CLI
	cli.Run()
}

