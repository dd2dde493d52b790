// Package logging provides structured logging with per-module log levels.
//
// Every logger writes to stdout when it is connected, to the systemd journal
// when journald is running, and to an in-memory ring buffer that backs the
// /api/logs/stream endpoint.
//
// Initialize once at startup, then get a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"led":  "debug",
//			"http": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("led")
//	logger.Info("Set duties", "anode", d.Anode)
//
// Loggers obtained before Initialize keep their identity; their levels are
// held in a slog.LevelVar and follow later Initialize and UpdateLevels calls.
//
// Journal entries carry SYSLOG_IDENTIFIER=colornode and one upper-case field
// per attribute:
//
//	journalctl -t colornode -f
//	journalctl -t colornode MODULE=led
//
// TOML:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	led = "debug"
package logging
