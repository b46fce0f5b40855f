package logging

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"asu_schedule_bot/internal/config"
)

func TestSetupUsesJSONFormatterInProduction(t *testing.T) {
	resetLogger()

	entry, err := Setup(config.Config{AppEnv: config.EnvProduction, LogLevel: "info", StoreDriver: config.DriverPostgres})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jsonFormatter, ok := entry.Logger.Formatter.(*logrus.JSONFormatter)
	if !ok {
		t.Fatalf("expected JSON formatter, got %T", entry.Logger.Formatter)
	}

	if jsonFormatter.FieldMap[logrus.FieldKeyTime] != "ts" {
		t.Fatalf("expected ts field for timestamps, got %q", jsonFormatter.FieldMap[logrus.FieldKeyTime])
	}
	if entry.Data["service"] != serviceName {
		t.Fatalf("expected service field, got %v", entry.Data["service"])
	}
	if entry.Data["env"] != config.EnvProduction {
		t.Fatalf("expected env field to be %q, got %v", config.EnvProduction, entry.Data["env"])
	}
	if entry.Data["store"] != config.DriverPostgres {
		t.Fatalf("expected store field to be %q, got %v", config.DriverPostgres, entry.Data["store"])
	}
}

func TestSetupUsesTextFormatterInDevelopment(t *testing.T) {
	resetLogger()

	entry, err := Setup(config.Config{AppEnv: config.EnvDevelopment, LogLevel: "debug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := entry.Logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected Text formatter, got %T", entry.Logger.Formatter)
	}
	if entry.Logger.Level != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", entry.Logger.Level)
	}
}

func TestSetupRejectsInvalidLogLevel(t *testing.T) {
	resetLogger()

	if _, err := Setup(config.Config{AppEnv: config.EnvDevelopment, LogLevel: "loud"}); err == nil {
		t.Fatalf("expected error for invalid log level")
	}

	if baseLogger != nil {
		t.Fatalf("base logger should remain unset after failure")
	}
}

func TestLoggingHelpersIncludeContextAndLevels(t *testing.T) {
	resetLogger()

	logger, hook := test.NewNullLogger()
	baseLogger = logger.WithFields(logrus.Fields{
		"service": serviceName,
		"env":     config.EnvDevelopment,
	})

	Info("hello world", logrus.Fields{"event": "startup"})
	Warn("careful now", nil)
	Error("boom", logrus.Fields{"error": "fail"})

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	if entries[0].Level != logrus.InfoLevel || entries[0].Data["event"] != "startup" {
		t.Fatalf("expected info level with startup event, got level=%s data=%v", entries[0].Level, entries[0].Data)
	}
	if entries[1].Level != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[1].Level)
	}
	if entries[2].Level != logrus.ErrorLevel || entries[2].Data["error"] != "fail" {
		t.Fatalf("expected error level with error field, got level=%s data=%v", entries[2].Level, entries[2].Data)
	}

	WithContext(nil, Context{UserID: 42, ChatID: -1001, Event: "ping", PassID: "p-1", Trigger: "daily"}).Info("ctx log")

	last := hook.LastEntry()
	if last.Data["user_id"] != int64(42) || last.Data["chat_id"] != int64(-1001) || last.Data["event"] != "ping" {
		t.Fatalf("expected context fields, got %v", last.Data)
	}
	if last.Data["pass_id"] != "p-1" || last.Data["trigger"] != "daily" {
		t.Fatalf("expected broadcast fields, got %v", last.Data)
	}
	if last.Data["service"] != serviceName {
		t.Fatalf("expected base fields preserved, got %v", last.Data)
	}
}

func TestCronLoggerForwardsErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()

	cl := CronLogger(logrus.NewEntry(logger))
	cl.Error(errors.New("job failed"), "panic", "job", "daily_08", "dangling")

	last := hook.LastEntry()
	if last == nil {
		t.Fatalf("expected an entry to be logged")
	}
	if last.Level != logrus.ErrorLevel || last.Data["event"] != "cron_error" {
		t.Fatalf("expected cron_error at error level, got level=%s data=%v", last.Level, last.Data)
	}
	if last.Data["job"] != "daily_08" || last.Data["component"] != "cron" {
		t.Fatalf("expected key/value pairs to become fields, got %v", last.Data)
	}
	if _, ok := last.Data["dangling"]; ok {
		t.Fatalf("unpaired key should be dropped, got %v", last.Data)
	}
}

func TestWithContextDerivesFromGivenEntry(t *testing.T) {
	logger, hook := test.NewNullLogger()
	parent := logrus.NewEntry(logger).WithField("component", "broadcast")

	WithContext(parent, Context{PassID: "p-2", Trigger: "next_lesson"}).Info("pass")

	last := hook.LastEntry()
	if last == nil || last.Data["component"] != "broadcast" {
		t.Fatalf("expected parent fields preserved, got %+v", last)
	}
	if last.Data["pass_id"] != "p-2" || last.Data["trigger"] != "next_lesson" {
		t.Fatalf("expected pass fields, got %v", last.Data)
	}
	if _, ok := last.Data["user_id"]; ok {
		t.Fatalf("expected zero user id to be omitted, got %v", last.Data)
	}

	if got := WithContext(parent, Context{}); got != parent {
		t.Fatalf("expected empty context to return the entry unchanged")
	}
}
