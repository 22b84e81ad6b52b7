package emitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/bus"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/logger"
)

// Options controls the nextalarm-emitter invocation.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Person is the display name the event is emitted for.
	Person string
	// AlarmsFile points to a JSON file holding the alarm collection
	// (mapping of alarm key to alarm fields).
	AlarmsFile string
	// RefreshStart emits a refresh-start event instead of alarm data.
	RefreshStart bool
}

var (
	// errPersonRequired is returned when no person name was provided.
	errPersonRequired = errors.New("person must be provided")
	// errAlarmsFileRequired is returned when an alarm-data event has no payload.
	errAlarmsFileRequired = errors.New("alarms file must be provided for alarm-data events")
)

// Run publishes one event to the configured Kafka topic.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "nextalarm-emitter")

	if opts.Person == "" {
		return errPersonRequired
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	event, err := buildEvent(opts)
	if err != nil {
		return err
	}

	publisher := bus.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	if err := publisher.Publish(ctx, opts.Person, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	logger.InfoKV(ctx, "Event published", "event_type", event.Type, "person", opts.Person)

	return nil
}

// buildEvent assembles the envelope from the invocation options.
func buildEvent(opts *Options) (bus.Event, error) {
	event := bus.Event{
		TimeFired: time.Now(),
		Data: map[string]any{
			"person": opts.Person,
		},
	}

	if opts.RefreshStart {
		event.Type = bus.EventRefreshStart

		return event, nil
	}

	if opts.AlarmsFile == "" {
		return bus.Event{}, errAlarmsFileRequired
	}

	contents, err := os.ReadFile(filepath.Clean(opts.AlarmsFile))
	if err != nil {
		return bus.Event{}, fmt.Errorf("read alarms file: %w", err)
	}

	var alarms map[string]any
	if err := json.Unmarshal(contents, &alarms); err != nil {
		return bus.Event{}, fmt.Errorf("decode alarms file: %w", err)
	}

	event.Type = bus.EventNextAlarm
	event.Data["alarms"] = alarms

	return event, nil
}
