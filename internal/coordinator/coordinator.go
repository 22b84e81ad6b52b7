package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/bus"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/logger"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/normalize"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/notify"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/repository/state"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/schedule"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/weekday"
)

// Timers is the point-in-time and duration timer interface consumed by the
// coordinator. Scheduling an existing id replaces the previous task.
type Timers interface {
	At(id string, when time.Time, callback func()) error
	After(id string, d time.Duration, callback func()) error
	Cancel(id string) bool
}

// Options carries the normalization and liveness settings read from config.
type Options struct {
	// Location is the timezone all alarms are interpreted in.
	Location *time.Location
	// WeekdayLocale selects the day-name locale, or "auto".
	WeekdayLocale string
	// WeekdayCustomMap is the JSON override merged into the weekday tables.
	WeekdayCustomMap string
	// RefreshTimeout is how long an announced refresh may take before the
	// person is flagged with a refresh problem.
	RefreshTimeout time.Duration
}

// Coordinator processes inbound events and timer callbacks for all persons.
type Coordinator struct {
	// mu serializes event handling, timer callbacks and persistence.
	mu sync.Mutex
	// opts are the normalization and liveness settings.
	opts Options
	// repo persists the snapshot after every mutation.
	repo state.Repository
	// timers schedules rollover and refresh-timeout callbacks.
	timers Timers
	// dispatcher broadcasts update and new-person signals.
	dispatcher notify.Dispatcher
	// persons holds the per-person state, keyed by slug.
	persons map[string]*alarm.PersonState
	// now returns the current instant; replaced in tests.
	now func() time.Time
	// newToken mints refresh correlation tokens; replaced in tests.
	newToken func() string
}

// New creates a coordinator. Call Restore before Attach so persisted state
// is rebuilt ahead of live events.
func New(repo state.Repository, timers Timers, dispatcher notify.Dispatcher, opts Options) *Coordinator {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &Coordinator{
		opts:       opts,
		repo:       repo,
		timers:     timers,
		dispatcher: dispatcher,
		persons:    make(map[string]*alarm.PersonState),
		now:        time.Now,
		newToken:   uuid.NewString,
	}
}

// Attach subscribes the coordinator to both inbound event types.
func (c *Coordinator) Attach(b bus.Bus) {
	b.Subscribe(bus.EventNextAlarm, c.HandleAlarmEvent)
	b.Subscribe(bus.EventRefreshStart, c.HandleRefreshStart)
}

// Persons returns the known slugs.
func (c *Coordinator) Persons() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	slugs := make([]string, 0, len(c.persons))
	for slug := range c.persons {
		slugs = append(slugs, slug)
	}

	return slugs
}

// PersonState returns the state for a slug, or nil when unknown.
func (c *Coordinator) PersonState(slug string) *alarm.PersonState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.persons[slug]
}

// HandleAlarmEvent processes one alarm-data event: normalize, schedule,
// replace the person's state, rearm the rollover timer, persist and notify.
// Any internal failure is contained here; previously-good state survives.
func (c *Coordinator) HandleAlarmEvent(ctx context.Context, event bus.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer c.recoverHandler(ctx, event.Type)

	personRaw, ok := stringField(event.Data, "person")
	if !ok {
		logger.WarnKV(ctx, "Received alarm event without person", "event_type", event.Type)

		return
	}

	alarmsRaw, ok := event.Data["alarms"].(map[string]any)
	if !ok {
		logger.WarnKV(ctx, "Alarm event does not contain alarm dictionary", "person", personRaw)

		return
	}

	personState := c.resolvePerson(ctx, personRaw)
	personState.Person = personRaw

	maps, mapErrors := weekday.BuildMaps(c.opts.WeekdayCustomMap)
	if len(mapErrors) > 0 {
		logger.WarnKV(ctx, "Custom weekday map issues", "errors", strings.Join(mapErrors, "; "))
	}

	normalized := normalize.Event(alarmsRaw, c.opts.Location, c.opts.WeekdayLocale, maps, mapErrors)

	// The event's own timestamp keeps results reproducible under delayed
	// processing and replay.
	reference := event.TimeFired
	if reference.IsZero() {
		reference = c.now()
	}

	computation := schedule.NextAlarm(normalized.Alarms, reference, c.opts.Location)

	personState.NormalizedAlarms = normalized.Alarms
	personState.ParseErrors = normalized.ParseErrors
	personState.MapErrors = normalized.MapErrors
	personState.MapLocale = normalized.MapLocale
	personState.LastEventTime = timePtr(reference)
	personState.RawEvent = rawEventMirror(event)
	applyComputation(personState, computation)
	personState.MapVersion = alarm.MapVersion

	// Alarm data arriving completes any pending refresh cycle.
	now := c.now()
	personState.LastRefreshEnd = timePtr(now)
	c.clearRefreshTimer(personState)
	personState.RefreshProblem = false

	c.scheduleRollover(personState)
	c.persist(ctx)
	logger.DebugKV(ctx, "Processed alarm event",
		"person", personState.Person, "next_alarm_time", alarm.FormatTimePtr(personState.NextAlarmTime))
	c.notifyPersonUpdate(ctx, personState)
}

// HandleRefreshStart processes a refresh-start event: stamp the start, mint
// a fresh token and arm the timeout timer.
func (c *Coordinator) HandleRefreshStart(ctx context.Context, event bus.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer c.recoverHandler(ctx, event.Type)

	personRaw, ok := stringField(event.Data, "person")
	if !ok {
		logger.WarnKV(ctx, "Received refresh-start event without person", "event_type", event.Type)

		return
	}

	personState := c.resolvePerson(ctx, personRaw)
	personState.Person = personRaw

	now := c.now()
	personState.LastRefreshStart = timePtr(now)
	c.clearRefreshTimer(personState)
	personState.RefreshProblem = false

	// Latest armed token wins: an older timeout firing later compares its
	// token against this one and becomes a no-op.
	token := c.newToken()
	personState.RefreshToken = token
	timerID := "refresh:" + personState.Slug
	personState.RefreshTimerID = timerID

	if err := c.timers.After(timerID, c.opts.RefreshTimeout, func() {
		c.onRefreshTimeout(context.WithoutCancel(ctx), personState.Slug, token)
	}); err != nil {
		logger.ErrorKV(ctx, "Failed to arm refresh timeout", "person", personRaw, "error", err)
	}

	c.persist(ctx)
	c.notifyPersonUpdate(ctx, personState)
}

// Restore rebuilds person state from the persisted snapshot at startup.
// Corrupt individual records are skipped with a diagnostic.
func (c *Coordinator) Restore(ctx context.Context) error {
	persons, err := c.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil
		}

		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for slug, raw := range persons {
		var stored alarm.StoredPerson
		if err := json.Unmarshal(raw, &stored); err != nil {
			logger.WarnKV(ctx, "Failed to restore person state", "slug", slug, "error", err)

			continue
		}

		restored, err := alarm.PersonFromStored(slug, stored)
		if err != nil {
			logger.WarnKV(ctx, "Failed to restore person state", "slug", slug, "error", err)

			continue
		}

		c.persons[slug] = restored

		reference := c.now()
		if restored.NextAlarmTime != nil && !reference.After(*restored.NextAlarmTime) {
			// The stored time is still ahead: recompute from just before it
			// so changed inputs are noticed without visibly moving the
			// current period's occurrence.
			near := restored.NextAlarmTime.Add(-time.Second)
			applyComputation(restored, schedule.NextAlarm(restored.NormalizedAlarms, near, c.opts.Location))
		} else {
			// Deferred rollover: the stored time passed while we were down.
			c.refreshSchedule(restored, reference)
		}

		c.scheduleRollover(restored)
	}

	return nil
}

// Shutdown cancels all outstanding timers and writes a final snapshot.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, personState := range c.persons {
		if personState.RolloverTimerID != "" {
			c.timers.Cancel(personState.RolloverTimerID)
			personState.RolloverTimerID = ""
		}

		c.clearRefreshTimer(personState)
	}

	c.persist(ctx)
}

// resolvePerson finds or creates the state for a raw person name. A person
// whose display name matches an existing state is reused even when the slug
// function changed across versions.
func (c *Coordinator) resolvePerson(ctx context.Context, personRaw string) *alarm.PersonState {
	slug := alarm.Slugify(personRaw)
	if slug == "" {
		slug = strings.ToLower(strings.TrimSpace(personRaw))
	}

	if personState, ok := c.persons[slug]; ok {
		return personState
	}

	for _, existing := range c.persons {
		if existing.Person == personRaw {
			return existing
		}
	}

	personState := alarm.NewPersonState(slug, personRaw)
	c.persons[slug] = personState

	logger.InfoKV(ctx, "Tracking new person", "person", personRaw, "slug", slug)
	c.dispatcher.Send(ctx, notify.NewPersonSignal, map[string]any{"slug": slug, "person": personRaw})

	return personState
}

// onRollover fires when the armed next-alarm instant passes.
func (c *Coordinator) onRollover(slug string, firedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := logger.WithName(context.Background(), "rollover")

	personState, ok := c.persons[slug]
	if !ok {
		return
	}

	// The scheduler pops a due task before running its callback on a fresh
	// goroutine, so a cancel issued in that window is a no-op and the
	// callback still arrives here. The latest armed instant wins: anything
	// else is a superseded timer reporting an alarm that never fired.
	if personState.NextAlarmTime == nil || !personState.NextAlarmTime.Equal(firedAt) {
		logger.DebugKV(ctx, "Ignoring stale rollover", "slug", slug,
			"fired_at", alarm.FormatTime(firedAt))

		return
	}

	personState.RolloverTimerID = ""
	personState.PreviousAlarmKey = personState.NextAlarmKey
	personState.PreviousAlarmTime = personState.NextAlarmTime

	// Recompute from the instant that just fired, not wall clock: the new
	// next time must never precede it.
	c.refreshSchedule(personState, firedAt)
	c.scheduleRollover(personState)
	c.persist(ctx)
	logger.DebugKV(ctx, "Rollover executed", "person", personState.Person,
		"next_alarm_time", alarm.FormatTimePtr(personState.NextAlarmTime))
	c.notifyPersonUpdate(ctx, personState)
}

// onRefreshTimeout fires when an announced refresh did not deliver data in
// time. A token mismatch means a newer cycle superseded this timer.
func (c *Coordinator) onRefreshTimeout(ctx context.Context, slug, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	personState, ok := c.persons[slug]
	if !ok {
		return
	}

	if personState.RefreshToken != token {
		logger.DebugKV(ctx, "Ignoring stale refresh timeout", "slug", slug)

		return
	}

	personState.RefreshProblem = true
	personState.RefreshTimerID = ""
	personState.RefreshToken = ""

	c.persist(ctx)
	logger.WarnKV(ctx, "Refresh did not complete in time", "person", personState.Person)
	c.notifyPersonUpdate(ctx, personState)
}

// refreshSchedule recomputes the person's schedule against a reference
// instant, short-circuiting when no alarms are known at all.
func (c *Coordinator) refreshSchedule(personState *alarm.PersonState, reference time.Time) {
	if len(personState.NormalizedAlarms) == 0 {
		personState.NextAlarmKey = ""
		personState.NextAlarmTime = nil
		personState.Note = alarm.NoteNoAlarms
		personState.Schedule = make(map[string]*time.Time)

		return
	}

	applyComputation(personState, schedule.NextAlarm(personState.NormalizedAlarms, reference, c.opts.Location))
	personState.MapVersion = alarm.MapVersion
}

// scheduleRollover arms the rollover timer for the current next-alarm time,
// canceling any previous one first.
func (c *Coordinator) scheduleRollover(personState *alarm.PersonState) {
	if personState.RolloverTimerID != "" {
		c.timers.Cancel(personState.RolloverTimerID)
		personState.RolloverTimerID = ""
	}

	if personState.NextAlarmTime == nil {
		return
	}

	timerID := "rollover:" + personState.Slug
	firesAt := *personState.NextAlarmTime
	personState.RolloverTimerID = timerID

	slug := personState.Slug
	if err := c.timers.At(timerID, firesAt, func() {
		c.onRollover(slug, firesAt)
	}); err != nil {
		personState.RolloverTimerID = ""

		logger.ErrorKV(context.Background(), "Failed to arm rollover timer",
			"slug", slug, "error", err)
	}
}

// clearRefreshTimer cancels a pending refresh-timeout timer and invalidates
// its token.
func (c *Coordinator) clearRefreshTimer(personState *alarm.PersonState) {
	if personState.RefreshTimerID != "" {
		c.timers.Cancel(personState.RefreshTimerID)
		personState.RefreshTimerID = ""
	}

	personState.RefreshToken = ""
}

// persist writes the full snapshot. Failures are logged and processing
// continues; the previous durable snapshot remains authoritative.
func (c *Coordinator) persist(ctx context.Context) {
	stored := make(map[string]alarm.StoredPerson, len(c.persons))
	for slug, personState := range c.persons {
		stored[slug] = personState.ToStored()
	}

	if err := c.repo.Save(ctx, stored); err != nil {
		logger.Errorf(ctx, "Failed to persist snapshot: %v", err)
	}
}

// notifyPersonUpdate broadcasts the per-person update signal with a small
// summary payload.
func (c *Coordinator) notifyPersonUpdate(ctx context.Context, personState *alarm.PersonState) {
	payload := map[string]any{
		"slug":            personState.Slug,
		"person":          personState.Person,
		"next_alarm_key":  personState.NextAlarmKey,
		"next_alarm_time": alarm.FormatTimePtr(personState.NextAlarmTime),
		"note":            personState.Note,
		"refresh_problem": personState.RefreshProblem,
	}

	c.dispatcher.Send(ctx, notify.PersonUpdatedSignal(personState.Slug), payload)
}

// recoverHandler is the outer event-handling boundary: unexpected failures
// are logged and contained, leaving prior state intact.
func (c *Coordinator) recoverHandler(ctx context.Context, eventType string) {
	if r := recover(); r != nil {
		logger.ErrorKV(ctx, "Recovered from failure while handling event",
			"event_type", eventType, "panic", r)
	}
}

// applyComputation copies a scheduling result onto the person state.
func applyComputation(personState *alarm.PersonState, computation *alarm.NextAlarmComputation) {
	if computation.Alarm != nil {
		personState.NextAlarmKey = computation.Alarm.Key
	} else {
		personState.NextAlarmKey = ""
	}

	personState.NextAlarmTime = computation.NextTime
	personState.Note = computation.Note
	personState.Schedule = computation.Schedule
}

// rawEventMirror captures a JSON-safe copy of the envelope for diagnostics.
func rawEventMirror(event bus.Event) map[string]any {
	mirror := map[string]any{
		"event_type": event.Type,
		"data":       event.Data,
	}
	if !event.TimeFired.IsZero() {
		mirror["time_fired"] = alarm.FormatTime(event.TimeFired)
	}

	return mirror
}

// stringField extracts a non-blank string field from event data.
func stringField(data map[string]any, field string) (string, bool) {
	value, ok := data[field].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}

	return value, true
}

// timePtr returns a pointer to a copy of t.
func timePtr(t time.Time) *time.Time {
	return &t
}
