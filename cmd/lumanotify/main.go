package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumanotify/internal/config"
	"lumanotify/internal/dedup"
	"lumanotify/internal/filter"
	"lumanotify/internal/ics"
	appLog "lumanotify/internal/log"
	"lumanotify/internal/model"
	"lumanotify/internal/notify"
)

type flagConfig struct {
	envFile string
	dryRun  bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	// Config comes first: a missing value must halt before any I/O.
	conf, err := config.Load(flags.envFile)
	if err != nil {
		appLog.Error("configuration invalid", err, "env_file", flags.envFile)
		return 1
	}

	if err := appLog.Init(appLog.Options{FilePath: conf.LogFile}); err != nil {
		appLog.Error("log file unavailable, continuing on stderr", err, "path", conf.LogFile)
	}
	defer appLog.Close()

	appLog.Info("lumanotify starting",
		"window_days", conf.WindowDays,
		"state_file", conf.StateFile,
		"dry_run", flags.dryRun,
	)

	// Root context canceled on SIGINT/SIGTERM; bounds the two external calls.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := ics.NewFetcher(conf.FetchTimeout)
	body, err := fetcher.Fetch(ctx, conf.CalendarURL)
	if err != nil {
		appLog.Error("feed fetch failed", err)
		return 1
	}

	components, err := ics.Parse(body)
	if err != nil {
		appLog.Error("feed parse failed", err)
		return 1
	}

	events := filter.Filter(components, filter.Criteria{
		Now:           time.Now().UTC(),
		Window:        conf.Window(),
		AttendeeMatch: conf.AttendeeMatch,
	})

	appLog.Info("upcoming accepted events found", "count", len(events))
	for _, e := range events {
		appLog.Info("event", "id", e.ID, "name", e.Name, "start_at", e.StartAt.Format(time.RFC3339))
	}

	if len(events) == 0 {
		appLog.Info("no upcoming events, done")
		return 0
	}

	store := &dedup.Store{Path: conf.StateFile}
	sent := store.Load()
	newEvents := dedup.Diff(events, sent)

	appLog.Info("new events to notify", "count", len(newEvents))
	if len(newEvents) == 0 {
		appLog.Info("nothing new, done")
		return 0
	}

	if flags.dryRun {
		appLog.Info("dry run, skipping delivery and state commit", "message", notify.FormatMessage(newEvents))
		return 0
	}

	messenger := &notify.Messenger{
		Recipient: conf.Recipient,
		Timeout:   conf.SendTimeout,
	}
	if err := deliverAndCommit(ctx, messenger, store, sent, newEvents); err != nil {
		return 1
	}

	appLog.Info("done", "sent", len(newEvents))
	return 0
}

// sender is the delivery collaborator. notify.Messenger is the real one;
// tests substitute their own.
type sender interface {
	Send(ctx context.Context, body string) error
}

// deliverAndCommit sends the notification and, only after the send
// confirmed, commits the new ids to the store. A delivery failure leaves
// the state untouched so these events are retried next run.
func deliverAndCommit(ctx context.Context, s sender, store *dedup.Store, sent dedup.Set, newEvents []model.Event) error {
	if err := s.Send(ctx, notify.FormatMessage(newEvents)); err != nil {
		appLog.Error("delivery failed, events not marked as sent", err)
		return err
	}

	if err := store.Commit(sent, eventIDs(newEvents)); err != nil {
		appLog.Error("state commit failed, next run may re-notify", err)
		return err
	}
	return nil
}

func eventIDs(events []model.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.envFile, "env", ".env", "Path to optional key=value env file")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Format and log the message without sending or committing state")

	flag.Parse()

	return cfg
}
