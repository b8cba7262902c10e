package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"safespace/domain"
	"safespace/history"
	"safespace/internal"
	"safespace/observability"
	"safespace/pipeline"
	"safespace/repositories"
	"safespace/rules"
	"safespace/runtime/workers"
	"safespace/search"
	"safespace/services"
	"safespace/session"
	"safespace/toxicity"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the client lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB for the shared log, Bluge for search)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = writer.Close()
	}()

	store := repositories.NewBadgerBlobStore(db, log)
	stdin := bufio.NewScanner(os.Stdin)

	// 3. Identity, in its own ephemeral store: it dies with the process and
	// never shares a key with other clients of the origin
	sessions := session.NewManager(log, repositories.NewMemoryBlobStore())
	sess, err := sessions.Restore()
	if err != nil {
		fmt.Print("Pick a display name: ")
		if !stdin.Scan() {
			return fmt.Errorf("no display name provided")
		}
		sess, err = sessions.Login(stdin.Text())
		if err != nil {
			return err
		}
	}

	// 4. Moderation layers
	engine, err := rules.NewEngine(log)
	if err != nil {
		return fmt.Errorf("rule engine failed to build: %w", err)
	}
	loader := toxicity.NewLoader(log, config.ToxicityThreshold)
	validator := pipeline.NewValidator(log, engine, loader)
	validator.SetRulesEnabled(config.RulesEnabled)

	// 5. Shared history & search
	mode := history.ModeLastWriteWins
	if config.OptimisticAppend {
		mode = history.ModeOptimistic
	}
	sync := history.NewSynchronizer(log, store,
		config.SharedLogKey, sess.ClientID.String(), mode, config.AppendRetries)

	stats := observability.NewMonitoringManager(log)
	index := search.NewMessageIndex(writer, log, config.SearchLimit)
	chat := services.NewChatService(log, sess, validator, sync, index, stats)

	// a catch-up reload may carry several missed entries, render them all
	chat.OnNewMessages(func(fresh []domain.Message) {
		for _, m := range fresh {
			if !chat.Owns(m) && !m.System() {
				fmt.Println(renderMessage(sess, m))
			}
		}
	})

	if config.DebugPort != nil {
		internal.StartDebugServer(db, *config.DebugPort, config.SharedLogKey, func() map[string]any {
			latest := stats.GetLatest()
			return map[string]any{
				"sent":      latest.MessagesSent,
				"blocked":   latest.MessagesBlocked,
				"reloads":   latest.Reloads,
				"conflicts": latest.AppendConflicts,
			}
		})
		log.Info("Debug server started", "port", *config.DebugPort)
	}

	// 6. Context, signals & workers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log)
	sup.Add(
		loader,
		history.NewChangeWorker(log, sync, store.Watch(sess.ClientID.String())),
		history.NewPollWorker(log, sync, config.PollInterval),
		observability.NewHealthWorker(log, stats, config.HealthInterval),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 7. Initial history
	messages, err := chat.Messages()
	if err != nil {
		return err
	}
	for _, m := range messages {
		fmt.Println(renderMessage(sess, m))
	}

	// 8. Command loop
	uptime := observability.NewUptime()
	fmt.Println("Commands: /search <terms>, /rules on|off, /stats, /history, /quit")
	for stdin.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := stdin.Text()
		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, chat, validator, stats, uptime, sess, line); quit {
				break
			}
			continue
		}

		result, err := chat.Send(ctx, line)
		if err != nil {
			fmt.Println(color.New(color.FgYellow).Render(err.Error()))
			continue
		}
		if result.Empty {
			continue
		}
		if !result.Sent {
			renderViolations(result.Verdict)
		}
	}

	// 9. Final Cleanup
	stop()
	sup.Stop()
	<-supDone
	store.Unwatch(sess.ClientID.String())
	log.Info("Program stopped cleanly")

	return nil
}

func runCommand(ctx context.Context, chat *services.ChatService, validator *pipeline.Validator,
	stats *observability.MonitoringManager, uptime observability.Uptime,
	sess session.Session, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "/quit":
		return true
	case "/rules":
		switch arg {
		case "on":
			validator.SetRulesEnabled(true)
		case "off":
			validator.SetRulesEnabled(false)
		default:
			fmt.Println("Usage: /rules on|off")
		}
	case "/search":
		results, err := chat.Search(ctx, arg)
		if err != nil {
			fmt.Println(color.New(color.FgYellow).Render(err.Error()))
			return false
		}
		if len(results) == 0 {
			fmt.Println("No matches")
			return false
		}
		for _, m := range results {
			fmt.Println(renderMessage(sess, m))
		}
	case "/history":
		messages, err := chat.Messages()
		if err != nil {
			fmt.Println(color.New(color.FgYellow).Render(err.Error()))
			return false
		}
		for _, m := range messages {
			fmt.Println(renderMessage(sess, m))
		}
	case "/stats":
		renderStats(stats.GetLatest(), uptime)
	default:
		fmt.Println("Unknown command:", cmd)
	}
	return false
}

func renderMessage(sess session.Session, m domain.Message) string {
	line := fmt.Sprintf("[%s] %s", m.Sender, m.Text)
	switch {
	case m.System():
		return color.New(color.FgCyan).Render(line)
	case sess.Owns(m):
		return color.New(color.FgGreen).Render(line)
	default:
		return line
	}
}

func renderViolations(verdict domain.Verdict) {
	fmt.Println(color.New(color.FgRed).Render("Message blocked:"))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rule", "Reason", "Match"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, v := range verdict.Violations {
		table.Append([]string{string(v.Rule), v.Label, v.Match})
	}
	table.Render()
}

func renderStats(s observability.ClientStats, uptime observability.Uptime) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.Append([]string{"Uptime", uptime.String()})
	table.Append([]string{"Messages sent", fmt.Sprint(s.MessagesSent)})
	table.Append([]string{"Messages blocked", fmt.Sprint(s.MessagesBlocked)})
	table.Append([]string{"Rule violations", fmt.Sprint(s.RuleViolations)})
	table.Append([]string{"Model violations", fmt.Sprint(s.ModelViolations)})
	table.Append([]string{"History reloads", fmt.Sprint(s.Reloads)})
	table.Append([]string{"Append conflicts", fmt.Sprint(s.AppendConflicts)})
	table.Append([]string{"Alloc MB", fmt.Sprint(s.AllocMemMb)})
	table.Append([]string{"CPU %", fmt.Sprintf("%.1f", s.CpuPercent)})
	table.Append([]string{"RAM %", fmt.Sprintf("%.1f", s.RamPercent)})
	table.Render()
}
