// ABOUTME: Entry point for the parley terminal chat client
// ABOUTME: Wires local state, session, gateway, sync, and the event stream

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/parley-chat/parley/internal/client"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/conversation"
	"github.com/parley-chat/parley/internal/events"
	"github.com/parley-chat/parley/internal/gateway"
	"github.com/parley-chat/parley/internal/session"
	sig "github.com/parley-chat/parley/internal/signal"
	"github.com/parley-chat/parley/internal/store"
	"github.com/parley-chat/parley/internal/validate"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the parley config file.
// Priority: PARLEY_CONFIG env var > XDG_CONFIG_HOME/parley/config.yaml > ~/.config/parley/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("PARLEY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "parley", "config.yaml")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening local state: %w", err)
	}
	defer st.Close()

	sessions := session.NewManager(st, logger)
	if err := sessions.Restore(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.Warn("could not restore session", "error", err)
	}

	gw := gateway.New(cfg.Server.BaseURL, sessions, logger)
	api := client.New(gw, logger)

	refresh := sig.NewRefresh(logger)
	selector := conversation.NewSelector(st, logger)
	tracker := conversation.NewTracker(selector, logger)
	selector.SetTracker(tracker)
	syncer := conversation.NewSynchronizer(api, tracker, logger)

	app := &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		api:      api,
		refresh:  refresh,
		selector: selector,
		tracker:  tracker,
		syncer:   syncer,
	}

	syncer.Subscribe(app.storeLatest)
	syncer.SetErrorHandler(func(err error) {
		if sessionEnding(err) {
			app.handleAuthRejected(ctx)
			return
		}
		color.Red("refresh failed: %v", err)
	})

	// The signal drives every list re-fetch: event stream, poll timer, and
	// explicit /refresh all raise it.
	refresh.Observe(func() {
		if !sessions.Authenticated() {
			return
		}
		go syncer.Refresh(ctx)
	})

	go app.pollLoop(ctx)

	if cfg.Events.Enabled {
		listener := events.NewListener(cfg.Events.WSURL, sessions, tracker, refresh, logger)
		listener.OnAuthRejected = func() { app.handleAuthRejected(ctx) }
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("event stream stopped", "error", err)
			}
		}()
	}

	if sessions.Authenticated() {
		if err := selector.Restore(ctx); err != nil {
			logger.Warn("could not restore conversation selection", "error", err)
		}
		if user, ok := sessions.CurrentUser(); ok {
			color.Green("Signed in as %s", user.Username)
		}
	} else {
		fmt.Println("Not signed in. Use /login or /register to get started.")
	}

	fmt.Printf("parley %s connected to %s\n", version, cfg.Server.BaseURL)
	fmt.Println("Type /help for commands. Ctrl+C to quit.")
	fmt.Println()

	return app.loop(ctx)
}

// loadConfig falls back to built-in defaults when no config file exists.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Manager
	api      *client.Client
	refresh  *sig.Refresh
	selector *conversation.Selector
	tracker  *conversation.Tracker
	syncer   *conversation.Synchronizer

	mu     sync.Mutex
	latest []conversation.Conversation
}

func (a *app) storeLatest(convs []conversation.Conversation) {
	a.mu.Lock()
	a.latest = convs
	a.mu.Unlock()
}

func (a *app) latestList() []conversation.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

// sessionEnding reports whether err means the held session is unusable: the
// server rejected the token, or there is none to send (an expired persisted
// token surfaces this way before any network call). Either way the user must
// sign in again; retrying cannot help.
func sessionEnding(err error) bool {
	return errors.Is(err, gateway.ErrAuthRejected) || errors.Is(err, gateway.ErrUnauthenticated)
}

// handleAuthRejected clears the session and routes the user back to login.
func (a *app) handleAuthRejected(ctx context.Context) {
	if err := a.selector.Clear(ctx); err != nil {
		a.logger.Warn("could not clear selection", "error", err)
	}
	if err := a.sessions.Logout(ctx); err != nil {
		a.logger.Warn("could not clear session", "error", err)
	}
	a.syncer.Invalidate()
	a.storeLatest(nil)
	color.Yellow("Session expired or rejected. Use /login to sign in again.")
}

func (a *app) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Sync.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresh.Raise()
		}
	}
}

func (a *app) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		a.printPrompt()

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		if err := a.dispatch(ctx, scanner, input); err != nil {
			color.Red("[error] %v", err)
		}
		fmt.Println()
	}
}

func (a *app) printPrompt() {
	if conv, ok := a.selector.Current(); ok {
		fmt.Printf("[%s]> ", conv.User.Username)
	} else {
		fmt.Print("> ")
	}
}

func (a *app) dispatch(ctx context.Context, scanner *bufio.Scanner, input string) error {
	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/help":
		printHelp()
		return nil
	case "/login":
		return a.cmdLogin(ctx, scanner, args)
	case "/register":
		return a.cmdRegister(ctx, scanner, args)
	case "/logout":
		return a.cmdLogout(ctx)
	case "/list":
		return a.cmdList(ctx)
	case "/open":
		return a.cmdOpen(ctx, args)
	case "/close":
		return a.selector.Clear(ctx)
	case "/refresh":
		a.refresh.Raise()
		return nil
	case "/send":
		return a.cmdSend(ctx, args)
	default:
		if strings.HasPrefix(cmd, "/") {
			return fmt.Errorf("unknown command %s (try /help)", cmd)
		}
		// Bare text goes to the open conversation.
		return a.cmdSend(ctx, input)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /login <username>     Sign in (prompts for password)")
	fmt.Println("  /register <username>  Create an account")
	fmt.Println("  /logout               Sign out and clear local session")
	fmt.Println("  /list                 Show conversations with unread counts")
	fmt.Println("  /open <n|username>    Open a conversation from the list")
	fmt.Println("  /close                Close the open conversation")
	fmt.Println("  /send <text>          Send to the open conversation")
	fmt.Println("  /refresh              Re-fetch the conversation list")
	fmt.Println("  /help                 Show this help")
	fmt.Println("  /quit                 Exit")
	fmt.Println("Bare text is sent to the open conversation.")
}

// prompt reads one line after printing label.
func prompt(scanner *bufio.Scanner, label string) (string, error) {
	fmt.Print(label)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func (a *app) cmdLogin(ctx context.Context, scanner *bufio.Scanner, username string) error {
	if username == "" {
		return fmt.Errorf("usage: /login <username>")
	}

	password, err := prompt(scanner, "password: ")
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, client.ErrBadCredentials) {
			return fmt.Errorf("invalid username or password")
		}
		return err
	}

	if err := a.sessions.Login(ctx, res.Token, res.User); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	color.Green("Signed in as %s", res.User.Username)
	a.refresh.Raise()
	return nil
}

func (a *app) cmdRegister(ctx context.Context, scanner *bufio.Scanner, username string) error {
	if username == "" {
		return fmt.Errorf("usage: /register <username>")
	}

	displayName, err := prompt(scanner, "display name: ")
	if err != nil {
		return err
	}
	password, err := prompt(scanner, "password: ")
	if err != nil {
		return err
	}
	confirm, err := prompt(scanner, "confirm password: ")
	if err != nil {
		return err
	}

	if fields := validate.Registration(username, password, displayName, confirm); !fields.Ok() {
		printFieldErrors(fields)
		return fmt.Errorf("registration not submitted")
	}

	err = a.api.Register(ctx, client.RegisterRequest{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		var fields validate.Errors
		if errors.As(err, &fields) {
			printFieldErrors(fields)
			return fmt.Errorf("registration rejected")
		}
		return err
	}

	color.Green("Account created. Use /login %s to sign in.", username)
	return nil
}

func printFieldErrors(fields validate.Errors) {
	for _, f := range []string{validate.FieldUsername, validate.FieldDisplayName, validate.FieldPassword, validate.FieldConfirm} {
		if msg, ok := fields[f]; ok {
			color.Yellow("  %s: %s", f, msg)
		}
	}
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.selector.Clear(ctx); err != nil {
		a.logger.Warn("could not clear selection", "error", err)
	}
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	a.syncer.Invalidate()
	a.storeLatest(nil)
	fmt.Println("Signed out.")
	return nil
}

func (a *app) cmdList(ctx context.Context) error {
	if !a.sessions.Authenticated() {
		return fmt.Errorf("not signed in")
	}

	// Fetch synchronously so the printed list is current.
	a.syncer.Refresh(ctx)

	convs := a.latestList()
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return nil
	}

	gray := color.New(color.FgHiBlack)
	for i, c := range convs {
		name := c.User.DisplayName
		if name == "" {
			name = c.User.Username
		}
		fmt.Printf("%3d. %s", i+1, name)
		gray.Printf(" (@%s)", c.User.Username)
		if c.UnreadCount > 0 {
			color.New(color.FgYellow, color.Bold).Printf("  [%d unread]", c.UnreadCount)
		}
		if c.LastMessage != nil {
			gray.Printf("  %s", truncate(c.LastMessage.Content, 50))
		}
		fmt.Println()
	}
	return nil
}

func (a *app) cmdOpen(ctx context.Context, arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: /open <n|username>")
	}

	convs := a.latestList()
	if len(convs) == 0 {
		return fmt.Errorf("no conversations loaded, try /list first")
	}

	var target *conversation.Conversation
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(convs) {
			return fmt.Errorf("no conversation %d", n)
		}
		target = &convs[n-1]
	} else {
		for i := range convs {
			if convs[i].User.Username == arg {
				target = &convs[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("no conversation with %s", arg)
		}
	}

	if err := a.selector.Select(ctx, *target); err != nil {
		return err
	}
	fmt.Printf("Opened conversation with %s\n", target.User.Username)
	return nil
}

func (a *app) cmdSend(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("usage: /send <text>")
	}

	id, ok := a.selector.ActiveID()
	if !ok {
		return fmt.Errorf("no open conversation, use /open first")
	}

	if _, err := a.api.SendMessage(ctx, id, text); err != nil {
		if sessionEnding(err) {
			a.handleAuthRejected(ctx)
			return nil
		}
		return err
	}

	a.refresh.Raise()
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
// Rune-based so multi-byte text is never cut mid-character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
