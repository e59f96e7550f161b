package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sgdea/go-planner-client/activities"
	"github.com/sgdea/go-planner-client/client"
	"github.com/sgdea/go-planner-client/internal/config"
	"github.com/sgdea/go-planner-client/session"
	"github.com/sgdea/go-planner-client/tokenstore"
	"golang.org/x/crypto/ssh/terminal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c, err := config.New()
	if err != nil {
		return err
	}
	log := newLogger(c.LogLevel)

	tokens, err := openTokenStore(c)
	if err != nil {
		return err
	}

	planner, err := client.New(client.Config{
		BaseURL:         c.BaseURL,
		InactivityLimit: c.InactivityLimit,
		Logger:          log,
		OnSessionExpired: func() {
			log.Warn().Msg("session expired, please log in again")
		},
	}, tokens)
	if err != nil {
		return err
	}

	auth := session.NewStore(tokens, planner, session.WithStoreLogger(log))
	auth.Hydrate()

	command := "whoami"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx := context.Background()
	switch command {
	case "login":
		displayAppname(c.AppName)
		return login(ctx, planner, auth)
	case "logout":
		auth.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return whoami(ctx, auth)
	case "activities":
		return listActivities(ctx, planner, auth)
	case "add":
		return addActivity(ctx, planner, auth, os.Args[2:])
	default:
		return fmt.Errorf("unknown command %q (expected login, logout, whoami, activities or add)", command)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func openTokenStore(c config.Config) (*tokenstore.Store, error) {
	if c.RedisAddr != "" {
		kv := tokenstore.NewRedisKV(redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		}), "")
		return tokenstore.New(kv), nil
	}
	kv, err := tokenstore.OpenFileKV(c.TokenFile)
	if err != nil {
		return nil, err
	}
	return tokenstore.New(kv), nil
}

func login(ctx context.Context, planner *client.Client, auth *session.Store) error {
	fmt.Print("Email: ")
	reader := bufio.NewReader(os.Stdin)
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading email: %w", err)
	}
	fmt.Print("Password: ")
	password, err := terminal.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	resp, err := planner.Login(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok {
			return fmt.Errorf("login rejected: %s", apiErr.Message)
		}
		return err
	}
	auth.SetAuth(resp.User, resp.Access)
	fmt.Printf("Welcome, %s.\n", resp.User.DisplayName("user"))
	return nil
}

func whoami(ctx context.Context, auth *session.Store) error {
	user, err := auth.VerifyAuth(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s>\n", user.DisplayName("user"), user.Email)
	if len(user.Permissions) > 0 {
		fmt.Printf("Permissions: %s\n", strings.Join(user.Permissions, ", "))
	}
	return nil
}

func listActivities(ctx context.Context, planner *client.Client, auth *session.Store) error {
	if _, err := auth.VerifyAuth(ctx); err != nil {
		return err
	}
	if !auth.IsAuthenticated() {
		return errors.New("not logged in")
	}

	svc := activities.NewService(planner)
	all, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No activities.")
		return nil
	}
	for _, a := range all {
		line := fmt.Sprintf("%4d  %-10s  %-30s  %s", a.ID, a.TypeActivity, a.Title, a.Subject)
		if a.Deadline != nil {
			line += "  due " + a.Deadline.Format("2006-01-02")
		}
		fmt.Println(line)
	}
	return nil
}

func addActivity(ctx context.Context, planner *client.Client, auth *session.Store, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: planner add <title> <type> <subject> [deadline YYYY-MM-DD]")
	}
	user, err := auth.VerifyAuth(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("not logged in")
	}

	activity := activities.Activity{
		Title:        args[0],
		TypeActivity: args[1],
		Subject:      args[2],
		User:         int64(user.ID),
	}
	if len(args) > 3 {
		deadline, err := time.Parse("2006-01-02", args[3])
		if err != nil {
			return fmt.Errorf("bad deadline %q: %w", args[3], err)
		}
		activity.Deadline = &deadline
	}

	svc := activities.NewService(planner)
	created, err := svc.Create(ctx, activity)
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.IsValidation() {
			return fmt.Errorf("invalid activity: %v", apiErr.Fields)
		}
		return err
	}
	fmt.Printf("Created activity %d: %s\n", created.ID, created.Title)
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
