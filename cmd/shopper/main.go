package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-commerce-session/auth"
	"github.com/jrsteele09/go-commerce-session/internal/config"
	"github.com/jrsteele09/go-commerce-session/internal/logging"
	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/jrsteele09/go-commerce-session/slas"
	"github.com/rs/zerolog/log"
)

const usage = `usage: shopper [-env file] [-quiet] <command> [flags]

commands:
  guest    start a new guest session
  login    log a registered shopper in (-user, -password or SHOPPER_PASSWORD)
  logout   revoke the session and start a new guest session
  token    print a valid access token
  status   show the stored session
  clear    drop the stored session
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "shopper: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	fs := flag.NewFlagSet("shopper", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "path to a .env file")
	quiet := fs.Bool("quiet", false, "do not print the banner")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	c, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if err := logging.Setup(c.GetLogLevel(), c.GetLogFile()); err != nil {
		return err
	}
	defer logging.Close()

	if !*quiet {
		displayAppname(c.GetAppName())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer app.close()

	return app.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

// app wires the library together for one command.
type app struct {
	manager *session.Manager
	client  *auth.Client
	closer  func() error
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	storage, closer, err := openStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	transport, err := slas.New(slas.Config{
		BaseURL:        c.GetBaseURL(),
		ShortCode:      c.GetShortCode(),
		OrganizationID: c.GetOrganizationID(),
		ClientID:       c.GetClientID(),
		SiteID:         c.GetSiteID(),
		RedirectURI:    c.GetRedirectURI(),
		Timeout:        c.GetHTTPTimeout(),
	})
	if err != nil {
		_ = closer()
		return nil, err
	}

	store, err := session.NewStore(storage, session.WithKey(c.GetSessionKey()))
	if err != nil {
		_ = closer()
		return nil, err
	}
	manager, err := session.NewManager(store)
	if err != nil {
		_ = closer()
		return nil, err
	}
	client, err := auth.New(transport, manager, auth.WithAuthTimeout(c.GetAuthTimeout()))
	if err != nil {
		_ = closer()
		return nil, err
	}
	return &app{manager: manager, client: client, closer: closer}, nil
}

func (a *app) close() {
	if err := a.closer(); err != nil {
		log.Err(err).Msg("Error closing session storage")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
