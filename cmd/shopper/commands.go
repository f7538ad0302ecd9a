package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-commerce-session/internal/config"
	"github.com/pkg/errors"
)

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "guest":
		if err := a.client.AuthenticateAsGuest(ctx); err != nil {
			return err
		}
		return a.status(ctx)

	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		user := fs.String("user", "", "shopper login")
		password := fs.String("password", "", "shopper password (default $SHOPPER_PASSWORD)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *password == "" {
			*password = config.GetEnv("SHOPPER_PASSWORD", "")
		}
		if *user == "" || *password == "" {
			return errors.New("login requires -user and -password")
		}
		if err := a.client.AuthenticateCustomer(ctx, *user, *password); err != nil {
			return err
		}
		return a.status(ctx)

	case "logout":
		if err := a.client.Logout(ctx); err != nil {
			return err
		}
		return a.status(ctx)

	case "token":
		token, err := a.client.GetAuthToken(ctx)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil

	case "status":
		return a.status(ctx)

	case "clear":
		a.client.ClearAllAuthentication(ctx)
		fmt.Println("session cleared")
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func (a *app) status(ctx context.Context) error {
	res := a.manager.Lookup(ctx)
	w := os.Stdout
	fmt.Fprintf(w, "state:       %s\n", res.State)
	if res.Err != nil {
		fmt.Fprintf(w, "error:       %s\n", res.Err)
	}
	if !res.Found() {
		return nil
	}

	sess := res.Session
	fmt.Fprintf(w, "customer:    %s\n", sess.CustomerID)
	fmt.Fprintf(w, "usid:        %s\n", sess.Usid)
	fmt.Fprintf(w, "expires:     %s (%s)\n", sess.Expiry().Format(time.RFC3339), time.Until(sess.Expiry()).Round(time.Second))
	fmt.Fprintf(w, "valid:       %t\n", a.client.IsAuthenticated(ctx))

	if claims, err := a.client.AccessTokenClaims(ctx); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Fprintf(w, "token exp:   %s\n", exp.Format(time.RFC3339))
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			fmt.Fprintf(w, "token sub:   %s\n", sub)
		}
	}
	return nil
}
