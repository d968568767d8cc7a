// Package main inspects and edits the client side token store the same way
// the storefront client does: login stores a token, logout removes it and
// state derives the identity the client would present.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/authstate"
	"github.com/goliatone/go-storefront/localstore"
)

const usage = `usage: storefront-auth [flags] <command> [args]

commands:
  state          print the current authentication state
  login <token>  store token and print the resulting state
  logout         remove the stored token and print the resulting state
  probe <url>    GET url with the derived authorization header
`

func main() {
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("storefront-auth"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, lgr, verbose, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lgr *glog.BaseLogger, verbose bool, args []string) error {
	cfg, err := storefront.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Client.Validate(); err != nil {
		return storefront.WrapWith(storefront.ErrInvalidConfig, err, map[string]any{"section": "client"})
	}

	storage, closeStorage, err := openStorage(ctx, cfg.Client)
	if err != nil {
		return err
	}
	defer closeStorage()

	transport := authstate.NewHeaderTransport(nil)
	provider := authstate.NewProvider(storage,
		authstate.WithTokenKey(cfg.Client.TokenKey),
		authstate.WithHeaderSetter(transport),
		authstate.WithLogger(lgr.GetLogger("authstate")),
	)

	if verbose {
		observer := lgr.GetLogger("observer")
		provider.Subscribe(authstate.ObserverFunc(func(_ context.Context, state authstate.State) {
			observer.Debug("authentication state changed",
				"authenticated", state.Identity.IsAuthenticated(),
				"claims", len(state.Identity.Claims),
			)
		}))
	}

	var state authstate.State
	switch cmd := args[0]; cmd {
	case "state":
		state = provider.GetAuthenticationState(ctx)
	case "login":
		if len(args) < 2 {
			return fmt.Errorf("login requires a token")
		}
		if state, err = provider.Login(ctx, args[1]); err != nil {
			return err
		}
	case "logout":
		if state, err = provider.Logout(ctx); err != nil {
			return err
		}
	case "probe":
		if len(args) < 2 {
			return fmt.Errorf("probe requires a url")
		}
		provider.GetAuthenticationState(ctx)
		return probe(ctx, transport.Client(), args[1])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	fmt.Println(print.MaybeHighlightJSON(state))
	return nil
}

func openStorage(ctx context.Context, cfg storefront.ClientConfig) (authstate.WritableStorage, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		storage := localstore.NewRedisStorage(client, localstore.WithPrefix(cfg.RedisPrefix))
		return storage, func() { _ = client.Close() }, nil
	}

	db, err := localstore.OpenSQLite(cfg.StoreDSN)
	if err != nil {
		return nil, nil, err
	}
	storage := localstore.NewBunStorage(db)
	if err := storage.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return storage, func() { _ = db.Close() }, nil
}

func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n", res.Status, body)
	return nil
}
