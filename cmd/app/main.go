package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"DeskStream/internal/di"
	mid "DeskStream/internal/middleware"
	"DeskStream/internal/service/stream"
	"DeskStream/pkg/config"
	applogger "DeskStream/pkg/logger"

	"github.com/urfave/cli"
)

var Version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "deskstream"
	app.Usage = "real-time signal ingestion and reconciliation for the trading desk"
	app.Version = Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "YAML config file; empty means defaults plus environment",
			EnvVar: "DESK_CONFIG",
		},
	}

	app.Commands = []cli.Command{
		serveCMD,
		tailCMD,
		checkCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run feeds, account polling and the display server",
		Action:      serveAction,
		Description: `Consume every configured scope into the reconciled store and serve it read-only over HTTP, SSE and WebSocket.`,
	}
	tailCMD = cli.Command{
		Name:   "tail",
		Usage:  "print normalized events of one scope as JSON lines",
		Action: tailAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "scope", Value: stream.GlobalScope, Usage: "feed scope to subscribe to"},
		},
		Description: `Connect once, without reconnecting, and print each routed event until the stream completes or faults.`,
	}
	checkCMD = cli.Command{
		Name:        "check",
		Usage:       "classify payload lines through the validation gate",
		ArgsUsage:   "[file]",
		Action:      checkAction,
		Description: `Read one payload per line from a file or stdin and print accepted, complete, noise or mismatch for each.`,
	}
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(c.GlobalString("config"))
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	return app.Run()
}

func tailAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	transport, err := di.ProvideTransport(cfg)
	if err != nil {
		return err
	}
	gate := di.ProvideGate()
	norm := di.ProvideNormalizer(cfg)
	scope := c.String("scope")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := stream.Open(ctx, transport, scope)
	if err != nil {
		return err
	}
	defer conn.Close()

	out := json.NewEncoder(os.Stdout)
	for sig := range conn.Signals() {
		switch sig.Kind {
		case stream.SignalReady:
			l.Info("connected", applogger.String("scope", scope))
		case stream.SignalFault:
			return fmt.Errorf("feed fault: %w", sig.Err)
		case stream.SignalData:
			env, err := gate.Validate(sig.Payload)
			switch {
			case errors.Is(err, mid.ErrStreamComplete):
				l.Info("stream complete")
				return nil
			case errors.Is(err, mid.ErrNoise):
				continue
			case err != nil:
				se, _ := mid.IsMismatch(err)
				l.Warn(mid.Describe(se))
				continue
			}
			if err := out.Encode(norm.Normalize(scope, env)); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkAction(c *cli.Context) error {
	var in io.Reader = os.Stdin
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return classify(in, os.Stdout, mid.NewGate())
}

func classify(in io.Reader, out io.Writer, gate *mid.Gate) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		env, err := gate.Validate(sc.Text())
		var verdict string
		switch {
		case err == nil:
			verdict = fmt.Sprintf("accepted ticker=%q decision=%t", env.Ticker, env.CarriesDecision())
		case errors.Is(err, mid.ErrStreamComplete):
			verdict = "complete"
		case errors.Is(err, mid.ErrNoise):
			verdict = "noise"
		default:
			se, _ := mid.IsMismatch(err)
			verdict = fmt.Sprintf("mismatch pattern=%s: %s", se.Pattern, se.Message)
		}
		if _, err := fmt.Fprintf(out, "%d\t%s\n", line, verdict); err != nil {
			return err
		}
	}
	return sc.Err()
}
