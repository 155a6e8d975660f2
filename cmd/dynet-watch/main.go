// Command dynet-watch connects to a DyNet gateway and prints every event
// it emits, the way sql-tapd watches a proxied connection: a flag.FlagSet
// for configuration, signal.NotifyContext for shutdown, and a log.Printf
// per significant lifecycle step.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dynetlink/dynet"
	"github.com/dynetlink/dynet/broadcast"
	"github.com/dynetlink/dynet/client"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("dynet-watch", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "dynet-watch — watch DyNet panel events in real-time\n\nUsage:\n  dynet-watch [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	host := fs.String("host", "", "DyNet gateway host (required)")
	port := fs.Int("port", dynet.DefaultPort, "DyNet gateway port")
	active := fs.String("active", "init", "polling mode: off, init, on")
	autodiscover := fs.Bool("autodiscover", true, "create areas/channels/presets on first sight")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dynet-watch %s\n", version)
		return
	}
	if *host == "" {
		fs.Usage()
		os.Exit(1)
	}

	if err := run(*host, *port, *active, *autodiscover, *logLevel); err != nil {
		log.Fatal(err)
	}
}

func run(host string, port int, activeFlag string, autodiscover bool, logLevel string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := dynet.Config{
		Host:         host,
		Port:         port,
		LogLevel:     logLevel,
		LogFormatter: "text",
		Autodiscover: autodiscover,
		PollTimer:    2,
		Active:       parseActive(activeFlag),
	}

	c, err := client.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	c.Monitor(func(ev dynet.Event) {
		log.Printf("%s area=%d preset=%d channel=%d level=%.2f/%.2f state=%s",
			ev.Kind, ev.Area, ev.Preset, ev.Channel, ev.TargetLevel, ev.ActualLevel, ev.State)
	}, broadcast.Wildcard)

	log.Printf("connecting to %s:%d (active=%s)", host, port, activeFlag)
	c.Connect(ctx)

	<-ctx.Done()
	c.Close()
	return nil
}

func parseActive(s string) dynet.ActiveMode {
	switch s {
	case "on":
		return dynet.ActiveOn
	case "off":
		return dynet.ActiveOff
	default:
		return dynet.ActiveInit
	}
}
