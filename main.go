package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/ledcount/anim"
	"github.com/matt-g-everett/ledcount/api"
	"github.com/matt-g-everett/ledcount/stream"
	"github.com/matt-g-everett/ledcount/terminal"
)

type app struct {
	Config   stream.Config
	Client   mqtt.Client
	Clock    *anim.TickerClock
	Counters *anim.Group
	Streamer *stream.Streamer
	Api      *api.Api
	Display  *terminal.Display
}

func newApp() *app {
	a := new(app)
	a.Counters = anim.NewGroup()
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Println("Connected")
	if err := a.Streamer.Subscribe(); err != nil {
		log.Println(err)
	}
}

func (a *app) readConfig(configPath string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	a.Config, err = stream.ReadConfig(f)
	return err
}

// buildCounters creates one counter per configured entry, all sharing the
// frame clock. Every update is forwarded to the terminal when enabled.
func (a *app) buildCounters() error {
	a.Clock = anim.NewTickerClock(a.Config.FrameRate)
	for _, cc := range a.Config.Counters {
		opts := cc.Options()
		if a.Display != nil {
			opts = append(opts, anim.WithOnUpdate(a.Display.Update))
		}

		c := anim.NewCounter(a.Clock, *cc.To, opts...)
		if err := a.Counters.Add(c); err != nil {
			return err
		}
		if a.Display != nil {
			a.Display.Update(c.Snapshot())
		}
	}
	return nil
}

func (a *app) connect() {
	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID("ledcount").
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(options)
	a.Streamer = stream.NewStreamer(a.Config, a.Client, a.Counters)
}

func (a *app) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 8)
	running := 0
	start := func(name string, fn func(context.Context) error) {
		running++
		go func() {
			err := fn(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("%s: %v", name, err)
			}
			errs <- err
		}()
	}

	if a.Client != nil {
		if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		defer a.Client.Disconnect(250)
		start("streamer", func(ctx context.Context) error {
			return a.Streamer.Run(ctx, a.Clock.Interval())
		})
	}

	start("clock", a.Clock.Run)
	start("api", a.Api.Serve)
	if a.Display != nil {
		start("terminal", a.Display.Run)
		start("draw", func(ctx context.Context) error {
			ticker := time.NewTicker(a.Clock.Interval())
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					a.Display.Draw()
				}
			}
		})
	}

	a.Counters.StartAll()

	// The first component to return ends the run.
	err := <-errs
	a.Counters.StopAll()
	cancel()
	for i := 1; i < running; i++ {
		<-errs
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	// mqtt.DEBUG = log.New(os.Stdout, "", 0)
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	useTerminal := flag.Bool("terminal", false, "Show counters in the terminal.")
	flag.Parse()

	// Read the config
	a := newApp()
	if err := a.readConfig(*configPath); err != nil {
		log.Fatalf("Config: %v", err)
	}

	var screen tcell.Screen
	if *useTerminal {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			log.Fatalf("Terminal: %v", err)
		}
		if err := screen.Init(); err != nil {
			log.Fatalf("Terminal: %v", err)
		}
		a.Display = terminal.NewDisplay(screen)
	} else {
		log.Printf("Config: %+v", a.Config.Redacted())
	}

	if err := a.buildCounters(); err != nil {
		log.Fatalf("Counters: %v", err)
	}
	a.Api = api.NewApi(a.Config.HTTP.Addr, a.Counters)
	if a.Config.Mqtt.URL != "" {
		a.connect()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.run(ctx)
	if screen != nil {
		screen.Fini()
	}
	if err != nil {
		log.Println(err)
		stop()
		os.Exit(1)
	}
}
