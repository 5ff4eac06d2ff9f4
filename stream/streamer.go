package stream

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledcount/anim"
	"github.com/matt-g-everett/ledcount/util"
)

// Streamer that streams counter gauges as RGB data frames to an ledrx device
// and the counter text to a text topic.
type Streamer struct {
	config   Config
	client   mqtt.Client
	counters *anim.Group
	gradient GradientTable
	back     colorful.Color
	lut      []float64

	mu       sync.Mutex
	frameNum int
	lastText map[string]string
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(config Config, client mqtt.Client, counters *anim.Group) *Streamer {
	s := new(Streamer)
	s.config = config
	s.client = client
	s.counters = counters
	s.gradient = RainbowGradient
	s.back, _ = colorful.Hex("#000005")
	s.lut = util.GenerateLut(24)
	s.lastText = make(map[string]string)
	return s
}

// CalculateFrame renders the gauge of every counter onto one frame.
func (s *Streamer) CalculateFrame() *Frame {
	snapshots := s.counters.Snapshots()
	progress := make([]float64, len(snapshots))
	for i, snapshot := range snapshots {
		progress[i] = snapshot.Progress
	}

	s.mu.Lock()
	gain := s.lut[s.frameNum%len(s.lut)]
	s.frameNum++
	s.mu.Unlock()

	return NewGaugeFrame(progress, s.gradient, s.back, gain)
}

// SendFrame publishes the current gauge frame and any counter text that
// changed since the last call.
func (s *Streamer) SendFrame() error {
	b, err := s.CalculateFrame().MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.publish(s.config.Mqtt.Topics.Stream, b); err != nil {
		return err
	}

	if s.config.Mqtt.Topics.Text == "" {
		return nil
	}

	for _, snapshot := range s.counters.Snapshots() {
		s.mu.Lock()
		changed := s.lastText[snapshot.Name] != snapshot.Text
		s.lastText[snapshot.Name] = snapshot.Text
		s.mu.Unlock()

		if changed {
			topic := s.config.Mqtt.Topics.Text + "/" + snapshot.Name
			if err := s.publish(topic, snapshot.Text); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Streamer) publish(topic string, payload interface{}) error {
	token := s.client.Publish(topic, s.config.Mqtt.QoS, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

// Subscribe listens for control commands. It is a no-op without a control
// topic.
func (s *Streamer) Subscribe() error {
	topic := s.config.Mqtt.Topics.Control
	if topic == "" {
		return nil
	}

	if token := s.client.Subscribe(topic, 0, s.handleControl); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// handleControl accepts "restart" or "stop", optionally followed by a counter
// name.
func (s *Streamer) handleControl(client mqtt.Client, msg mqtt.Message) {
	log.Printf("Received control on %s: %s", msg.Topic(), msg.Payload())
	if err := s.Control(string(msg.Payload())); err != nil {
		log.Println(err)
	}
}

// Control applies a control command.
func (s *Streamer) Control(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("malformed control command %q", command)
	}

	if len(fields) == 1 {
		switch fields[0] {
		case "restart":
			s.counters.StartAll()
		case "stop":
			s.counters.StopAll()
		default:
			return fmt.Errorf("unknown control command %q", fields[0])
		}
		return nil
	}

	c, err := s.counters.Get(fields[1])
	if err != nil {
		return err
	}

	switch fields[0] {
	case "restart":
		c.Start()
	case "stop":
		c.Stop()
	default:
		return fmt.Errorf("unknown control command %q", fields[0])
	}
	return nil
}

// Run causes the Streamer to send Frames until ctx is done.
func (s *Streamer) Run(ctx context.Context, interval time.Duration) error {
	publishTimer := time.NewTicker(interval)
	defer publishTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-publishTimer.C:
			if err := s.SendFrame(); err != nil {
				log.Println(err)
			}
		}
	}
}
