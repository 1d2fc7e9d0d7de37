package integration

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/door-sentry/internal/config"
	"github.com/oshokin/door-sentry/internal/input"
	"github.com/oshokin/door-sentry/internal/network"
	"github.com/oshokin/door-sentry/internal/repository/configstore"
	"github.com/oshokin/door-sentry/internal/service/controller"
	"github.com/oshokin/door-sentry/internal/service/trigger"
)

// notificationSink records notification POSTs.
type notificationSink struct {
	// mu protects the slices.
	mu sync.Mutex
	// messages holds every received message.
	messages []string
	// authorizations holds every Authorization header.
	authorizations []string
}

// ServeHTTP records the request.
func (s *notificationSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.messages = append(s.messages, r.FormValue("message"))
	s.authorizations = append(s.authorizations, r.Header.Get("Authorization"))
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

// received returns a copy of the messages.
func (s *notificationSink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.messages...)
}

// triggerCounter counts trigger commands.
type triggerCounter struct {
	// mu protects count.
	mu sync.Mutex
	// count is the number of commands run.
	count int
}

// run counts one command.
func (c *triggerCounter) run(context.Context, []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++

	return nil
}

// value returns the count.
func (c *triggerCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count
}

// device bundles the processes and fakes around one controller run.
type device struct {
	cardDir    string
	sink       *notificationSink
	triggers   *triggerCounter
	metricsURL string
	healthAddr string
	done       chan error
	cancel     context.CancelFunc
}

// reservePort returns a free TCP address on localhost.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// seedCard writes the device records to dir.
func seedCard(t *testing.T, dir string, records map[string]string) {
	t.Helper()

	store := configstore.NewFileStore(dir)
	for key, value := range records {
		require.NoError(t, store.Write(context.Background(), key, value))
	}
}

// startDevice runs the controller over a card with records, reading lines from a file.
func startDevice(t *testing.T, records map[string]string, lines string) *device {
	t.Helper()

	dir := t.TempDir()
	cardDir := filepath.Join(dir, "card")
	require.NoError(t, os.MkdirAll(cardDir, 0o750))
	seedCard(t, cardDir, records)

	linesPath := filepath.Join(dir, "uart.log")
	require.NoError(t, os.WriteFile(linesPath, []byte(lines), 0o600))

	d := &device{
		cardDir:    cardDir,
		sink:       new(notificationSink),
		triggers:   new(triggerCounter),
		healthAddr: reservePort(t),
		done:       make(chan error, 1),
	}

	notifyServer := httptest.NewServer(d.sink)
	t.Cleanup(notifyServer.Close)

	triggerServer := httptest.NewServer(
		trigger.NewServer([]string{"show-desktop"}, trigger.WithRunner(d.triggers.run)).Handler(),
	)
	t.Cleanup(triggerServer.Close)

	metricsAddr := reservePort(t)
	d.metricsURL = "http://" + metricsAddr

	settings := config.Default()
	settings.Storage.Dir = cardDir
	settings.Input = config.InputConfig{Source: input.KindFile, Path: linesPath}
	settings.Network.Link = network.LinkStatic
	settings.Network.RetryInterval = 10 * time.Millisecond
	settings.Notify.Endpoint = notifyServer.URL + "/api/notify"
	settings.Notify.TriggerURL = triggerServer.URL + "/trigger"
	settings.Notify.Timeout = time.Second
	settings.Controller.PollInterval = 10 * time.Millisecond
	settings.Controller.Cooldown = 50 * time.Millisecond
	settings.HealthAddress = d.healthAddr
	settings.MetricsAddress = metricsAddr

	cfgPath := filepath.Join(dir, "door-sentry-settings.yaml")
	require.NoError(t, config.Save(cfgPath, settings))

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	go func() {
		options := &controller.Options{
			ConfigPath:    cfgPath,
			AllowMultiple: true,
		}

		d.done <- controller.Run(ctx, options)
	}()

	return d
}

// stop cancels the controller and waits for a clean exit.
func (d *device) stop(t *testing.T) {
	t.Helper()

	d.cancel()

	select {
	case err := <-d.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
}

// readRecord reads one record from the card.
func (d *device) readRecord(t *testing.T, key string) string {
	t.Helper()

	value, err := configstore.NewFileStore(d.cardDir).Read(context.Background(), key)
	require.NoError(t, err)

	return value
}
