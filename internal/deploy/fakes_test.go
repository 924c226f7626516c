package deploy

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/slotshift/slotshift/internal/domain"
)

// fakeClock advances instantly on Sleep so retry tests run without
// wall-clock waits.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) sleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

// fakeSlotClient is an in-memory SlotClient recording every call.
type fakeSlotClient struct {
	mu         sync.Mutex
	settings   map[string]domain.SlotConfig
	lastUpdate map[string]domain.SlotConfig
	calls      map[string]int

	getSlotFn   func(ctx context.Context, t domain.Target) error
	settingsErr error
	updateErr   error
	previewErr  error
	completeErr error
	cancelErr   error
}

func newFakeSlotClient() *fakeSlotClient {
	return &fakeSlotClient{
		settings:   make(map[string]domain.SlotConfig),
		lastUpdate: make(map[string]domain.SlotConfig),
		calls:      make(map[string]int),
	}
}

func (f *fakeSlotClient) setSettings(t domain.Target, s domain.SlotConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[t.String()] = s.Clone()
}

func (f *fakeSlotClient) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeSlotClient) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeSlotClient) GetSlot(ctx context.Context, t domain.Target) error {
	f.record("getSlot")
	if f.getSlotFn != nil {
		return f.getSlotFn(ctx, t)
	}
	return nil
}

func (f *fakeSlotClient) GetSlotSettings(_ context.Context, t domain.Target) (domain.SlotConfig, error) {
	f.record("getSettings")
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[t.String()].Clone(), nil
}

func (f *fakeSlotClient) UpdateSlotSettings(_ context.Context, t domain.Target, settings domain.SlotConfig) error {
	f.record("update")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[t.String()] = settings.Clone()
	f.lastUpdate[t.String()] = settings.Clone()
	return nil
}

func (f *fakeSlotClient) BeginSwapPreview(_ context.Context, _ domain.Target) error {
	f.record("preview")
	return f.previewErr
}

func (f *fakeSlotClient) CompleteSwap(_ context.Context, _ domain.Target) error {
	f.record("complete")
	return f.completeErr
}

func (f *fakeSlotClient) CancelSwap(_ context.Context, _ domain.Target) error {
	f.record("cancel")
	return f.cancelErr
}

// fakeDoer replays a fixed sequence of HTTP statuses, repeating the last
// one once exhausted. statusFor, when set, decides per URL instead.
type fakeDoer struct {
	mu        sync.Mutex
	statuses  []int
	err       error
	requests  int
	statusFor func(url string) int
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests++
	if d.err != nil {
		return nil, d.err
	}

	status := http.StatusOK
	if d.statusFor != nil {
		status = d.statusFor(req.URL.String())
	} else if len(d.statuses) > 0 {
		idx := d.requests - 1
		if idx >= len(d.statuses) {
			idx = len(d.statuses) - 1
		}
		status = d.statuses[idx]
	}

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func (d *fakeDoer) requestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests
}

// fakeConfirmer records whether it was asked and answers with a canned
// decision.
type fakeConfirmer struct {
	mu      sync.Mutex
	approve bool
	err     error
	asked   int
}

func (c *fakeConfirmer) Confirm(_ []domain.Target, _ domain.SettingChange) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked++
	return c.approve, c.err
}

func (c *fakeConfirmer) askedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asked
}

func testTarget(name string) domain.Target {
	return domain.Target{Name: name, ResourceGroup: "rg-prod", SourceSlot: "staging"}
}

func testChange() domain.SettingChange {
	return domain.SettingChange{Name: "API_VERSION", Value: "v2"}
}
