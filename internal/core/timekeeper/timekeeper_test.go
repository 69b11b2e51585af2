package timekeeper

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eggtimer/internal/core/model"
)

type fakeCountdown struct {
	mu      sync.Mutex
	armed   bool
	left    uint32
	arms    []uint32
	expired chan struct{}
}

func newFakeCountdown() *fakeCountdown {
	return &fakeCountdown{expired: make(chan struct{}, 1)}
}

func (c *fakeCountdown) Arm(seconds uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = true
	c.left = seconds
	c.arms = append(c.arms, seconds)
}

func (c *fakeCountdown) Disarm() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.armed {
		return 0
	}
	c.armed = false
	return c.left
}

func (c *fakeCountdown) Expired() <-chan struct{} {
	return c.expired
}

// elapse simulates time passing on an armed countdown.
func (c *fakeCountdown) elapse(seconds uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left -= seconds
}

func (c *fakeCountdown) isArmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

func (c *fakeCountdown) armHistory() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint32(nil), c.arms...)
}

type fakeReplacer struct {
	argv [][]string
	err  error
}

func (r *fakeReplacer) Replace(argv []string) error {
	r.argv = append(r.argv, argv)
	return r.err
}

type fakeNotifier struct {
	summaries []string
	err       error
}

func (n *fakeNotifier) Notify(summary, body string) error {
	n.summaries = append(n.summaries, summary)
	return n.err
}

type harness struct {
	keeper    *TimeKeeper
	countdown *fakeCountdown
	replacer  *fakeReplacer
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newHarness(config model.TimerConfig) *harness {
	h := &harness{
		countdown: newFakeCountdown(),
		replacer:  &fakeReplacer{},
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	h.keeper = New(config, h.countdown, Config{
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Replacer: h.replacer,
	})
	return h
}

func TestArm(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 10})
	assert.Equal(t, StateIdle, h.keeper.State())

	require.NoError(t, h.keeper.Arm(10))
	assert.Equal(t, StateRunning, h.keeper.State())
	assert.Equal(t, []uint32{10}, h.countdown.armHistory())

	err := h.keeper.Arm(5)
	assert.ErrorIs(t, err, ErrAlreadyArmed)
	assert.Equal(t, []uint32{10}, h.countdown.armHistory())
}

func TestOnExpiryExit(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 3})
	require.NoError(t, h.keeper.Arm(3))

	require.NoError(t, h.keeper.OnExpiry())
	assert.Equal(t, StateCompletedExit, h.keeper.State())
	assert.Empty(t, h.stdout.String())
	assert.Empty(t, h.stderr.String())
}

func TestOnExpiryAlert(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 2, Action: model.ActionAlert})
	require.NoError(t, h.keeper.Arm(2))

	require.NoError(t, h.keeper.OnExpiry())
	assert.Equal(t, StateCompletedAlert, h.keeper.State())
	assert.Equal(t, "\a", h.stdout.String())
}

func TestOnExpiryExec(t *testing.T) {
	argv := []string{"/bin/true", "arg1"}
	h := newHarness(model.TimerConfig{TotalSeconds: 1, Action: model.ActionExec, ExecArgv: argv})
	require.NoError(t, h.keeper.Arm(1))

	require.NoError(t, h.keeper.OnExpiry())
	assert.Equal(t, [][]string{argv}, h.replacer.argv)
	assert.Equal(t, StateCompletedExec, h.keeper.State())
	assert.Empty(t, h.stdout.String())
}

func TestOnExpiryExecFailure(t *testing.T) {
	cause := errors.New("executable file not found")
	h := newHarness(model.TimerConfig{TotalSeconds: 1, Action: model.ActionExec, ExecArgv: []string{"nope"}})
	h.replacer.err = cause
	require.NoError(t, h.keeper.Arm(1))

	err := h.keeper.OnExpiry()
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "nope", execErr.Command)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateCompletedExecFailed, h.keeper.State())
	assert.Contains(t, h.stderr.String(), "Error: Exec failed")
}

func TestOnExpiryExecWithoutReplacer(t *testing.T) {
	stderr := &bytes.Buffer{}
	keeper := New(model.TimerConfig{TotalSeconds: 1, Action: model.ActionExec, ExecArgv: []string{"ls"}},
		newFakeCountdown(), Config{Stdout: &bytes.Buffer{}, Stderr: stderr})
	require.NoError(t, keeper.Arm(1))

	err := keeper.OnExpiry()
	assert.ErrorIs(t, err, errNoReplacer)
	assert.Equal(t, StateCompletedExecFailed, keeper.State())
}

func TestOnExpiryIgnoredUnlessRunning(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 10, Action: model.ActionAlert})

	require.NoError(t, h.keeper.OnExpiry())
	assert.Equal(t, StateIdle, h.keeper.State())

	require.NoError(t, h.keeper.Arm(10))
	h.keeper.OnPauseToggle()
	require.NoError(t, h.keeper.OnExpiry())
	assert.Equal(t, StatePaused, h.keeper.State())
	assert.NotContains(t, h.stdout.String(), "\a")
}

func TestPauseResume(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 10})
	require.NoError(t, h.keeper.Arm(10))
	h.countdown.elapse(4)

	h.keeper.OnPauseToggle()
	assert.Equal(t, "Timer paused, 6 seconds remaining\n", h.stdout.String())
	assert.True(t, h.keeper.Paused())
	assert.Equal(t, uint32(6), h.keeper.Remaining())
	assert.False(t, h.countdown.isArmed())

	h.stdout.Reset()
	h.keeper.OnPauseToggle()
	assert.Equal(t, "Timer resumed\n", h.stdout.String())
	assert.False(t, h.keeper.Paused())
	assert.Equal(t, StateRunning, h.keeper.State())
	assert.True(t, h.countdown.isArmed())
	assert.Equal(t, []uint32{10, 6}, h.countdown.armHistory())
}

func TestRepeatedPauseKeepsCapturedTime(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 30})
	require.NoError(t, h.keeper.Arm(30))

	h.countdown.elapse(5)
	h.keeper.OnPauseToggle()
	h.keeper.OnPauseToggle()
	h.countdown.elapse(10)
	h.keeper.OnPauseToggle()

	assert.Equal(t, uint32(15), h.keeper.Remaining())
	assert.Equal(t, "Timer paused, 25 seconds remaining\nTimer resumed\nTimer paused, 15 seconds remaining\n", h.stdout.String())
}

func TestPauseToggleIgnoredWhenIdleOrDone(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 1})

	h.keeper.OnPauseToggle()
	assert.Equal(t, StateIdle, h.keeper.State())

	require.NoError(t, h.keeper.Arm(1))
	require.NoError(t, h.keeper.OnExpiry())
	h.keeper.OnPauseToggle()
	assert.Equal(t, StateCompletedExit, h.keeper.State())
	assert.Empty(t, h.stdout.String())
}

func TestNotifierCalledOnExpiry(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("no session bus")}
	keeper := New(model.TimerConfig{TotalSeconds: 1, Action: model.ActionAlert}, newFakeCountdown(), Config{
		Stdout:        &bytes.Buffer{},
		Notifier:      notifier,
		NotifySummary: "Tea is ready",
	})
	require.NoError(t, keeper.Arm(1))

	require.NoError(t, keeper.OnExpiry())
	assert.Equal(t, []string{"Tea is ready"}, notifier.summaries)
	assert.Equal(t, StateCompletedAlert, keeper.State())
}

type recordingNotifier struct {
	stdout *bytes.Buffer
	seen   []string
}

func (n *recordingNotifier) Notify(summary, body string) error {
	n.seen = append(n.seen, n.stdout.String())
	return nil
}

func TestAlertWrittenBeforeNotification(t *testing.T) {
	stdout := &bytes.Buffer{}
	notifier := &recordingNotifier{stdout: stdout}
	keeper := New(model.TimerConfig{TotalSeconds: 1, Action: model.ActionAlert}, newFakeCountdown(), Config{
		Stdout:   stdout,
		Notifier: notifier,
	})
	require.NoError(t, keeper.Arm(1))

	require.NoError(t, keeper.OnExpiry())
	assert.Equal(t, []string{"\a"}, notifier.seen)
}

func TestRunPauseResumeExpire(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 10, Action: model.ActionAlert})
	events := h.keeper.Subscribe(16)
	toggles := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.keeper.Run(context.Background(), toggles)
	}()

	require.Eventually(t, func() bool { return h.keeper.State() == StateRunning }, time.Second, 5*time.Millisecond)
	h.countdown.elapse(4)
	toggles <- struct{}{}
	require.Eventually(t, h.keeper.Paused, time.Second, 5*time.Millisecond)
	toggles <- struct{}{}
	require.Eventually(t, func() bool { return h.keeper.State() == StateRunning }, time.Second, 5*time.Millisecond)

	h.countdown.expired <- struct{}{}

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after expiry")
	}

	assert.Equal(t, "Timer paused, 6 seconds remaining\nTimer resumed\n\a", h.stdout.String())
	assert.Equal(t, []uint32{10, 6}, h.countdown.armHistory())

	var states []State
	for event := range events {
		states = append(states, event.State)
	}
	assert.Equal(t, []State{StateRunning, StatePaused, StateRunning, StateCompletedAlert}, states)
}

func TestRunContextCancel(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 10})
	events := h.keeper.Subscribe(4)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.keeper.Run(ctx, nil)
	}()

	require.Eventually(t, func() bool { return h.keeper.State() == StateRunning }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, h.countdown.isArmed())

	for range events {
	}
}

func TestRunExecFailure(t *testing.T) {
	h := newHarness(model.TimerConfig{TotalSeconds: 1, Action: model.ActionExec, ExecArgv: []string{"missing"}})
	h.replacer.err = errors.New("not found")
	h.countdown.expired <- struct{}{}

	err := h.keeper.Run(context.Background(), nil)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StateCompletedExecFailed, h.keeper.State())
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.False(t, StatePaused.Terminal())
	assert.True(t, StateCompletedExit.Terminal())
	assert.True(t, StateCompletedAlert.Terminal())
	assert.True(t, StateCompletedExec.Terminal())
	assert.True(t, StateCompletedExecFailed.Terminal())
}
