package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForCron(t *testing.T) {
	tests := []struct {
		name string
		cron string
		from string
		wait time.Duration
		err  error
	}{
		{"current minute", "1 * * * *", "2018-10-10T10:01:00Z", 0, nil},
		{"next minute", "1 * * * *", "2018-10-10T10:00:00Z", 1 * time.Minute, nil},
		{"next day by hour", "* 1 * * *", "2018-10-10T10:00:00Z", 15 * time.Hour, nil},
		{"current minute but seconds in", "1 * * * *", "2018-10-10T10:01:10Z", 59*time.Minute + 50*time.Second, nil}, // this line tests that we use the current minute, and not wait for "-10"
		{"midnight next day", "0 0 * * *", "2021-11-30T10:00:00Z", 14 * time.Hour, nil},
		{"first day next month in next year", "0 0 1 * *", "2020-12-30T10:00:00Z", 14*time.Hour + 24*time.Hour, nil}, // this line tests that we can handle rolling month correctly
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, err := time.Parse(time.RFC3339, tt.from)
			if err != nil {
				t.Fatalf("unable to parse from %s: %v", tt.from, err)
			}
			result, err := waitForCron(tt.cron, from)
			switch {
			case (err != nil && tt.err == nil) || (err == nil && tt.err != nil) || (err != nil && tt.err != nil && err.Error() != tt.err.Error()):
				t.Errorf("waitForCron(%s, %s) error = %v, wantErr %v", tt.cron, tt.from, err, tt.err)
			case result != tt.wait:
				t.Errorf("waitForCron(%s, %s) = %v, want %v", tt.cron, tt.from, result, tt.wait)
			}
		})
	}
}

func TestInitialDelay(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		opts    TimerOptions
		delay   time.Duration
		wantErr bool
	}{
		{"nothing set", TimerOptions{}, 0, false},
		{"once ignores begin", TimerOptions{Once: true, Begin: "+10"}, 0, false},
		{"relative begin", TimerOptions{Begin: "+10"}, 10 * time.Minute, false},
		{"immediate begin", TimerOptions{Begin: "+0"}, 0, false},
		{"absolute begin later today", TimerOptions{Begin: "1145"}, 75 * time.Minute, false},
		{"absolute begin tomorrow", TimerOptions{Begin: "0930"}, 23 * time.Hour, false},
		{"cron", TimerOptions{Cron: "0 11 * * *"}, 30 * time.Minute, false},
		{"bad begin", TimerOptions{Begin: "soon"}, 0, true},
		{"bad clock", TimerOptions{Begin: "2575"}, 0, true},
		{"bad cron", TimerOptions{Cron: "every day"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, err := initialDelay(tt.opts, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.delay, delay)
		})
	}
}

func TestNextFrequencyDelay(t *testing.T) {
	last := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 60*time.Minute, nextFrequencyDelay(last, last.Add(10*time.Second), 60))
	assert.Equal(t, 45*time.Minute, nextFrequencyDelay(last, last.Add(15*time.Minute), 60))
	assert.Equal(t, 50*time.Minute, nextFrequencyDelay(last, last.Add(70*time.Minute), 60))
}

func TestExecutorTimerRunsOnce(t *testing.T) {
	tests := []struct {
		name string
		opts TimerOptions
	}{
		{"default", TimerOptions{}},
		{"once", TimerOptions{Once: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Executor
			runs := 0
			err := e.Timer(tt.opts, func() error {
				runs++
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 1, runs)
		})
	}
}

func TestExecutorTimerStopsOnError(t *testing.T) {
	var e Executor
	failure := errors.New("failed run")
	runs := 0
	err := e.Timer(TimerOptions{Frequency: 1}, func() error {
		runs++
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, runs)
}

func TestTimerOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    TimerOptions
		wantErr string
	}{
		{"nothing set", TimerOptions{}, ""},
		{"once ignores bad cron", TimerOptions{Once: true, Cron: "not a cron"}, ""},
		{"cron", TimerOptions{Cron: "*/5 * * * *"}, ""},
		{"relative begin", TimerOptions{Begin: "+90", Frequency: 60}, ""},
		{"absolute begin", TimerOptions{Begin: "2330"}, ""},
		{"bad cron", TimerOptions{Cron: "not a cron"}, "invalid cron format 'not a cron'"},
		{"begin out of range", TimerOptions{Begin: "9999"}, "invalid time for begin delay '9999'"},
		{"begin minutes out of range", TimerOptions{Begin: "1260"}, "invalid time for begin delay '1260'"},
		{"begin garbage", TimerOptions{Begin: "noon"}, "invalid format for begin delay 'noon'"},
		{"begin delay overflow", TimerOptions{Begin: "+99999999999999999999"}, "invalid format for begin delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTimerRejectsInvalidOptions(t *testing.T) {
	c, err := Timer(TimerOptions{Begin: "9999"}, nil)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestTimerStopsWhenDone(t *testing.T) {
	done := make(chan struct{})
	c, err := Timer(TimerOptions{Frequency: 60}, done)
	require.NoError(t, err)

	select {
	case update := <-c:
		assert.False(t, update.Last)
	case <-time.After(5 * time.Second):
		t.Fatal("no first update")
	}

	close(done)
	select {
	case _, ok := <-c:
		assert.False(t, ok, "expected the channel to be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("timer kept running after done was closed")
	}
}
