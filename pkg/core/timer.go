package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	beginDelayRE = regexp.MustCompile(`^\+([0-9]+)$`)
	beginTimeRE  = regexp.MustCompile(`^([0-9][0-9])([0-9][0-9])$`)
)

// TimerOptions selects when to run. With no Cron and no Frequency, or with Once,
// the activity runs a single time.
type TimerOptions struct {
	Once      bool
	Cron      string
	Begin     string
	Frequency int
}

func (o TimerOptions) single() bool {
	return o.Once || (o.Cron == "" && o.Frequency <= 0)
}

type Update struct {
	// Last whether or not this is the last update, and no more will be coming.
	// If true, perform this action and then end.
	Last bool
}

func sendTimer(c chan Update, last bool) {
	// make the channel write non-blocking; a tick is dropped while the previous one is pending
	select {
	case c <- Update{Last: last}:
	default:
	}
}

// Validate checks the cron expression and the begin time without waiting for anything.
func (o TimerOptions) Validate() error {
	if o.Once {
		return nil
	}
	if o.Cron != "" {
		if _, err := cron.ParseStandard(o.Cron); err != nil {
			return fmt.Errorf("invalid cron format '%s': %v", o.Cron, err)
		}
		return nil
	}
	if o.Begin == "" {
		return nil
	}
	_, err := parseBegin(o.Begin)
	return err
}

// Timer start a timer that tells when to run an activity, based on its options.
// Each time to run an activity is indicated via a message in a channel. The channel
// is closed after the last update, or once done is closed.
func Timer(opts TimerOptions, done <-chan struct{}) (<-chan Update, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	delay, err := initialDelay(opts, time.Now())
	if err != nil {
		return nil, err
	}

	// if delay is 0, this will do nothing, so it does not hurt
	time.Sleep(delay)

	c := make(chan Update, 1)
	go func(opts TimerOptions) {
		// when this goroutine ends, close the channel
		defer close(c)

		if opts.single() {
			sendTimer(c, true)
			return
		}

		for {
			lastRun := time.Now()
			sendTimer(c, false)

			var delay time.Duration
			if opts.Cron != "" {
				delay, _ = waitForCron(opts.Cron, time.Now())
			} else {
				delay = nextFrequencyDelay(lastRun, time.Now(), opts.Frequency)
			}
			select {
			case <-done:
				return
			case <-time.After(delay):
			}
		}
	}(opts)
	return c, nil
}

// beginTime is a parsed begin value: a relative delay, or a UTC time of day.
type beginTime struct {
	relative     bool
	delay        time.Duration
	hour, minute int
}

// parseBegin accepts +MM (minutes from now) or HHMM (24-hour UTC clock).
func parseBegin(begin string) (beginTime, error) {
	// first look for +MM, which means delay MM minutes
	if parts := beginDelayRE.FindStringSubmatch(begin); len(parts) > 1 {
		delayMins, err := strconv.Atoi(parts[1])
		if err != nil {
			return beginTime{}, fmt.Errorf("invalid format for begin delay '%s': %v", begin, err)
		}
		return beginTime{relative: true, delay: time.Duration(delayMins) * time.Minute}, nil
	}
	parts := beginTimeRE.FindStringSubmatch(begin)
	if len(parts) < 3 {
		return beginTime{}, fmt.Errorf("invalid format for begin delay '%s'", begin)
	}
	hour, _ := strconv.Atoi(parts[1])
	minute, _ := strconv.Atoi(parts[2])
	if hour > 23 || minute > 59 {
		return beginTime{}, fmt.Errorf("invalid time for begin delay '%s'", begin)
	}
	return beginTime{hour: hour, minute: minute}, nil
}

// initialDelay calculates how long to wait before the first run.
func initialDelay(opts TimerOptions, now time.Time) (time.Duration, error) {
	if opts.Once {
		return 0, nil
	}
	if opts.Cron != "" {
		delay, err := waitForCron(opts.Cron, now)
		if err != nil {
			return 0, fmt.Errorf("invalid cron format '%s': %v", opts.Cron, err)
		}
		return delay, nil
	}
	if opts.Begin == "" {
		return 0, nil
	}
	begin, err := parseBegin(opts.Begin)
	if err != nil {
		return 0, err
	}
	if begin.relative {
		return begin.delay, nil
	}
	utc := now.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), begin.hour, begin.minute, 0, 0, time.UTC)
	if !start.After(utc) {
		start = start.Add(24 * time.Hour)
	}
	return start.Sub(utc), nil
}

// nextFrequencyDelay returns the wait until the next multiple of frequency minutes
// after lastRun, waiting at least one full period when a run finished quickly.
func nextFrequencyDelay(lastRun, now time.Time, frequency int) time.Duration {
	diff := int(now.Sub(lastRun).Minutes())
	if diff == 0 {
		diff += frequency
	}
	passed := diff % frequency
	return time.Duration(frequency-passed) * time.Minute
}

// waitForCron given the current time and a cron string, calculate the Duration
// until the next time we will match the cron
func waitForCron(cronExpr string, from time.Time) (time.Duration, error) {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return time.Duration(0), err
	}
	// sched.Next() returns the next time that the cron expression will match, beginning in 1ns;
	// we allow matching current time, so we do it from 1ns
	next := sched.Next(from.Add(-1 * time.Nanosecond))
	return next.Sub(from), nil
}

// Timer runs cmd on the schedule in opts, stopping at the first error or after the last run.
func (e *Executor) Timer(opts TimerOptions, cmd func() error) error {
	done := make(chan struct{})
	defer close(done)
	c, err := Timer(opts, done)
	if err != nil {
		return err
	}
	for update := range c {
		if err := cmd(); err != nil {
			return err
		}
		if update.Last {
			break
		}
	}
	return nil
}
