package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/databacker/dir-archiver/pkg/config"
)

const (
	sourceField     = "source"
	sourceTelemetry = "telemetry"
	runField        = "run"
	operationField  = "operation"
)

// LogEntry is one log line as posted to the telemetry endpoint.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Run       string                 `json:"run"`
	Operation string                 `json:"operation,omitempty"`
	Fields    map[string]interface{} `json:"fields"`
}

// NewTelemetry creates a logrus hook that posts entries as JSON to conf.URL.
// The endpoint is checked once with a GET before the hook is returned.
func NewTelemetry(conf config.Telemetry, ch chan<- int) (log.Hook, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("error requesting telemetry endpoint: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error requesting telemetry endpoint: %s", resp.Status)
	}
	return &telemetry{conf: conf, client: client, ch: ch}, nil
}

type telemetry struct {
	conf   config.Telemetry
	client *http.Client
	mu     sync.Mutex
	buffer []*log.Entry
	// ch receives the number of entries in each batch once it has been sent, for synchronization in tests.
	ch chan<- int
}

// Levels the levels for which the hook should fire
func (t *telemetry) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel, log.InfoLevel, log.DebugLevel}
}

// Fire buffers the entry and sends the batch once the buffer is full. Sending does not block logging.
func (t *telemetry) Fire(entry *log.Entry) error {
	// if this message is from ourself, do not try to send it again
	if entry.Data[sourceField] == sourceTelemetry {
		return nil
	}
	t.mu.Lock()
	t.buffer = append(t.buffer, entry)
	if t.conf.BufferSize > 1 && len(t.buffer) < t.conf.BufferSize {
		t.mu.Unlock()
		return nil
	}
	entries := t.buffer
	t.buffer = nil
	t.mu.Unlock()

	remoteEntries := make([]LogEntry, len(entries))
	for i, e := range entries {
		remoteEntries[i] = toLogEntry(e)
	}
	l := entry.Logger.WithField(sourceField, sourceTelemetry)
	l.Level = entry.Logger.Level
	go func() {
		if t.ch != nil {
			defer func() { t.ch <- len(remoteEntries) }()
		}
		if err := t.send(remoteEntries); err != nil {
			l.Errorf("telemetry: %v", err)
		}
	}()
	return nil
}

func (t *telemetry) send(entries []LogEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("error marshalling log entries: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, t.conf.URL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("error connecting to endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed sending data to endpoint: %s", resp.Status)
	}
	return nil
}

func toLogEntry(entry *log.Entry) LogEntry {
	le := LogEntry{
		Timestamp: entry.Time.UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     entry.Level.String(),
		Fields:    map[string]interface{}{},
		Message:   entry.Message,
	}
	for k, v := range entry.Data {
		switch k {
		case runField:
			le.Run = fmt.Sprint(v)
		case operationField:
			le.Operation = fmt.Sprint(v)
		default:
			le.Fields[k] = v
		}
	}
	return le
}
