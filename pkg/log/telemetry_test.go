package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databacker/dir-archiver/pkg/config"
)

type recorder struct {
	mu   sync.Mutex
	body bytes.Buffer
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusOK)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.Copy(&r.body, req.Body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (r *recorder) bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.body.Bytes()...)
}

// TestSendLog tests sending logs through the hook as logrus would.
func TestSendLog(t *testing.T) {
	tests := []struct {
		name     string
		level    log.Level
		fields   map[string]interface{}
		bufSize  int
		expected bool
	}{
		{"normal", log.InfoLevel, nil, 1, true},
		{"fatal", log.FatalLevel, nil, 1, true},
		{"error", log.ErrorLevel, nil, 1, true},
		{"warn", log.WarnLevel, nil, 1, true},
		{"debug", log.DebugLevel, nil, 1, true},
		{"debug buffered", log.DebugLevel, nil, 3, true},
		{"with run", log.InfoLevel, map[string]interface{}{runField: "run-1", operationField: "compress"}, 1, true},
		{"trace", log.TraceLevel, nil, 1, false},
		{"self-log", log.InfoLevel, map[string]interface{}{
			sourceField: sourceTelemetry,
		}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			server := httptest.NewServer(http.HandlerFunc(rec.handler))
			defer server.Close()

			ch := make(chan int, 1)
			logger := log.New()
			hook, err := NewTelemetry(config.Telemetry{URL: server.URL, BufferSize: tt.bufSize}, ch)
			require.NoError(t, err)
			logger.SetLevel(log.TraceLevel)
			logger.AddHook(hook)
			logger.SetOutput(io.Discard)

			var msgs []string
			for i := 0; i < tt.bufSize; i++ {
				msg := fmt.Sprintf("test message %d random %d", i, rand.Intn(1000))
				msgs = append(msgs, msg)
				logger.WithFields(tt.fields).Log(tt.level, msg)
			}
			// entries that should not be sent never signal, so wait a bounded time
			var msgCount int
			select {
			case msgCount = <-ch:
			case <-time.After(1 * time.Second):
			}
			body := rec.bytes()
			if !tt.expected {
				assert.Empty(t, body)
				return
			}
			require.NotEmpty(t, body)
			var entries []LogEntry
			require.NoError(t, json.Unmarshal(body, &entries))
			assert.Equal(t, msgCount, len(entries))
			require.Len(t, entries, tt.bufSize)
			for i, le := range entries {
				assert.Equal(t, msgs[i], le.Message)
				assert.Equal(t, tt.level.String(), le.Level)
				if run, ok := tt.fields[runField]; ok {
					assert.Equal(t, run, le.Run)
					assert.Equal(t, tt.fields[operationField], le.Operation)
					assert.NotContains(t, le.Fields, runField)
				}
			}
		})
	}
}

func TestNewTelemetryBadEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	_, err := NewTelemetry(config.Telemetry{URL: server.URL}, nil)
	assert.Error(t, err)
}
