package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"
)

func TestLogSinkScheduleTriggerLogsAndSucceeds(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Debug, &buf, true)
	s := LogSink{Logger: l}

	if err := s.ScheduleTrigger(12.5); err != nil {
		t.Fatalf("ScheduleTrigger: %v", err)
	}
	if !strings.Contains(buf.String(), "trigger scheduled") {
		t.Errorf("log output = %q, want it to mention the scheduled trigger", buf.String())
	}
}

var _ TriggerSink = LogSink{}
