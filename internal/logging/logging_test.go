package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
		check   func(t *testing.T, out string)
	}{
		{
			name:   "json at info drops debug",
			level:  "info",
			format: "json",
			check: func(t *testing.T, out string) {
				if strings.Contains(out, "hidden") {
					t.Fatalf("debug line should be filtered: %s", out)
				}
				if !strings.Contains(out, `"msg":"shown"`) {
					t.Fatalf("expected json record, got %s", out)
				}
			},
		},
		{
			name:   "text at debug",
			level:  "DEBUG",
			format: "text",
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "msg=hidden") {
					t.Fatalf("expected debug text record, got %s", out)
				}
			},
		},
		{name: "bad level", level: "loud", format: "json", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := New(&buf, tt.level, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			logger.Debug("hidden")
			logger.Info("shown")
			tt.check(t, buf.String())
		})
	}
}

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no logger on a bare context")
	}
	logger, err := New(&bytes.Buffer{}, "info", "json")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger round-trip through context")
	}
}
