package application

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/workspace-booking/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected the provided logger back")
	}
	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected the process default logger as fallback")
	}
}

func TestServiceLogger(t *testing.T) {
	t.Parallel()

	t.Run("prefers the context logger and tags service and operation", func(t *testing.T) {
		var buf bytes.Buffer
		contextual := slog.New(slog.NewTextHandler(&buf, nil))
		base := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := logging.ContextWithLogger(context.Background(), contextual)

		serviceLogger(ctx, base, "ReservationService", "CreateReservation", "area_id", "area-1").Info("checked")

		line := buf.String()
		for _, want := range []string{"service=ReservationService", "operation=CreateReservation", "area_id=area-1"} {
			if !strings.Contains(line, want) {
				t.Fatalf("expected %q in log line %q", want, line)
			}
		}
	})

	t.Run("falls back to the base logger without a context logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		serviceLogger(context.Background(), base, "AuditService", "").Info("ran")

		line := buf.String()
		if !strings.Contains(line, "service=AuditService") {
			t.Fatalf("expected service attribute in %q", line)
		}
		if strings.Contains(line, "operation=") {
			t.Fatalf("expected no operation attribute in %q", line)
		}
	})
}
