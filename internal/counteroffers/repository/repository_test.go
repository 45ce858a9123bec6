package repository

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"recycle_portal_backend/platform/logger"
)

func TestDBErrorLogsAndWraps(t *testing.T) {
	var buf bytes.Buffer
	repo := New(nil, &logger.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})
	cause := errors.New("connection reset")

	ctx := logger.ContextWithRequestID(context.Background(), "req-7")
	err := repo.dbError(ctx, "resolve counter offer", cause)

	if !errors.Is(err, cause) || err.Error() != "resolve counter offer: connection reset" {
		t.Fatalf("unexpected error %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"database_error"`) || !strings.Contains(out, `"request_id":"req-7"`) {
		t.Fatalf("expected database_error log with request id, got %s", out)
	}
}
