package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/dispatch"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/state"
)

func eventReq(source, resource, action, object string, records ...any) *message.EventRequest {
	return &message.EventRequest{
		Source:   source,
		Resource: resource,
		Action:   action,
		Object:   object,
		Records:  records,
	}
}

// recordEcho returns the Record the dispatcher positioned the request on.
func recordEcho(_ context.Context, _ *auth.Context, args ...any) (any, error) {
	req := args[0].(*message.EventRequest)
	return req.Record, nil
}

func TestEventRequest_NopWhenNothingMatches(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho))
	c := newContainer(t, table, &stubSecurity{})

	tests := []struct {
		name string
		req  *message.EventRequest
	}{
		{"unknown resource", eventReq("s3", "backups", "created", "a.png")},
		{"unknown source", eventReq("sqs", "uploads", "created", "a.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.EventRequest(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("EventRequest: %v", err)
			}
			if res.Status != message.StatusNop {
				t.Fatalf("Status = %q, want NOP", res.Status)
			}
			if res.Returns == nil || len(res.Returns) != 0 {
				t.Fatalf("Returns = %#v, want empty non-nil slice", res.Returns)
			}
			if got := c.State(); got != state.Ready {
				t.Fatalf("State() = %v, want ready", got)
			}
		})
	}
}

func TestEventRequest_FilterMismatchIsNop(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho,
			metadata.WithActions("created"),
			metadata.WithObjects("*.png")))
	c := newContainer(t, table, &stubSecurity{})

	res, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "deleted", "a.png", "r1"))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	if res.Status != message.StatusNop || len(res.Returns) != 0 {
		t.Fatalf("got %q with %d returns, want NOP with none", res.Status, len(res.Returns))
	}
}

func TestEventRequest_FanOutPerTargetPerRecord(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho).
		Event("s3", "uploads", "audit", "Log", recordEcho))
	svc := &hookSvc{}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("media", svc))

	res, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "created", "a.png", "r1", "r2"))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	if res.Status != message.StatusOK {
		t.Fatalf("Status = %q, want OK", res.Status)
	}
	want := []message.EventReturn{
		{Service: "media", Method: "Ingest", Data: "r1"},
		{Service: "media", Method: "Ingest", Data: "r2"},
		{Service: "audit", Method: "Log", Data: "r1"},
		{Service: "audit", Method: "Log", Data: "r2"},
	}
	if !reflect.DeepEqual(res.Returns, want) {
		t.Fatalf("Returns = %#v\nwant %#v", res.Returns, want)
	}
	// Lifecycle ran once per target, not once per record.
	if svc.activated != 2 || svc.released != 2 {
		t.Fatalf("hooks = %d/%d activations/releases, want 2/2", svc.activated, svc.released)
	}
}

func TestEventRequest_RecordlessEventInvokesOnce(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Event("cron", "cleanup", "janitor", "Sweep", recordEcho))
	c := newContainer(t, table, &stubSecurity{})

	res, err := c.EventRequest(context.Background(),
		eventReq("cron", "cleanup", "tick", ""))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	if res.Status != message.StatusOK || len(res.Returns) != 1 {
		t.Fatalf("got %q with %d returns, want OK with 1", res.Status, len(res.Returns))
	}
	if res.Returns[0].Data != nil {
		t.Fatalf("Data = %#v, want nil record", res.Returns[0].Data)
	}
}

func TestEventRequest_MixedOutcomesFail(t *testing.T) {
	failing := func(context.Context, *auth.Context, ...any) (any, error) {
		return nil, errors.New("ingest failed")
	}
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho).
		Event("s3", "uploads", "thumb", "Render", failing))
	c := newContainer(t, table, &stubSecurity{})

	res, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "created", "a.png", "r1"))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	if res.Status != message.StatusFailed {
		t.Fatalf("Status = %q, want FAILED", res.Status)
	}
	if len(res.Returns) != 2 {
		t.Fatalf("len(Returns) = %d, want 2", len(res.Returns))
	}
	if res.Returns[0].Failed() {
		t.Fatalf("first return failed: %q", res.Returns[0].Error)
	}
	if res.Returns[0].Data != "r1" {
		t.Fatalf("first return Data = %#v, want r1", res.Returns[0].Data)
	}
	if !res.Returns[1].Failed() {
		t.Fatal("second return should carry the handler error")
	}
}

func TestEventRequest_TargetActivationFailureRecorded(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho))
	svc := &hookSvc{activateErr: errors.New("warmup failed")}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("media", svc))

	res, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "created", "a.png", "r1"))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	if res.Status != message.StatusFailed {
		t.Fatalf("Status = %q, want FAILED", res.Status)
	}
	if len(res.Returns) != 1 || !res.Returns[0].Failed() {
		t.Fatalf("Returns = %#v, want one failed entry", res.Returns)
	}
	if svc.released != 1 {
		t.Fatalf("releases = %d, want 1 after failed activation", svc.released)
	}
}

func TestEventRequest_AuthFailureRecordedPerTarget(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho).
		Event("s3", "uploads", "audit", "Log", recordEcho))
	c := newContainer(t, table, &stubSecurity{err: errors.New("nope")})

	res, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "created", "a.png", "r1"))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	if res.Status != message.StatusFailed {
		t.Fatalf("Status = %q, want FAILED", res.Status)
	}
	// Both targets were still attempted.
	if len(res.Returns) != 2 {
		t.Fatalf("len(Returns) = %d, want 2", len(res.Returns))
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready", got)
	}
}

func TestEventRequest_RecordFailureLogged(t *testing.T) {
	failing := func(context.Context, *auth.Context, ...any) (any, error) {
		return nil, errors.New("ingest failed")
	}
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", failing))
	var buf bytes.Buffer
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	if _, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "created", "a.png", "r1")); err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "event handler failed") {
		t.Fatalf("record failure left no error record:\n%s", out)
	}
}

func TestEventRequest_AdapterWrapsInvocation(t *testing.T) {
	adapter := func(ctx context.Context, h metadata.Handler, ac *auth.Context, req *message.EventRequest) (any, error) {
		res, err := h(ctx, ac, req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"wrapped": res}, nil
	}
	table := buildTable(t, metadata.NewBuilder().
		Event("s3", "uploads", "media", "Ingest", recordEcho,
			metadata.WithEventAdapter(adapter)))
	c := newContainer(t, table, &stubSecurity{})

	res, err := c.EventRequest(context.Background(),
		eventReq("s3", "uploads", "created", "a.png", "r1"))
	if err != nil {
		t.Fatalf("EventRequest: %v", err)
	}
	want := map[string]any{"wrapped": "r1"}
	if !reflect.DeepEqual(res.Returns[0].Data, want) {
		t.Fatalf("Data = %#v, want %#v", res.Returns[0].Data, want)
	}
}
