package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

type countingTracer struct {
	starts int
	ends   int
}

func (c *countingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	c.starts++
	return ctx
}

func (c *countingTracer) TraceQueryEnd(_ context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	c.ends++
}

func TestFilteredTracer(t *testing.T) {
	tests := []struct {
		name      string
		skipTable string
		sql       string
		traced    bool
	}{
		{"skips matching table", "tasks", "UPDATE tasks SET status = $1", false},
		{"case insensitive", "TASKS", "update Tasks set status = $1", false},
		{"traces other tables", "tasks", "SELECT * FROM properties", true},
		{"empty skip traces everything", "", "UPDATE tasks SET status = $1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &countingTracer{}
			tracer := NewFilteredTracer(inner, tt.skipTable)

			ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: tt.sql})
			tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

			want := 0
			if tt.traced {
				want = 1
			}
			if inner.starts != want || inner.ends != want {
				t.Errorf("Expected %d start/end traces, got %d/%d", want, inner.starts, inner.ends)
			}
		})
	}
}
