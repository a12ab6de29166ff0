package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

// FilteredTracer forwards query traces to inner except for statements that
// mention skipTable. Task progress updates fire once per page and would
// otherwise drown the query log.
type FilteredTracer struct {
	inner     pgx.QueryTracer
	skipTable string
}

func NewFilteredTracer(inner pgx.QueryTracer, skipTable string) *FilteredTracer {
	return &FilteredTracer{
		inner:     inner,
		skipTable: strings.ToLower(strings.TrimSpace(skipTable)),
	}
}

type skipCtxKey struct{}

func (t *FilteredTracer) skip(sql string) bool {
	return t.skipTable != "" && strings.Contains(strings.ToLower(sql), t.skipTable)
}

func (t *FilteredTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if t.skip(data.SQL) {
		return context.WithValue(ctx, skipCtxKey{}, true)
	}
	return t.inner.TraceQueryStart(ctx, conn, data)
}

func (t *FilteredTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	if ctx.Value(skipCtxKey{}) != nil {
		return
	}
	t.inner.TraceQueryEnd(ctx, conn, data)
}
