package postgres

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("souqly/internal/adapters/repos/postgres")
	logger = otelslog.NewLogger("souqly/internal/adapters/repos/postgres")
)
