package engine

import "github.com/wudi/pdfbridge/observability"

func newLogger(l observability.Logger) observability.Logger {
	return observability.OrNop(l).With(observability.String("component", "engine"))
}
