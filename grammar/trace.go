package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lrgen.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.grammar")
}
