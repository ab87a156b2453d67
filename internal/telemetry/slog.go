package telemetry

import (
	"fmt"
	"log/slog"
	"strings"
)

// SlogAPI implements API using the log/slog package.
//
// Scoped ids ("previred: extract.afp-rates") are split into a `component` attribute holding the
// scopes and an `id` attribute holding the last segment, errors among the params are logged under
// `err` and the rest under `params.<n>`.
type SlogAPI struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func splitScope(id string) (component, rest string) {
	idx := strings.LastIndex(id, ": ")
	if idx < 0 {
		return "", id
	}
	return id[:idx], id[idx+2:]
}

func identify(out *[]any, id string) {
	component, rest := splitScope(id)
	if component != "" {
		*out = append(*out, "component", component)
	}
	*out = append(*out, "id", rest)
}

func formatParams(out *[]any, params []any) {
	errs := 0
	for i, p := range params {
		if err, ok := p.(error); ok {
			key := "err"
			if errs > 0 {
				key = fmt.Sprintf("err.%d", errs)
			}
			*out = append(*out, key, err.Error())
			errs++
			continue
		}
		*out = append(*out, fmt.Sprintf("params.%d", i), p)
	}
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	attrs := []any{}
	identify(&attrs, id)
	formatParams(&attrs, params)
	s.logger().Error("broken component", attrs...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	attrs := []any{}
	identify(&attrs, id)
	formatParams(&attrs, params)
	s.logger().Warn("warning", attrs...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	attrs := []any{}
	component, message := splitScope(message)
	if component != "" {
		attrs = append(attrs, "component", component)
	}
	formatParams(&attrs, params)
	s.logger().Debug(message, attrs...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	attrs := []any{}
	identify(&attrs, id)
	s.logger().Info("count", append(attrs, "n", count)...)
}
