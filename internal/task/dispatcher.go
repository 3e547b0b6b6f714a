package task

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Dispatch resolves the request's kind to its executor and wraps the
// outcome in an envelope. It never returns a Go error or panics: every
// failure, including connection, permission, validation, and driver
// errors, lands in the envelope with DurationMS set.
func (s *Service) Dispatch(ctx context.Context, req Request) (result Result) {
	start := time.Now()

	defer func() {
		result.DurationMS = roundMS(time.Since(start))
		if r := recover(); r != nil {
			slog.Error("task executor panicked", "kind", req.Kind, "panic", r)
			result = Result{
				Success:    false,
				Error:      fmt.Sprintf("internal error: %v", r),
				DurationMS: roundMS(time.Since(start)),
			}
		}
	}()

	data, err := s.run(ctx, req)
	if err != nil {
		slog.Debug("task failed", "kind", req.Kind, "error", err)
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Data: data}
}

func (s *Service) run(ctx context.Context, req Request) (any, error) {
	switch req.Kind {
	case KindTestConnection:
		return s.TestConnection(ctx)
	case KindListTables:
		return s.ListTables(ctx, req.IncludeRowCounts)
	case KindGetSchema:
		if req.TableName == "" {
			return nil, &ValidationError{Param: "table_name"}
		}
		return s.GetSchema(ctx, req.TableName)
	case KindGetAllSchemas:
		return s.GetAllSchemas(ctx)
	case KindQuery:
		if req.SQL == "" {
			return nil, &ValidationError{Param: "sql"}
		}
		return s.RunQuery(ctx, req.SQL, req.AllowWrite)
	case KindChat:
		if req.Message == "" {
			return nil, &ValidationError{Param: "message"}
		}
		return s.Chat(ctx, req.Message)
	default:
		return nil, fmt.Errorf("unknown task kind: %s", req.Kind)
	}
}

// roundMS converts an elapsed duration to milliseconds rounded to two
// decimal places.
func roundMS(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
