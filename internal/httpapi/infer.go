package httpapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"chatmodeld/pkg/types"
)

// handleInfer streams generation output as NDJSON. Errors seen before the
// first byte goes out map to JSON error responses; once the stream has
// started the terminal line carries the failure instead.
func handleInfer(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		w.Header().Set("Content-Type", "application/x-ndjson")
		var flush func()
		if f, ok := ww.(http.Flusher); ok {
			flush = f.Flush
		}

		lvl := requestLogLevel(r)
		writer := io.Writer(ww)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(ww, &loggingLineWriter{})
		}

		start := time.Now()
		logInferStart(r, lvl, req.Model)

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if inferTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(inferTimeout)*time.Second)
			defer tcancel()
		}

		if err := svc.Infer(ctx, req, writer, flush); err != nil {
			// Client disconnect or server shutdown: nobody left to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if ww.BytesWritten() > 0 {
				// Stream already started, so the status line is spoken for.
				logInferEnd(r, lvl, http.StatusOK, start, err)
				return
			}
			status := writeManagerError(w, err)
			logInferEnd(r, lvl, status, start, err)
			return
		}
		logInferEnd(r, lvl, http.StatusOK, start, nil)
	}
}

func logInferStart(r *http.Request, lvl LogLevel, model string) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path).Str("model", model)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("infer start")
		return
	}
	log.Printf("infer start path=%s model=%s", r.URL.Path, model)
}

func logInferEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("infer end")
		return
	}
	if err != nil {
		log.Printf("infer end status=%d dur=%s err=%v", status, time.Since(start), err)
		return
	}
	log.Printf("infer end status=%d dur=%s", status, time.Since(start))
}
