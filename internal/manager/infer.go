package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatmodeld/pkg/types"
)

// ResultListener receives generation output. While done is false, partial
// holds the next chunk of text. The call with done true is terminal: it is
// made exactly once per request, and on failure it carries the error message
// inline so chat surfaces can render it like any other reply. Returning a
// non-nil error stops the stream.
type ResultListener func(partial string, done bool) error

// RunInference resolves the model, ensures its instance, and streams the
// response through onResult. onCleanup, when non-nil, is registered to run
// after the model's instance is next torn down (at most one pending listener
// per model; later registrations while one is pending are dropped).
//
// Every path ends in exactly one terminal onResult call. Failures before or
// during generation surface their message through that call and as the
// returned error.
func (m *Manager) RunInference(ctx context.Context, req types.GenerateRequest, onResult ResultListener, onCleanup CleanupListener) (types.GenerateResult, error) {
	if onResult == nil {
		onResult = func(string, bool) error { return nil }
	}
	fired := false
	terminal := func(msg string) {
		if fired {
			return
		}
		fired = true
		if err := onResult(msg, true); err != nil {
			m.log.Debug().Err(err).Msg("terminal result listener")
		}
	}

	// Resolve target model id
	modelID := req.Model
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			err := modelNotFoundError{id: "(unspecified)"}
			terminal(err.Error())
			return types.GenerateResult{}, err
		}
	}

	if err := m.EnsureInstance(ctx, modelID); err != nil {
		terminal(err.Error())
		return types.GenerateResult{}, err
	}
	if onCleanup != nil {
		m.RegisterCleanup(modelID, onCleanup)
	}

	mdl, ok := m.getModelByID(modelID)
	if !ok {
		err := ErrModelNotFound(modelID)
		terminal(err.Error())
		return types.GenerateResult{}, err
	}
	params := mergeGenParams(defaultGenParams(mdl), req)
	if req.ImageB64 != "" {
		if !mdl.SupportsVision {
			err := ErrInvalidRequest("model " + modelID + " does not accept image input")
			terminal(err.Error())
			return types.GenerateResult{}, err
		}
		img, format, err := decodeAttachment(req.ImageB64)
		if err != nil {
			err = ErrInvalidRequest("invalid image attachment: " + err.Error())
			terminal(err.Error())
			return types.GenerateResult{}, err
		}
		m.log.Debug().Str("model", modelID).Str("format", format).Int("bytes", len(img)).Msg("image attachment accepted")
		params.Image = img
	}

	// Admission: per-instance FIFO queue, single in-flight
	release, err := m.beginGeneration(ctx, modelID)
	if err != nil {
		terminal(err.Error())
		return types.GenerateResult{}, err
	}
	defer release()

	m.mu.RLock()
	inst := m.instances[modelID]
	var rt ModelRuntime
	if inst != nil {
		rt = inst.runtime
	}
	m.mu.RUnlock()
	if rt == nil {
		// Instance was released between ensure and admission. The message
		// travels through the result callback like any other reply.
		err := ErrNotInitialized(modelID)
		terminal(err.Error())
		return types.GenerateResult{}, err
	}

	m.publish(Event{Name: "infer_start", ModelID: modelID, Fields: map[string]any{}})
	start := time.Now()
	completionTokens := 0
	var acc strings.Builder
	onToken := func(tok string) error {
		completionTokens++
		acc.WriteString(tok)
		return onResult(tok, false)
	}

	final, genErr := runGenerate(ctx, rt, req.Prompt, params, onToken)
	durMS := time.Since(start).Milliseconds()

	content := final.Content
	if content == "" {
		content = acc.String()
	}
	finish := final.FinishReason
	switch {
	case genErr == nil:
		if finish == "" {
			finish = "stop"
		}
	case errors.Is(genErr, context.Canceled) || errors.Is(genErr, context.DeadlineExceeded):
		finish = "cancelled"
	default:
		finish = "error"
	}
	usage := types.Usage{
		PromptTokens:     final.Usage.PromptTokens,
		CompletionTokens: final.Usage.CompletionTokens,
		TotalTokens:      final.Usage.TotalTokens,
		DurationMS:       durMS,
	}
	if usage.CompletionTokens == 0 {
		usage.CompletionTokens = completionTokens
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	result := types.GenerateResult{Content: content, FinishReason: finish, Usage: usage}

	m.mu.Lock()
	if inst2 := m.instances[modelID]; inst2 != nil {
		inst2.LastUsed = time.Now()
	}
	m.mu.Unlock()
	m.recordGeneration(types.GenerationRecord{
		ID:            uuid.NewString(),
		ModelID:       modelID,
		Runtime:       mdl.Runtime,
		PromptChars:   len(req.Prompt),
		OutputChars:   len(content),
		DurationMS:    durMS,
		FinishReason:  finish,
		CreatedAtUnix: time.Now().Unix(),
	})

	if genErr != nil {
		m.log.Warn().Err(genErr).Str("model", modelID).Int64("dur_ms", durMS).Msg("generation failed")
		m.publish(Event{Name: "infer_error", ModelID: modelID, Fields: map[string]any{"error": genErr.Error(), "dur_ms": durMS}})
		terminal(genErr.Error())
		return result, genErr
	}
	m.log.Info().Str("model", modelID).Int("tokens", usage.CompletionTokens).Int64("dur_ms", durMS).Msg("generation done")
	m.publish(Event{Name: "infer_done", ModelID: modelID, Fields: map[string]any{"tokens": usage.CompletionTokens, "dur_ms": durMS}})
	terminal("")
	return result, nil
}

// runGenerate isolates backend panics so a native fault surfaces as an error
// instead of killing the server.
func runGenerate(ctx context.Context, rt ModelRuntime, prompt string, params GenParams, onToken func(string) error) (final FinalResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation panic: %v", r)
		}
	}()
	return rt.Generate(ctx, prompt, params, onToken)
}

func (m *Manager) recordGeneration(rec types.GenerationRecord) {
	m.mu.RLock()
	st := m.store
	m.mu.RUnlock()
	if st == nil {
		return
	}
	if err := st.RecordGeneration(context.Background(), rec); err != nil {
		m.log.Warn().Err(err).Str("model", rec.ModelID).Msg("persist generation")
	}
}

// Infer streams the response as NDJSON token lines followed by one terminal
// line. Errors before the first byte are returned for status mapping; later
// failures terminate the stream with an error line instead.
func (m *Manager) Infer(ctx context.Context, req types.GenerateRequest, w io.Writer, flusher func()) error {
	started := false
	var writeErr error
	onResult := func(partial string, done bool) error {
		if done {
			// Terminal line is composed below from the final result.
			return nil
		}
		if _, e := w.Write(tokenLineJSON(partial)); e != nil {
			writeErr = e
			return e
		}
		started = true
		if flusher != nil {
			flusher()
		}
		return nil
	}

	res, err := m.RunInference(ctx, req, onResult, nil)
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		if !started {
			return err
		}
		end := map[string]any{
			"done":          true,
			"error":         err.Error(),
			"finish_reason": res.FinishReason,
		}
		return writeFinalLine(w, flusher, end)
	}
	end := map[string]any{
		"done":          true,
		"content":       res.Content,
		"finish_reason": res.FinishReason,
		"usage":         res.Usage,
	}
	return writeFinalLine(w, flusher, end)
}

func writeFinalLine(w io.Writer, flusher func(), end map[string]any) error {
	jb, err := json.Marshal(end)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(jb, '\n')); err != nil {
		return err
	}
	if flusher != nil {
		flusher()
	}
	return nil
}

// tokenLineJSON formats a token NDJSON line using json.Marshal for correctness.
func tokenLineJSON(tok string) []byte {
	type tokenMsg struct {
		Token string `json:"token"`
	}
	b, _ := json.Marshal(tokenMsg{Token: tok})
	return append(b, '\n')
}
