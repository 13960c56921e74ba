package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatmodeld/pkg/types"
)

// wsWriteWait bounds how long a frame write may block before the
// connection is considered dead.
const wsWriteWait = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The server fronts a local chat surface; cross-origin checks stay open.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsCommand is a client frame. Type selects the action: generate starts a
// stream, stop cancels the in-flight one, reset replaces the model session.
type wsCommand struct {
	Type    string                 `json:"type"`
	Model   string                 `json:"model,omitempty"`
	Request *types.GenerateRequest `json:"request,omitempty"`
}

// wsEvent is a server frame: token chunks while generating, then exactly one
// done or error frame per generate command. cleanup fires when the model
// instance that served this connection is torn down, reset confirms a
// session replacement.
type wsEvent struct {
	Type   string                `json:"type"`
	Token  string                `json:"token,omitempty"`
	Error  string                `json:"error,omitempty"`
	Model  string                `json:"model,omitempty"`
	Result *types.GenerateResult `json:"result,omitempty"`
}

// wsSession serves one connection. At most one generation runs at a time;
// writes go through writeMu because token frames, cleanup notifications and
// command replies come from different goroutines.
type wsSession struct {
	svc  Service
	conn *websocket.Conn

	writeMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
}

func handleWS(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			wsLogf("websocket upgrade: %v", err)
			return
		}
		defer conn.Close()
		s := &wsSession{svc: svc, conn: conn}
		s.run()
	}
}

func (s *wsSession) run() {
	s.conn.SetReadLimit(maxBodyBytes)
	defer s.stopGeneration()
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				wsLogf("websocket read: %v", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.send(wsEvent{Type: "error", Error: "invalid JSON frame"})
			continue
		}
		switch cmd.Type {
		case "generate":
			s.handleGenerate(cmd)
		case "stop":
			s.stopGeneration()
		case "reset":
			s.handleReset(cmd)
		default:
			s.send(wsEvent{Type: "error", Error: "unknown command type: " + cmd.Type})
		}
	}
}

// handleGenerate starts a streaming generation. Rejects overlapping requests
// so the chat surface gets a clear signal instead of interleaved tokens.
func (s *wsSession) handleGenerate(cmd wsCommand) {
	if cmd.Request == nil {
		s.send(wsEvent{Type: "error", Error: "request is required"})
		return
	}
	req := *cmd.Request
	if req.Model == "" {
		req.Model = cmd.Model
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.send(wsEvent{Type: "error", Model: req.Model, Error: "prompt is required"})
		return
	}

	ctx, cancel := context.WithCancel(serverBaseCtx)
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		cancel()
		s.send(wsEvent{Type: "error", Model: req.Model, Error: "a generation is already in progress"})
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.cancel = nil
			s.mu.Unlock()
			cancel()
		}()

		onResult := func(partial string, done bool) error {
			if done {
				// The closing frame is composed from the returned result.
				return nil
			}
			return s.send(wsEvent{Type: "token", Model: req.Model, Token: partial})
		}
		onCleanup := func() {
			_ = s.send(wsEvent{Type: "cleanup", Model: req.Model})
		}

		res, err := s.svc.RunInference(ctx, req, onResult, onCleanup)
		switch {
		case err == nil,
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			// A stopped stream still closes with its partial result.
			s.send(wsEvent{Type: "done", Model: req.Model, Result: &res})
		default:
			s.send(wsEvent{Type: "error", Model: req.Model, Error: err.Error()})
		}
	}()
}

func (s *wsSession) stopGeneration() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *wsSession) handleReset(cmd wsCommand) {
	model := cmd.Model
	if model == "" && cmd.Request != nil {
		model = cmd.Request.Model
	}
	go func() {
		ctx, cancel := context.WithTimeout(serverBaseCtx, 30*time.Second)
		defer cancel()
		if err := s.svc.ResetSession(ctx, model); err != nil {
			s.send(wsEvent{Type: "error", Model: model, Error: err.Error()})
			return
		}
		s.send(wsEvent{Type: "reset", Model: model})
	}()
}

func (s *wsSession) send(ev wsEvent) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(ev)
}

func wsLogf(format string, args ...any) {
	if zlog != nil {
		zlog.Debug().Msgf(format, args...)
		return
	}
	log.Printf(format, args...)
}
