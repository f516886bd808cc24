// Package devserver implements the Dev Harness: an HTTP+WebSocket server
// that speaks the exact RPC/WS wire contract the design assigns to the
// emitted server.js, but is driven entirely from Go. It exists so the
// compiler's own test suite can assert the splitter/emitter produced a
// contract-correct bundle without shelling out to a JS runtime — the
// envelope itself is built with sjson, and the "value"/"args" payloads
// decode and encode through jsonvalue.Value so a struct/enum argument or
// result crosses the handler boundary as the same tagged-record shape
// server.js and client.js agree on.
package devserver

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/loomlang/loomc/internal/jsonvalue"
)

// Handler is a Go-side stand-in for one compiled RPC function: it
// receives the already-decoded argument array and returns either a
// result value or an error to be wire-encoded as {ok:false}.
type Handler func(args []*jsonvalue.Value) (value *jsonvalue.Value, err error)

// Harness serves /rpc/<name> POST endpoints over a handler table, plus an
// optional WebSocket echo endpoint at /ws when WithWebSocket registers one.
type Harness struct {
	handlers  map[string]Handler
	upgrader  websocket.Upgrader
	wsHandler func(*websocket.Conn)
}

// New returns a Harness with no registered RPC handlers or WebSocket
// endpoint; call Register/WithWebSocket before Handler().
func New() *Harness {
	return &Harness{
		handlers: make(map[string]Handler),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Register wires name to handler, matching one of split.Result's RPCStubs.
func (h *Harness) Register(name string, handler Handler) {
	h.handlers[name] = handler
}

// WithWebSocket installs a per-connection callback run after the HTTP
// upgrade completes, for tests exercising the WebSocket bootstrap path.
func (h *Harness) WithWebSocket(fn func(*websocket.Conn)) {
	h.wsHandler = fn
}

// Handler returns the http.Handler implementing the /rpc/<name> and
// (if registered) /ws routes.
func (h *Harness) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/", h.serveRPC)
	if h.wsHandler != nil {
		mux.HandleFunc("/ws", h.serveWS)
	}
	return mux
}

func (h *Harness) serveRPC(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/rpc/")
	handler, ok := h.handlers[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "E_RPC_BODY", err.Error())
		return
	}
	raw := gjson.GetBytes(body, "args").Array()
	args := make([]*jsonvalue.Value, len(raw))
	for i, r := range raw {
		args[i] = jsonvalue.FromGJSON(r)
	}

	value, err := handler(args)
	if err != nil {
		writeError(w, "E_RPC_HANDLER", err.Error())
		return
	}

	encoded, err := value.MarshalJSON()
	if err != nil {
		writeError(w, "E_RPC_ENCODE", err.Error())
		return
	}

	out, _ := sjson.Set("", "ok", true)
	out, _ = sjson.SetRaw(out, "value", string(encoded))
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(out))
}

func (h *Harness) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.wsHandler(conn)
}

func writeError(w http.ResponseWriter, code, message string) {
	out, _ := sjson.Set("", "ok", false)
	out, _ = sjson.Set(out, "error.code", code)
	out, _ = sjson.Set(out, "error.message", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(out))
}
