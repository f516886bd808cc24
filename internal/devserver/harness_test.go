package devserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/loomlang/loomc/internal/jsonvalue"
)

func TestServeRPCReturnsOkEnvelopeOnSuccess(t *testing.T) {
	h := New()
	h.Register("add", func(args []*jsonvalue.Value) (*jsonvalue.Value, error) {
		return jsonvalue.NewInt64(3), nil
	})
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rpc/add", "application/json", strings.NewReader(`{"args":[1,2]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body := readAll(t, resp)
	if !gjson.Get(body, "ok").Bool() {
		t.Fatalf("want ok:true, got %s", body)
	}
	if gjson.Get(body, "value").Raw != "3" {
		t.Fatalf("want value 3, got %s", body)
	}
}

func TestServeRPCReturnsErrEnvelopeOnHandlerError(t *testing.T) {
	h := New()
	h.Register("fail", func(args []*jsonvalue.Value) (*jsonvalue.Value, error) {
		return nil, errBoom
	})
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rpc/fail", "application/json", strings.NewReader(`{"args":[]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body := readAll(t, resp)
	if gjson.Get(body, "ok").Bool() {
		t.Fatalf("want ok:false, got %s", body)
	}
	if gjson.Get(body, "error.code").String() != "E_RPC_HANDLER" {
		t.Fatalf("want error.code E_RPC_HANDLER, got %s", body)
	}
}

func TestServeRPCRoundTripsTaggedRecordArgument(t *testing.T) {
	h := New()
	var gotTag string
	var gotName string
	h.Register("greet", func(args []*jsonvalue.Value) (*jsonvalue.Value, error) {
		tag, fields, ok := args[0].AsTaggedRecord()
		if !ok {
			t.Fatalf("want a tagged record argument, got kind %v", args[0].Kind())
		}
		gotTag = tag
		gotName = fields.ObjectGet("name").StringValue()
		return jsonvalue.NewTaggedRecord("Greeting", map[string]*jsonvalue.Value{
			"text": jsonvalue.NewString("hello, " + gotName),
		}), nil
	})
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	body := `{"args":[{"tag":"User","fields":{"name":"Ada"}}]}`
	resp, err := http.Post(srv.URL+"/rpc/greet", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	out := readAll(t, resp)

	if gotTag != "User" || gotName != "Ada" {
		t.Fatalf("handler did not see the decoded tagged record, got tag=%q name=%q", gotTag, gotName)
	}
	if gjson.Get(out, "value.tag").String() != "Greeting" {
		t.Fatalf("want response tag Greeting, got %s", out)
	}
	if gjson.Get(out, "value.fields.text").String() != "hello, Ada" {
		t.Fatalf("want response fields.text, got %s", out)
	}
}

func TestServeRPCUnknownNameReturns404(t *testing.T) {
	h := New()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rpc/nope", "application/json", strings.NewReader(`{"args":[]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestWebSocketEchoRoundTrip(t *testing.T) {
	h := New()
	h.WithWebSocket(func(conn *websocket.Conn) {
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, msg)
	})
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "ping" {
		t.Fatalf("want echo ping, got %s", msg)
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}
