package jsonrpc

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wirecall/wirecall"
)

// bufferChannel is an in-memory channel for single-direction tests.
type bufferChannel struct {
	bytes.Buffer
}

func (b *bufferChannel) Flush() error {
	return nil
}

func finalizeCall(t *testing.T, tr *Transport, method string, params ...wirecall.Param) {
	t.Helper()
	state, err := tr.BeginCall(wirecall.MethodID{Name: method})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range params {
		if err := tr.AddParam(state, p.Name, p.Value); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.Finalize(state); err != nil {
		t.Fatal(err)
	}
}

func TestRequestWireFormat(t *testing.T) {
	var buf bufferChannel
	tr := New(&buf)

	finalizeCall(t, tr, "add", wirecall.P("a", 1), wirecall.P("b", 2))

	var req struct {
		Version string         `json:"jsonrpc"`
		Method  string         `json:"method"`
		Params  map[string]int `json:"params"`
		ID      string         `json:"id"`
	}
	if err := json.Unmarshal(buf.Bytes(), &req); err != nil {
		t.Fatalf("request is not a single JSON object: %s", err)
	}

	if got, want := req.Version, "2.0"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
	if got, want := req.Method, "add"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
	if got, want := req.Params, map[string]int{"a": 1, "b": 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("got: %v; want %v", got, want)
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		t.Errorf("id is not a UUID: %q", req.ID)
	}
	if got, want := req.ID, strings.ToLower(req.ID); got != want {
		t.Errorf("id is not lowercase: %q", req.ID)
	}
	if got, want := len(req.ID), 36; got != want {
		t.Errorf("id is not canonical hyphenated form: %q", req.ID)
	}
}

func TestRequestFreshIDs(t *testing.T) {
	var buf bufferChannel
	tr := New(&buf)

	finalizeCall(t, tr, "noop")
	finalizeCall(t, tr, "noop")

	dec := json.NewDecoder(&buf)
	var first, second struct {
		ID string `json:"id"`
	}
	if err := dec.Decode(&first); err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Errorf("consecutive requests share id: %q", first.ID)
	}
}

func TestZeroParamCall(t *testing.T) {
	var buf bufferChannel
	tr := New(&buf)

	finalizeCall(t, tr, "noop")

	var req struct {
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(buf.Bytes(), &req); err != nil {
		t.Fatal(err)
	}
	if got, want := string(req.Params), "{}"; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}
}

func TestServerReceiveCall(t *testing.T) {
	var buf bufferChannel
	client := New(&buf)
	server := New(&buf)

	finalizeCall(t, client, "add", wirecall.P("a", 1), wirecall.P("b", 2))

	method, state, err := server.ReceiveCall()
	if err != nil {
		t.Fatal(err)
	}
	name, ok := method.Name()
	if !ok {
		t.Fatal("method is not identified by name")
	}
	if got, want := name, "add"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}

	// Params are readable in any order, and re-reads return equal values.
	var b, a, again int
	if err := server.ReadParam(state, "b", &b); err != nil {
		t.Error(err)
	}
	if err := server.ReadParam(state, "a", &a); err != nil {
		t.Error(err)
	}
	if err := server.ReadParam(state, "a", &again); err != nil {
		t.Error(err)
	}
	if a != 1 || b != 2 || again != a {
		t.Errorf("got: a=%d b=%d again=%d; want a=1 b=2 again=1", a, b, again)
	}

	var missing int
	err = server.ReadParam(state, "c", &missing)
	if got, want := wirecall.ErrorKindOf(err), wirecall.KindSerialization; got != want {
		t.Errorf("got: %v (%s); want %v", got, err, want)
	}
}

func TestServerParamUTF8(t *testing.T) {
	var buf bufferChannel
	client := New(&buf)
	server := New(&buf)

	finalizeCall(t, client, "greet", wirecall.P("name", "wörld"))

	_, state, err := server.ReceiveCall()
	if err != nil {
		t.Fatal(err)
	}
	var name string
	if err := server.ReadParam(state, "name", &name); err != nil {
		t.Fatal(err)
	}
	if got, want := name, "wörld"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
}

func TestServerNoParamsField(t *testing.T) {
	var buf bufferChannel
	buf.WriteString(`{"jsonrpc":"2.0","method":"noop","id":"1"}`)
	server := New(&buf)

	_, state, err := server.ReceiveCall()
	if err != nil {
		t.Fatal(err)
	}
	var out int
	err = server.ReadParam(state, "anything", &out)
	if got, want := wirecall.ErrorKindOf(err), wirecall.KindSerialization; got != want {
		t.Errorf("got: %v (%s); want %v", got, err, want)
	}
}

func TestServerBadRequests(t *testing.T) {
	for _, tt := range []struct {
		name string
		wire string
	}{
		{"not an object", `[1,2,3]`},
		{"no method field", `{"jsonrpc":"2.0","params":{}}`},
		{"method not a string", `{"jsonrpc":"2.0","method":42,"params":{}}`},
	} {
		var buf bufferChannel
		buf.WriteString(tt.wire)
		server := New(&buf)

		_, _, err := server.ReceiveCall()
		if got, want := wirecall.ErrorKindOf(err), wirecall.KindSerialization; got != want {
			t.Errorf("%s: got: %v (%s); want %v", tt.name, got, err, want)
		}
	}
}

func TestServerEOFDiscrimination(t *testing.T) {
	// A channel closed cleanly before any byte of a request.
	var empty bufferChannel
	server := New(&empty)
	_, _, err := server.ReceiveCall()
	if got, want := wirecall.ErrorKindOf(err), wirecall.KindTransportEOF; got != want {
		t.Errorf("got: %v (%s); want %v", got, err, want)
	}
	if !wirecall.IsTransportEOF(err) {
		t.Errorf("IsTransportEOF is false for: %s", err)
	}

	// A channel that delivers a prefix of a request and then closes.
	var truncated bufferChannel
	truncated.WriteString(`{"jsonrpc":"2.0","method":`)
	server = New(&truncated)
	_, _, err = server.ReceiveCall()
	if got, want := wirecall.ErrorKindOf(err), wirecall.KindSerialization; got != want {
		t.Errorf("got: %v (%s); want %v", got, err, want)
	}
}

func TestConsecutiveRequests(t *testing.T) {
	var buf bufferChannel
	client := New(&buf)
	server := New(&buf)

	finalizeCall(t, client, "first")
	finalizeCall(t, client, "second")

	for _, want := range []string{"first", "second"} {
		method, _, err := server.ReceiveCall()
		if err != nil {
			t.Fatal(err)
		}
		if got := method.String(); got != want {
			t.Errorf("got: %q; want %q", got, want)
		}
	}

	_, _, err := server.ReceiveCall()
	if !wirecall.IsTransportEOF(err) {
		t.Errorf("expected transport EOF after last request, got: %v", err)
	}
}

func TestResponseHasNoEnvelope(t *testing.T) {
	var buf bufferChannel
	server := New(&buf)

	if err := server.SendResponse(3); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "3"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}

	client := New(&buf)
	var result int
	if err := client.ReceiveResponse(&result); err != nil {
		t.Fatal(err)
	}
	if got, want := result, 3; got != want {
		t.Errorf("got: %d; want %d", got, want)
	}
}

func TestReceiveResponseEOF(t *testing.T) {
	// EOF while awaiting a response is mid-call, not a call boundary.
	var empty bufferChannel
	client := New(&empty)
	var result int
	err := client.ReceiveResponse(&result)
	if got, want := wirecall.ErrorKindOf(err), wirecall.KindSerialization; got != want {
		t.Errorf("got: %v (%s); want %v", got, err, want)
	}
}
