package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

// MockRPCServer replays canned JSON-RPC results in order. A response
// given as an error is returned as a JSON-RPC error object instead of
// a result.
type MockRPCServer struct {
	URL string

	mu        sync.Mutex
	responses []interface{}
	calls     int
	server    *httptest.Server
	t         *testing.T
}

type rpcRequest struct {
	ID     interface{} `json:"id"`
	Method string      `json:"method"`
}

// MockJSONRPC starts a JSON-RPC test server. Metadata requests are
// answered with the scale-encoded fixture, since gsrpc already fetches
// metadata while the connection is established. Every other request
// consumes the next canned response; the last response is repeated
// once exhausted.
func MockJSONRPC(t *testing.T, responses ...interface{}) (*MockRPCServer, func()) {
	mock := &MockRPCServer{responses: responses, t: t}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	mock.URL = mock.server.URL
	return mock, mock.server.Close
}

// Calls reports how many requests the server has answered.
func (m *MockRPCServer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockRPCServer) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		m.t.Errorf("read rpc request: %v", err)
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		m.t.Errorf("parse rpc request %q: %v", string(body), err)
		return
	}

	if req.Method == "state_getMetadata" {
		hex, err := metadataHex()
		if err != nil {
			m.t.Errorf("encode fixture metadata: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%q}`, jsonID(req.ID), hex)
		return
	}

	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	var next interface{}
	if idx >= 0 {
		next = m.responses[idx]
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch resp := next.(type) {
	case error:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":%s}`, jsonID(req.ID), resp.Error())
	case string:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, jsonID(req.ID), resp)
	case nil:
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":null}`, jsonID(req.ID))
	default:
		raw, err := json.Marshal(resp)
		if err != nil {
			m.t.Errorf("marshal canned response: %v", err)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, jsonID(req.ID), string(raw))
	}
}

var (
	metadataOnce    sync.Once
	metadataEncoded string
	metadataErr     error
)

// metadataHex scale-encodes the fixture metadata once, the same blob a
// node would hand back for state_getMetadata.
func metadataHex() (string, error) {
	metadataOnce.Do(func() {
		metadataEncoded, metadataErr = codec.EncodeToHex(Metadata())
	})
	return metadataEncoded, metadataErr
}

func jsonID(id interface{}) string {
	raw, err := json.Marshal(id)
	if err != nil {
		return "0"
	}
	return string(raw)
}
