package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// realtimeServer upgrades incoming connections, records the subscribe frame
// and echoes rows frames pushed by the test.
type realtimeServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu    gosync.Mutex
	conn  *websocket.Conn
	frame subscribeFrame
	auth  string
}

func (s *realtimeServer) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("upgrade: %v", err)
		return
	}

	var frame subscribeFrame
	if err := conn.ReadJSON(&frame); err != nil {
		s.t.Errorf("read subscribe frame: %v", err)
		return
	}

	s.mu.Lock()
	s.conn = conn
	s.frame = frame
	s.auth = r.Header.Get("Authorization")
	s.mu.Unlock()
}

func (s *realtimeServer) push(t *testing.T, id string, rows []any) {
	t.Helper()
	raw := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			t.Fatalf("marshal row: %v", err)
		}
		raw = append(raw, data)
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if err := conn.WriteJSON(rowsFrame{Type: "rows", ID: id, Rows: raw}); err != nil {
		t.Fatalf("write rows frame: %v", err)
	}
}

func (s *realtimeServer) subscribed() (subscribeFrame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.conn != nil
}

func newRealtimeClient(t *testing.T) (*Client, *realtimeServer) {
	t.Helper()
	server := &realtimeServer{t: t}
	httpServer := httptest.NewServer(http.HandlerFunc(server.handler))
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	token := signedToken(t, "anon", time.Now().Add(time.Hour))
	return NewClient("http://unused", wsURL, token, nil, zap.NewNop()), server
}

func TestSubscribeUserFavoritesDecodesEmissions(t *testing.T) {
	client, server := newRealtimeClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.SubscribeUserFavorites(ctx, 9)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stream.Close()

	var frame subscribeFrame
	deadline := time.Now().Add(time.Second)
	for {
		var ok bool
		if frame, ok = server.subscribed(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never received the subscribe frame")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if frame.Type != "subscribe" || frame.Table != TableFavorites {
		t.Fatalf("unexpected subscribe frame: %+v", frame)
	}
	if frame.Filter.Column != "userId" || frame.Filter.Value != 9 {
		t.Fatalf("unexpected key filter: %+v", frame.Filter)
	}
	server.mu.Lock()
	auth := server.auth
	server.mu.Unlock()
	if !strings.HasPrefix(auth, "Bearer ") {
		t.Fatalf("missing bearer auth on dial, got %q", auth)
	}

	server.push(t, frame.ID, []any{
		favoriteDTO{StationID: 1, UserID: 9},
		favoriteDTO{StationID: 3, UserID: 9},
	})

	select {
	case favs := <-stream.Updates():
		if len(favs) != 2 || favs[0].StationID != 1 || favs[1].StationID != 3 {
			t.Fatalf("unexpected emission: %+v", favs)
		}
	case <-time.After(time.Second):
		t.Fatalf("no emission")
	}
}

func TestSubscribeStationIgnoresForeignFrames(t *testing.T) {
	client, server := newRealtimeClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.SubscribeStation(ctx, 5)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stream.Close()

	var frame subscribeFrame
	deadline := time.Now().Add(time.Second)
	for {
		var ok bool
		if frame, ok = server.subscribed(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never received the subscribe frame")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// a frame for another subscription id must be dropped
	server.push(t, "other-id", []any{stationDTO{ID: 99, Name: "Wrong"}})
	server.push(t, frame.ID, []any{stationDTO{ID: 5, Name: "Right"}})

	select {
	case station := <-stream.Updates():
		if station.ID != 5 || station.Name != "Right" {
			t.Fatalf("expected the frame matching the subscription id, got %+v", station)
		}
	case <-time.After(time.Second):
		t.Fatalf("no emission")
	}
}

func TestStreamCloseReleasesPendingForwarder(t *testing.T) {
	client, server := newRealtimeClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.SubscribeStationChargers(ctx, 5)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var frame subscribeFrame
	deadline := time.Now().Add(time.Second)
	for {
		var ok bool
		if frame, ok = server.subscribed(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never received the subscribe frame")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// two emissions with no consumer: the first fills the buffer, the second
	// leaves the forwarder mid-send
	server.push(t, frame.ID, []any{chargerDTO{ID: 1, StationID: 5}})
	server.push(t, frame.ID, []any{chargerDTO{ID: 2, StationID: 5}})
	time.Sleep(50 * time.Millisecond)

	stream.Close()

	// the forwarder must exit and close the channel even though an emission
	// was still waiting for a consumer
	deadline = time.Now().Add(time.Second)
	for {
		select {
		case _, ok := <-stream.Updates():
			if !ok {
				return
			}
		default:
			if time.Now().After(deadline) {
				t.Fatalf("updates channel never closed after Close with a pending emission")
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestStreamReportsErrorAfterDrop(t *testing.T) {
	client, server := newRealtimeClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.SubscribeStationChargers(ctx, 5)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer stream.Close()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := server.subscribed(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never received the subscribe frame")
		}
		time.Sleep(5 * time.Millisecond)
	}

	server.mu.Lock()
	server.conn.Close()
	server.mu.Unlock()

	select {
	case _, ok := <-stream.Updates():
		if ok {
			t.Fatalf("expected channel close after connection drop")
		}
	case <-time.After(time.Second):
		t.Fatalf("updates channel never closed")
	}
	if stream.Err() == nil {
		t.Fatalf("expected a terminal error after the drop")
	}
}
