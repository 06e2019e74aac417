package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargist/internal/models"
)

const (
	readDeadline = 60 * time.Second
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

type subscribeFrame struct {
	Type   string    `json:"type"`
	ID     string    `json:"id"`
	Table  string    `json:"table"`
	Filter keyFilter `json:"filter"`
}

type keyFilter struct {
	Column string `json:"column"`
	Value  int64  `json:"value"`
}

type rowsFrame struct {
	Type string            `json:"type"`
	ID   string            `json:"id"`
	Rows []json.RawMessage `json:"rows"`
}

// Subscription is a live feed of the row set matching one key filter. Every
// emission carries the full current set, not a delta.
type Subscription struct {
	id     string
	conn   *websocket.Conn
	rows   chan []json.RawMessage
	logger *zap.Logger

	mu     sync.Mutex
	err    error
	closed bool
}

// Rows returns the emission channel. It closes when the feed ends; Err tells why.
func (s *Subscription) Rows() <-chan []json.RawMessage {
	return s.rows
}

// Err returns the terminal error after Rows closes, nil on clean shutdown.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	_ = s.conn.Close()
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	if !s.closed && s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *Subscription) readPump(ctx context.Context) {
	defer close(s.rows)
	defer s.Close()

	s.conn.SetReadLimit(1024 * 1024)
	s.conn.SetReadDeadline(time.Now().Add(readDeadline))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			s.fail(ctx.Err())
			return
		default:
		}

		_, message, err := s.conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}

		var frame rowsFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			s.logger.Warn("dropping malformed realtime frame", zap.String("subscription_id", s.id), zap.Error(err))
			continue
		}
		if frame.ID != s.id {
			continue
		}

		select {
		case s.rows <- frame.Rows:
		case <-ctx.Done():
			s.fail(ctx.Err())
			return
		}
	}
}

func (s *Subscription) pingPump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// Subscribe opens a change-feed subscription on one table filtered by a key
// column. The feed lives until Close, ctx cancellation or a network error.
func (c *Client) Subscribe(ctx context.Context, table, column string, value int64) (*Subscription, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.realtimeURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		id:     uuid.NewString(),
		conn:   conn,
		rows:   make(chan []json.RawMessage, 1),
		logger: c.logger,
	}

	frame := subscribeFrame{
		Type:   "subscribe",
		ID:     sub.id,
		Table:  table,
		Filter: keyFilter{Column: column, Value: value},
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		conn.Close()
		return nil, err
	}

	go sub.readPump(ctx)
	go sub.pingPump(ctx)
	return sub, nil
}

// Stream is a typed view over a Subscription.
type Stream[T any] struct {
	sub       *Subscription
	updates   chan T
	done      chan struct{}
	closeOnce sync.Once
}

// Updates returns the decoded emission channel.
func (s *Stream[T]) Updates() <-chan T {
	return s.updates
}

// Err returns the terminal subscription error after Updates closes.
func (s *Stream[T]) Err() error {
	return s.sub.Err()
}

// Close tears down the underlying subscription. The forwarder is released
// even when an emission is still waiting for a consumer, so an abandoned
// stream never pins its goroutine.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.sub.Close()
}

func newStream[T any](sub *Subscription, decode func([]json.RawMessage) (T, bool)) *Stream[T] {
	stream := &Stream[T]{sub: sub, updates: make(chan T, 1), done: make(chan struct{})}
	go func() {
		defer close(stream.updates)
		for rows := range sub.Rows() {
			value, ok := decode(rows)
			if !ok {
				continue
			}
			select {
			case stream.updates <- value:
			case <-stream.done:
				return
			}
		}
	}()
	return stream
}

func decodeRows[T any](rows []json.RawMessage, logger *zap.Logger, table string) []T {
	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Warn("dropping malformed realtime row", zap.String("table", table), zap.Error(err))
			continue
		}
		out = append(out, item)
	}
	return out
}

// SubscribeStation streams row changes of a single station.
func (c *Client) SubscribeStation(ctx context.Context, stationID int64) (*Stream[models.Station], error) {
	sub, err := c.Subscribe(ctx, TableStations, "id", stationID)
	if err != nil {
		return nil, err
	}
	return newStream(sub, func(rows []json.RawMessage) (models.Station, bool) {
		dtos := decodeRows[stationDTO](rows, c.logger, TableStations)
		if len(dtos) == 0 {
			return models.Station{}, false
		}
		return dtos[0].toModel(), true
	}), nil
}

// SubscribeStationChargers streams the full charger set of one station.
func (c *Client) SubscribeStationChargers(ctx context.Context, stationID int64) (*Stream[[]models.Charger], error) {
	sub, err := c.Subscribe(ctx, TableChargers, "stationId", stationID)
	if err != nil {
		return nil, err
	}
	return newStream(sub, func(rows []json.RawMessage) ([]models.Charger, bool) {
		dtos := decodeRows[chargerDTO](rows, c.logger, TableChargers)
		chargers := make([]models.Charger, 0, len(dtos))
		for _, d := range dtos {
			chargers = append(chargers, d.toModel())
		}
		return chargers, true
	}), nil
}

// SubscribeUserFavorites streams the full favorite set of one user.
func (c *Client) SubscribeUserFavorites(ctx context.Context, userID int64) (*Stream[[]models.Favorite], error) {
	sub, err := c.Subscribe(ctx, TableFavorites, "userId", userID)
	if err != nil {
		return nil, err
	}
	return newStream(sub, func(rows []json.RawMessage) ([]models.Favorite, bool) {
		dtos := decodeRows[favoriteDTO](rows, c.logger, TableFavorites)
		favs := make([]models.Favorite, 0, len(dtos))
		for _, d := range dtos {
			favs = append(favs, d.toModel())
		}
		return favs, true
	}), nil
}
