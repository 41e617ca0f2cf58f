package coachapi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

// WSState tracks the push subscription lifecycle.
type WSState string

const (
	WSStateDisconnected WSState = "DISCONNECTED"
	WSStateConnecting   WSState = "CONNECTING"
	WSStateConnected    WSState = "CONNECTED"
	WSStateReconnecting WSState = "RECONNECTING"
	WSStateFailed       WSState = "FAILED"
)

// PushCallback receives parsed push frames. Malformed frames never reach it.
type PushCallback func(ev *coachdto.PushEvent)

type StateCallback func(state WSState)

type pushCallbackEntry struct {
	id       int
	callback PushCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// PushSocket is the standing push subscription. It is a latency optimization
// only: its errors and disconnects never affect request/response correctness,
// so every failure path just schedules a reconnect.
type PushSocket struct {
	wsURL string

	conn  *websocket.Conn
	connM sync.RWMutex

	state  WSState
	stateM sync.RWMutex

	pushCbs  []pushCallbackEntry
	stateCbs []stateCallbackEntry
	cbNextID int
	cbM      sync.RWMutex

	maxReconnectAttempts int
	reconnectDelay       time.Duration

	pingInterval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

func NewPushSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration) *PushSocket {
	return &PushSocket{
		wsURL:                wsURL,
		state:                WSStateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
		pushCbs:              make([]pushCallbackEntry, 0),
		stateCbs:             make([]stateCallbackEntry, 0),
	}
}

func (ws *PushSocket) Connect(ctx context.Context) error {
	ws.stateM.Lock()
	if ws.state == WSStateConnected || ws.state == WSStateConnecting {
		ws.stateM.Unlock()
		return nil
	}
	ws.stateM.Unlock()

	ws.rootCtx, ws.rootCancel = context.WithCancel(context.Background())
	ws.setState(WSStateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, ws.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		ws.setState(WSStateFailed)
		ws.scheduleReconnect()
		return err
	}

	ws.setConn(conn)
	ws.setState(WSStateConnected)

	ws.wg.Add(2)
	go ws.listen()
	go ws.pingLoop()
	return nil
}

func (ws *PushSocket) listen() {
	defer ws.wg.Done()
	for {
		select {
		case <-ws.stopCh:
			return
		default:
		}

		conn := ws.getConn()
		if conn == nil {
			return
		}
		_, raw, err := conn.Read(ws.rootCtx)
		if err != nil {
			if ws.isStopping() {
				return
			}
			ws.setState(WSStateDisconnected)
			_ = ws.closeConn(websocket.StatusGoingAway, "reconnect")
			ws.scheduleReconnect()
			return
		}

		var ev coachdto.PushEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue // unparseable frame, drop silently
		}
		if err := coachdto.Validate(&ev); err != nil {
			continue
		}

		ws.cbM.RLock()
		callbacks := make([]pushCallbackEntry, len(ws.pushCbs))
		copy(callbacks, ws.pushCbs)
		ws.cbM.RUnlock()
		for _, entry := range callbacks {
			if entry.callback != nil {
				entry.callback(&ev)
			}
		}
	}
}

func (ws *PushSocket) pingLoop() {
	defer ws.wg.Done()
	t := time.NewTicker(ws.pingInterval)
	defer t.Stop()
	consecutivePingFailures := 0
	for {
		select {
		case <-ws.stopCh:
			return
		case <-t.C:
			conn := ws.getConn()
			if conn == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(ws.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				consecutivePingFailures++
				if consecutivePingFailures >= 2 {
					if ws.isStopping() {
						return
					}
					ws.setState(WSStateDisconnected)
					_ = ws.closeConn(websocket.StatusGoingAway, "ping failure")
					ws.scheduleReconnect()
					consecutivePingFailures = 0
				}
				continue
			}
			consecutivePingFailures = 0
		}
	}
}

func (ws *PushSocket) scheduleReconnect() {
	if ws.maxReconnectAttempts <= 0 {
		return
	}
	ws.setState(WSStateReconnecting)

	go func() {
		for attempt := 1; attempt <= ws.maxReconnectAttempts; attempt++ {
			select {
			case <-ws.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}

			dialCtx, cancel := context.WithTimeout(ws.rootCtx, 10*time.Second)
			conn, _, err := websocket.Dial(dialCtx, ws.wsURL, &websocket.DialOptions{
				CompressionMode: websocket.CompressionNoContextTakeover,
			})
			cancel()
			if err != nil {
				continue
			}

			ws.setConn(conn)
			ws.setState(WSStateConnected)

			ws.wg.Add(2)
			go ws.listen()
			go ws.pingLoop()
			return
		}
		ws.setState(WSStateFailed)
	}()
}

func (ws *PushSocket) OnPush(cb PushCallback) int {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	ws.cbNextID++
	id := ws.cbNextID
	ws.pushCbs = append(ws.pushCbs, pushCallbackEntry{id: id, callback: cb})
	return id
}

func (ws *PushSocket) RemovePushCallback(id int) {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	for i, cb := range ws.pushCbs {
		if cb.id == id {
			ws.pushCbs = append(ws.pushCbs[:i], ws.pushCbs[i+1:]...)
			break
		}
	}
}

func (ws *PushSocket) OnStateChange(cb StateCallback) int {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	ws.cbNextID++
	id := ws.cbNextID
	ws.stateCbs = append(ws.stateCbs, stateCallbackEntry{id: id, callback: cb})
	return id
}

func (ws *PushSocket) RemoveStateCallback(id int) {
	ws.cbM.Lock()
	defer ws.cbM.Unlock()
	for i, cb := range ws.stateCbs {
		if cb.id == id {
			ws.stateCbs = append(ws.stateCbs[:i], ws.stateCbs[i+1:]...)
			break
		}
	}
}

func (ws *PushSocket) setState(state WSState) {
	ws.stateM.Lock()
	ws.state = state
	ws.stateM.Unlock()

	ws.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(ws.stateCbs))
	copy(callbacks, ws.stateCbs)
	ws.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(state)
		}
	}
}

func (ws *PushSocket) Close(ctx context.Context) error {
	ws.stopOnce.Do(func() { close(ws.stopCh) })
	_ = ws.closeConn(websocket.StatusNormalClosure, "close")

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if ws.rootCancel != nil {
			ws.rootCancel()
		}
		return nil
	}
}

func (ws *PushSocket) setConn(conn *websocket.Conn) {
	ws.connM.Lock()
	ws.conn = conn
	ws.connM.Unlock()
}

func (ws *PushSocket) getConn() *websocket.Conn {
	ws.connM.RLock()
	defer ws.connM.RUnlock()
	return ws.conn
}

func (ws *PushSocket) closeConn(code websocket.StatusCode, reason string) error {
	ws.connM.Lock()
	conn := ws.conn
	ws.conn = nil
	ws.connM.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close(code, reason)
}

func (ws *PushSocket) isStopping() bool {
	select {
	case <-ws.stopCh:
		return true
	default:
		return false
	}
}
