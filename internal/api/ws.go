package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"globe-nav/internal/navigation"
	"globe-nav/internal/scene"
	"globe-nav/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// 服务端推送消息；type 取 snapshot / scene / state
type wsMessage struct {
	Type     string                      `json:"type"`
	Snapshot *scene.Snapshot             `json:"snapshot,omitempty"`
	Command  *scene.Command              `json:"command,omitempty"`
	State    *navigation.NavigationState `json:"state,omitempty"`
}

// 客户端上行消息；目前只有飞行完成回执
type wsInbound struct {
	Type     string `json:"type"`
	FlightID uint64 `json:"flightId"`
}

// 文档注释：会话命令流
// 背景：先订阅再发送快照，保证快照之后的变更不会遗漏；渲染端按顺序重放 scene 命令即可与镜像保持一致。
// 约束：单写协程；读协程只处理回执与 pong，读错误即结束连接。
func (s *server) serveWS(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sess.Logger().Warn("ws_upgrade_error", "err", err)
		return
	}
	defer conn.Close()

	cmds, unsubCmds := sess.Graph.Subscribe()
	defer unsubCmds()
	states, unsubStates := sess.Nav.Subscribe()
	defer unsubStates()

	snap := sess.Graph.Snapshot()
	st := sess.Nav.State()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(wsMessage{Type: "snapshot", Snapshot: &snap, State: &st}); err != nil {
		return
	}

	done := make(chan struct{})
	go s.readPump(conn, sess, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		var msg wsMessage
		select {
		case <-done:
			return
		case c, ok := <-cmds:
			if !ok {
				s.closeWS(conn)
				return
			}
			msg = wsMessage{Type: "scene", Command: &c}
		case st, ok := <-states:
			if !ok {
				s.closeWS(conn)
				return
			}
			msg = wsMessage{Type: "state", State: &st}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			sess.Logger().Debug("ws_write_error", "err", err)
			return
		}
	}
}

func (s *server) readPump(conn *websocket.Conn, sess *session.Session, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxBody)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		sess.Touch(s.now())
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sess.Touch(s.now())
		var in wsInbound
		if err := json.Unmarshal(b, &in); err != nil {
			sess.Logger().Debug("ws_bad_message", "err", err)
			continue
		}
		switch in.Type {
		case "flight_complete":
			sess.Camera.Ack(in.FlightID)
		default:
			sess.Logger().Debug("ws_unknown_message", "type", in.Type)
		}
	}
}

func (s *server) closeWS(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
