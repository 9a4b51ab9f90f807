package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/scoundrel/engine"
	"github.com/jason-s-yu/scoundrel/internal/session"
	"github.com/sirupsen/logrus"
)

const (
	wsReadLimit  = 4 << 10
	wsUpdateBuf  = 8
	wsTypeState  = "state"
	wsTypeResult = "result"
	wsTypeError  = "error"
)

// Client message types that are not engine actions.
const (
	wsCmdNewGame = "new_game"
	wsCmdUndo    = "undo"
	wsCmdSync    = "sync"
)

// clientMessage is a command from the browser. Type is an engine action name
// (drink, equip, fight, fight_weapon, next_room, forfeit) or one of new_game,
// undo and sync.
type clientMessage struct {
	Type   string `json:"type"`
	CardID int    `json:"cardId"`
}

// serverMessage is pushed to the browser. State messages follow every applied
// action; result messages answer the client's own commands.
type serverMessage struct {
	Type    string        `json:"type"`
	Applied *bool         `json:"applied,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	State   *session.View `json:"state,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}
	conn.SetReadLimit(wsReadLimit)
	log := s.log.WithFields(logrus.Fields{"slot": sess.Slot, "session": sess.ID})
	log.Info("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribers run under the session lock and must never block. A slow
	// client drops its oldest pending view.
	updates := make(chan session.View, wsUpdateBuf)
	unsubscribe := sess.Subscribe(func(v session.View) {
		select {
		case updates <- v:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- v:
		default:
		}
	})
	defer unsubscribe()

	initial := sess.View()
	if err := wsjson.Write(ctx, conn, serverMessage{Type: wsTypeState, State: &initial}); err != nil {
		log.WithError(err).Debug("websocket initial write")
		return
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-updates:
				if err := wsjson.Write(ctx, conn, serverMessage{Type: wsTypeState, State: &v}); err != nil {
					return
				}
			}
		}
	}()

	err = s.readLoop(ctx, conn, sess, log)
	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		log.Info("websocket closed")
	case errors.Is(err, context.Canceled):
		log.Debug("websocket cancelled")
	default:
		log.WithError(err).Warn("websocket dropped")
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session, log *logrus.Entry) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var reply serverMessage
		var msg clientMessage
		if typ != websocket.MessageText || json.Unmarshal(data, &msg) != nil {
			reply = serverMessage{Type: wsTypeError, Reason: "malformed message"}
		} else {
			reply = s.dispatch(ctx, sess, msg, log)
		}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			return err
		}
	}
}

// dispatch runs one client command and builds the reply.
func (s *Server) dispatch(ctx context.Context, sess *session.Session, msg clientMessage, log *logrus.Entry) serverMessage {
	var op func(context.Context) (session.View, error)
	switch msg.Type {
	case wsCmdSync:
		v := sess.View()
		return serverMessage{Type: wsTypeState, State: &v}
	case wsCmdNewGame:
		op = sess.NewGame
	case wsCmdUndo:
		op = sess.Undo
	default:
		kind, ok := engine.ParseActionKind(msg.Type)
		if !ok {
			return serverMessage{Type: wsTypeError, Reason: "unknown message type " + msg.Type}
		}
		a := engine.Action{Kind: kind, CardID: msg.CardID}
		op = func(ctx context.Context) (session.View, error) { return sess.Apply(ctx, a) }
	}

	resp, err := runAction(ctx, op)
	if err != nil {
		log.WithError(err).WithField("type", msg.Type).Error("websocket action failed")
		return serverMessage{Type: wsTypeError, Reason: "action failed"}
	}
	return serverMessage{Type: wsTypeResult, Applied: &resp.Applied, Reason: resp.Reason, State: &resp.State}
}
