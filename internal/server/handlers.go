package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jason-s-yu/scoundrel/engine"
	"github.com/jason-s-yu/scoundrel/internal/session"
	"github.com/sirupsen/logrus"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession authenticates the request and resolves the player's session.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		player, err := s.issuer.Verify(bearerToken(r))
		if err != nil {
			s.log.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Debug("unauthorized")
			writeError(w, http.StatusUnauthorized, "missing or invalid player token")
			return
		}
		sess, err := s.sessions.Get(r.Context(), player.String())
		if err != nil {
			s.log.WithError(err).WithField("player", player).Error("open session")
			writeError(w, http.StatusServiceUnavailable, "game storage unavailable")
			return
		}
		h(w, r, sess)
	}
}

// bearerToken reads the Authorization header, falling back to the token query
// parameter for clients that cannot set headers (browsers opening a WebSocket).
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.Len()})
}

func (s *Server) handleNewPlayer(w http.ResponseWriter, r *http.Request) {
	id, token, err := s.issuer.NewPlayer()
	if err != nil {
		s.log.WithError(err).Error("issue player token")
		writeError(w, http.StatusInternalServerError, "could not create player")
		return
	}
	s.log.WithField("player", id).Info("player created")
	writeJSON(w, http.StatusCreated, playerResponse{PlayerID: id.String(), Token: token})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, stateResponse{State: sess.View()})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.respondAction(r.Context(), w, sess, sess.NewGame)
}

func (s *Server) handleNextRoom(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.respondAction(r.Context(), w, sess, sess.NextRoom)
}

func (s *Server) handleForfeit(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.respondAction(r.Context(), w, sess, sess.Forfeit)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.respondAction(r.Context(), w, sess, sess.Undo)
}

// cardActions maps the URL verb of a card route to the engine action.
var cardActions = map[string]engine.ActionKind{
	"drink":        engine.ActionDrink,
	"equip":        engine.ActionEquip,
	"fight":        engine.ActionFightBareHands,
	"fight-weapon": engine.ActionFightWithWeapon,
}

func (s *Server) handleCardAction(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "card id must be a non-negative integer")
		return
	}
	kind, ok := cardActions[r.PathValue("action")]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown card action "+strconv.Quote(r.PathValue("action")))
		return
	}
	a := engine.Action{Kind: kind, CardID: id}
	s.respondAction(r.Context(), w, sess, func(ctx context.Context) (session.View, error) {
		return sess.Apply(ctx, a)
	})
}

func (s *Server) respondAction(ctx context.Context, w http.ResponseWriter, sess *session.Session, op func(context.Context) (session.View, error)) {
	resp, err := runAction(ctx, op)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"slot": sess.Slot, "session": sess.ID}).Error("action failed")
		writeError(w, http.StatusInternalServerError, "action failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// runAction turns an operation result into a response. Rule rejections are
// answers, not failures.
func runAction(ctx context.Context, op func(context.Context) (session.View, error)) (actionResponse, error) {
	v, err := op(ctx)
	switch {
	case err == nil:
		return actionResponse{Applied: true, State: v}, nil
	case session.IsRejection(err):
		return actionResponse{Applied: false, Reason: err.Error(), State: v}, nil
	}
	return actionResponse{}, err
}

