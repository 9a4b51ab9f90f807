// Package server exposes sessions over HTTP and WebSocket.
//
// Every game route needs a player token, sent as "Authorization: Bearer
// <token>" (or as the token query parameter on the WebSocket route). Rule
// rejections are ordinary 200 responses with applied set to false.
package server

import (
	"net/http"

	"github.com/jason-s-yu/scoundrel/internal/auth"
	"github.com/jason-s-yu/scoundrel/internal/session"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps request bodies. No route reads one.
const maxBodyBytes = 4 << 10

// Server routes requests to player sessions.
type Server struct {
	sessions *session.Manager
	issuer   *auth.Issuer
	log      *logrus.Entry
	mux      *http.ServeMux
}

// New builds a Server and registers its routes.
func New(sessions *session.Manager, issuer *auth.Issuer, log *logrus.Logger) *Server {
	s := &Server{
		sessions: sessions,
		issuer:   issuer,
		log:      log.WithField("component", "server"),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/players", s.handleNewPlayer)

	s.mux.HandleFunc("GET /api/game", s.withSession(s.handleGetGame))
	s.mux.HandleFunc("POST /api/game/new", s.withSession(s.handleNewGame))
	s.mux.HandleFunc("POST /api/game/next-room", s.withSession(s.handleNextRoom))
	s.mux.HandleFunc("POST /api/game/forfeit", s.withSession(s.handleForfeit))
	s.mux.HandleFunc("POST /api/game/undo", s.withSession(s.handleUndo))
	s.mux.HandleFunc("POST /api/game/cards/{id}/{action}", s.withSession(s.handleCardAction))

	s.mux.HandleFunc("GET /api/ws", s.withSession(s.handleWS))
}

// Handler returns the routed handler wrapped in the standard middleware.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		withRequestID,
		withRequestLog(s.log),
		withRecover(s.log),
	)
}
