// Package http serves quiz play sessions over WebSocket.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/session"
)

// writeWait bounds a single frame write to a client that stopped reading.
const writeWait = 10 * time.Second

type WSHandler struct {
	service        *app.PlayService
	writeTimeout   time.Duration
	logger         *slog.Logger
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

func NewWSHandler(service *app.PlayService, allowedOrigins []string, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &WSHandler{
		service:        service,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		writeTimeout:   writeWait,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(h.allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// answerPayload carries an option index (number), a true-false value (bool)
// or free text (string). null clears the answer.
type answerPayload struct {
	Answer any `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

func stateMessage(sess *session.Session) outboundMessage[any] {
	return outboundMessage[any]{Type: "state", Payload: sess.View()}
}

// ServeWS upgrades the request and runs one play session over the connection.
// This goroutine owns the session; the reader only forwards frames.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(mux.Vars(r)["quizId"], 10, 64)
	if err != nil || quizID <= 0 {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	id, sess, err := h.service.Open(r.Context(), quizID)
	if err != nil {
		msg := "failed to load quiz"
		if errors.Is(err, domain.ErrQuizNotFound) {
			msg = "quiz not found"
		}
		_ = h.write(conn, errorMessage(msg))
		return
	}
	defer h.service.Close(id)
	log := h.logger.With("session_id", id, "quiz_id", quizID)

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := h.write(conn, msg); err != nil {
				log.Debug("ws write error", "err", err)
				// keep draining so the owner never blocks
				for range send {
				}
				return
			}
		}
	}()
	defer func() {
		close(send)
		<-writerDone
	}()

	inbound := make(chan inboundMessage)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-r.Context().Done():
				return
			}
		}
	}()

	send <- stateMessage(sess)
	for {
		select {
		case <-readerDone:
			log.Debug("client disconnected", "state", sess.State().String())
			return
		case <-r.Context().Done():
			return
		case <-sess.Ticks():
			sess.Tick()
			send <- stateMessage(sess)
		case msg := <-inbound:
			h.service.Touch(r.Context(), id)
			next, err := h.apply(id, sess, msg)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			sess = next
			send <- stateMessage(sess)
		}
	}
}

func (h *WSHandler) write(conn *websocket.Conn, msg outboundMessage[any]) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// apply runs one client command. It returns the session to keep using,
// which differs from sess only after a restart.
func (h *WSHandler) apply(id string, sess *session.Session, msg inboundMessage) (*session.Session, error) {
	switch msg.Type {
	case "start":
		return sess, sess.Start()
	case "answer":
		var payload answerPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return sess, errors.New("invalid answer payload")
			}
		}
		return sess, sess.RecordAnswer(toAnswer(payload.Answer))
	case "next":
		return sess, sess.Advance()
	case "previous":
		return sess, sess.Retreat()
	case "reveal":
		return sess, sess.RevealReview()
	case "restart":
		return h.service.Restart(id)
	}
	return sess, errors.New("unsupported message type")
}

func toAnswer(v any) domain.Answer {
	switch value := v.(type) {
	case bool:
		return domain.BoolAnswer(value)
	case string:
		return domain.TextAnswer(value)
	case float64:
		if value == math.Trunc(value) && value >= 0 {
			return domain.ChoiceAnswer(int(value))
		}
		return domain.TextAnswer(strconv.FormatFloat(value, 'f', -1, 64))
	}
	return domain.Unanswered()
}
