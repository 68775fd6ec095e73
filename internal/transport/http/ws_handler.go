package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"signs-study-service/internal/app"
	"signs-study-service/internal/domain"
)

type WSHandler struct {
	study    *app.StudyService
	upgrader websocket.Upgrader
}

func NewWSHandler(study *app.StudyService) *WSHandler {
	return &WSHandler{
		study: study,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView hides the answer key from the client.
type questionView struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	SignID  int64    `json:"signId,omitempty"`
}

type sessionView struct {
	ID           string         `json:"id"`
	Kind         app.Kind       `json:"kind"`
	CurrentIndex int            `json:"currentIndex"`
	Questions    []questionView `json:"questions"`
}

func newSessionView(s app.Snapshot) sessionView {
	view := sessionView{ID: s.ID, Kind: s.Kind, CurrentIndex: s.CurrentIndex}
	for i, q := range s.Questions {
		view.Questions = append(view.Questions, questionView{Index: i, Prompt: q.Prompt, Options: q.Options, SignID: q.SignID})
	}
	return view
}

// ServeWS upgrades the request and runs one study session over the socket.
// Query: userId, mode (flashcards|practice|chapter|lesson|mock) and id, which
// names the category, topic, lesson or mock test; practice needs no id.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	mode := app.Kind(r.URL.Query().Get("mode"))
	rawID := r.URL.Query().Get("id")
	if userID == "" || mode == "" || (mode != app.KindPractice && rawID == "") {
		http.Error(w, "missing userId, mode, or id", http.StatusBadRequest)
		return
	}
	var targetID int64
	if rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		targetID = id
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.start(r.Context(), userID, mode, targetID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.study.End(context.Background(), session.ID())

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: newSessionView(session.Snapshot())}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			feedback, err := h.study.SubmitAnswer(r.Context(), session.ID(), *payload.Option)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: feedback}
			if feedback.Complete {
				result, err := h.study.Result(r.Context(), session.ID())
				if err != nil {
					send <- errorMessage(err.Error())
					continue
				}
				send <- outboundMessage[any]{Type: "result", Payload: result}
			}
		case "retry":
			snap, err := h.study.Retry(r.Context(), session.ID())
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "session", Payload: newSessionView(snap)}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) start(ctx context.Context, userID string, mode app.Kind, id int64) (*app.Session, error) {
	switch mode {
	case app.KindFlashcards:
		return h.study.StartFlashcards(ctx, userID, id)
	case app.KindPractice:
		return h.study.StartQuickPractice(ctx, userID)
	case app.KindChapterTest:
		return h.study.StartChapterTest(ctx, userID, id)
	case app.KindMiniQuiz:
		return h.study.StartMiniQuiz(ctx, userID, id)
	case app.KindMockExam:
		return h.study.StartMockExam(ctx, userID, id)
	default:
		return nil, errUnknownMode
	}
}

var errUnknownMode = errors.New("unknown mode")

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrTopicNotFound),
		errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrMockTestNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
