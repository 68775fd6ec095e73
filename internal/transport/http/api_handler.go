package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"signs-study-service/internal/app"
	"signs-study-service/internal/domain"
)

// APIHandler serves the read-mostly dashboard endpoints.
type APIHandler struct {
	study    *app.StudyService
	chapters *app.ChapterTracker
	guide    *app.GuideService
}

func NewAPIHandler(study *app.StudyService, chapters *app.ChapterTracker, guide *app.GuideService) *APIHandler {
	return &APIHandler{study: study, chapters: chapters, guide: guide}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/progress", h.progress)
	mux.HandleFunc("GET /api/chapters", h.chapterList)
	mux.HandleFunc("POST /api/chapters/touch", h.touch)
	mux.HandleFunc("GET /api/categories/search", h.search)
	mux.HandleFunc("GET /api/lessons", h.lessons)
	mux.HandleFunc("GET /api/lessons/next", h.nextLesson)
}

type progressResponse struct {
	Overview app.ProgressOverview `json:"overview"`
	Practice []domain.Sign        `json:"practice"`
}

func (h *APIHandler) progress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireParam(w, r, "userId")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{
		Overview: h.study.Overview(r.Context(), userID),
		Practice: h.study.QuickPractice(r.Context(), userID),
	})
}

func (h *APIHandler) chapterList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireParam(w, r, "userId")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.chapters.Overview(r.Context(), userID))
}

func (h *APIHandler) touch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireParam(w, r, "userId")
	if !ok {
		return
	}
	topicID, ok := requireID(w, r, "topicId")
	if !ok {
		return
	}
	h.chapters.Touch(r.Context(), userID, topicID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) search(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := requireID(w, r, "categoryId")
	if !ok {
		return
	}
	signs, err := h.study.SearchCategory(r.Context(), categoryID, r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, signs)
}

type lessonView struct {
	domain.Lesson
	MiniQuiz bool `json:"miniQuiz"`
}

func (h *APIHandler) lessons(w http.ResponseWriter, r *http.Request) {
	topicID, ok := requireID(w, r, "topicId")
	if !ok {
		return
	}
	lessons, err := h.guide.Lessons(r.Context(), topicID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	out := make([]lessonView, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, lessonView{Lesson: l, MiniQuiz: app.MiniQuizVisible(l)})
	}
	writeJSON(w, http.StatusOK, out)
}

type nextLessonResponse struct {
	Next *lessonView `json:"next"`
}

func (h *APIHandler) nextLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := requireID(w, r, "lessonId")
	if !ok {
		return
	}
	next, err := h.guide.NextLesson(r.Context(), lessonID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	var resp nextLessonResponse
	if l, ok := domain.Get(next); ok {
		resp.Next = &lessonView{Lesson: l, MiniQuiz: app.MiniQuizVisible(l)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		http.Error(w, "missing "+name, http.StatusBadRequest)
		return "", false
	}
	return v, true
}

func requireID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw, ok := requireParam(w, r, name)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
