package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/geo"
	"github.com/kerala-navigator/navigator/internal/history"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/navigator"
	"github.com/kerala-navigator/navigator/internal/voice"
)

const (
	statusOK      = "ok"
	statusError   = "error"
	statusOffline = "offline"

	sourceValidation = "validation"
	sourceError      = "error"

	anonymousUser = "anonymous"
	maxUserIDLen  = 100
)

type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body, reporting whether it exceeded the size cap.
func decodeJSON(r *http.Request, v any) (tooLarge bool, err error) {
	err = json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return false, nil
	}
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr), err
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   statusOK,
		"message":  "Kerala AI Navigator backend running",
		"version":  "2.0",
		"features": []string{"AI responses", "location-aware", "Malayalam support"},
	})
}

type chatsResponse struct {
	Chats  []history.Entry `json:"chats"`
	Status string          `json:"status"`
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusOK, chatsResponse{Chats: []history.Entry{}, Status: statusOffline})
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid userId"})
		return
	}

	chats, err := s.deps.History.Recent(r.Context(), userID)
	if err != nil {
		s.logger.Error("loading chat history", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to load chat history", Status: statusError})
		return
	}
	writeJSON(w, http.StatusOK, chatsResponse{Chats: chats, Status: statusOK})
}

type todoItem struct {
	Task string `json:"task"`
	Done bool   `json:"done"`
}

func (s *Server) handleTodo(w http.ResponseWriter, r *http.Request) {
	if s.deps.Services == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Database unavailable"})
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "serviceId"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "serviceId required"})
		return
	}

	rec, err := s.deps.Services.Service(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Service not found"})
		return
	}
	if err != nil {
		s.logger.Error("loading service", zap.String("service_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to generate to-do list", Status: statusError})
		return
	}

	steps := rec.Steps.In(lang.Parse(r.URL.Query().Get("language")))
	todo := make([]todoItem, 0, len(steps))
	for _, step := range steps {
		todo = append(todo, todoItem{Task: step})
	}
	writeJSON(w, http.StatusOK, map[string]any{"todo": todo, "status": statusOK})
}

type transcriptResponse struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Source   string `json:"source,omitempty"`
	Error    string `json:"error,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (s *Server) handleWhisper(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, transcriptResponse{Error: "Audio file too large", Status: statusError})
			return
		}
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, transcriptResponse{Error: "No audio file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, transcriptResponse{Error: "No audio file provided"})
		return
	}

	l := lang.Parse(r.FormValue("language"))
	audio := voice.Audio{Data: data, MIMEType: header.Header.Get("Content-Type")}

	t, err := s.deps.STT.Transcribe(r.Context(), audio, l)
	if err != nil {
		s.logger.Error("transcription failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, transcriptResponse{
			Error:  err.Error(),
			Source: sourceError,
			Status: statusError,
		})
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{
		Text:     t.Text,
		Language: string(l),
		Source:   t.Source,
		Status:   statusOK,
	})
}

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type ttsResponse struct {
	Audio    string `json:"audio"`
	Language string `json:"language,omitempty"`
	Source   string `json:"source"`
	Error    string `json:"error,omitempty"`
	Status   string `json:"status"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if tooLarge, err := decodeJSON(r, &req); err != nil {
		status := http.StatusBadRequest
		if tooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, ttsResponse{Error: "Invalid request body", Source: sourceValidation, Status: statusError})
		return
	}

	text := strings.TrimSpace(req.Text)
	noText := ttsResponse{Error: "No text provided", Source: sourceValidation, Status: statusError}
	if text == "" {
		writeJSON(w, http.StatusBadRequest, noText)
		return
	}

	l := lang.Parse(req.Language)
	speech, err := s.deps.TTS.Synthesize(r.Context(), text, l)
	if errors.Is(err, voice.ErrNoText) {
		writeJSON(w, http.StatusBadRequest, noText)
		return
	}
	if err != nil {
		s.logger.Error("speech synthesis failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ttsResponse{Error: err.Error(), Source: sourceError, Status: statusError})
		return
	}
	writeJSON(w, http.StatusOK, ttsResponse{
		Audio:    speech.Audio,
		Language: string(l),
		Source:   speech.Source,
		Status:   statusOK,
	})
}

type aiRequest struct {
	Message  string          `json:"message"`
	UserID   string          `json:"userId"`
	Language string          `json:"language"`
	Location json.RawMessage `json:"location"`
}

// aiResponse carries every service field, null when the reply did not come
// from a catalog match.
type aiResponse struct {
	Reply             string             `json:"reply"`
	ServiceID         *string            `json:"serviceId"`
	Source            string             `json:"source"`
	LifeEvent         *catalog.LifeEvent `json:"lifeEvent"`
	ApplyAt           *string            `json:"applyAt"`
	Steps             []string           `json:"steps"`
	RequiredDocuments []string           `json:"requiredDocuments"`
	Fee               catalog.Fee        `json:"fee"`
	ProcessingTime    *string            `json:"processingTime"`
	Validity          *string            `json:"validity"`
	BestVisitTime     *string            `json:"bestVisitTime"`
	ServiceName       *string            `json:"serviceName"`
	ServiceNameML     *string            `json:"serviceName_ml"`
	AkshayaEligible   bool               `json:"akshayaEligible"`
	Department        *string            `json:"department"`
	Notes             *string            `json:"notes"`
	OnlineApplyURL    *string            `json:"onlineApplyUrl"`
	Status            string             `json:"status"`
}

type aiErrorResponse struct {
	Error  string `json:"error"`
	Reply  string `json:"reply"`
	Source string `json:"source"`
	Status string `json:"status,omitempty"`
}

func (s *Server) handleAI(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if tooLarge, err := decodeJSON(r, &req); err != nil {
		status := http.StatusBadRequest
		if tooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, aiErrorResponse{
			Error:  "Invalid query",
			Reply:  lang.Pick(lang.FromAcceptLanguage(r.Header.Get("Accept-Language")), replyTooShortEN, replyTooShortML),
			Source: sourceValidation,
		})
		return
	}

	requested := lang.Parse(req.Language)
	message := strings.TrimSpace(req.Message)
	switch n := utf8.RuneCountInString(message); {
	case n < navigator.MinMessageLen:
		writeJSON(w, http.StatusBadRequest, aiErrorResponse{
			Error:  "Invalid query",
			Reply:  lang.Pick(requested, replyTooShortEN, replyTooShortML),
			Source: sourceValidation,
		})
		return
	case n > navigator.MaxMessageLen:
		writeJSON(w, http.StatusBadRequest, aiErrorResponse{
			Error:  "Query too long",
			Reply:  lang.Pick(requested, replyTooLongEN, replyTooLongML),
			Source: sourceValidation,
		})
		return
	}

	q := navigator.Query{
		Message:  message,
		UserID:   callerID(req.UserID),
		Language: requested,
		Location: parseLocation(req.Location),
	}

	res, err := s.deps.Resolver.Resolve(r.Context(), q)
	if err != nil {
		s.logger.Error("resolving query", zap.String("user_id", q.UserID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, aiErrorResponse{
			Error:  "Processing failed",
			Reply:  lang.Pick(requested, replyFailedEN, replyFailedML),
			Source: sourceError,
			Status: statusError,
		})
		return
	}
	writeJSON(w, http.StatusOK, newAIResponse(res))
}

func newAIResponse(res navigator.Result) aiResponse {
	out := aiResponse{
		Reply:             res.Reply,
		Source:            res.Source,
		LifeEvent:         res.LifeEvent,
		Steps:             []string{},
		RequiredDocuments: []string{},
		Status:            statusOK,
	}
	if out.Reply == "" {
		out.Reply = lang.Pick(res.Language, noAnswerEN, noAnswerML)
	}

	rec := res.Service
	if rec == nil {
		return out
	}
	l := res.Language
	out.ServiceID = optional(rec.ID)
	out.ApplyAt = optional(rec.ApplyAt.In(l))
	if steps := rec.Steps.In(l); len(steps) > 0 {
		out.Steps = steps
	}
	if docs := rec.RequiredDocuments.In(l); len(docs) > 0 {
		out.RequiredDocuments = docs
	}
	out.Fee = rec.Fee
	out.ProcessingTime = optional(rec.ProcessingTime.In(l))
	out.Validity = optional(rec.Validity.In(l))
	out.BestVisitTime = optional(rec.BestVisitTime.In(l))
	out.ServiceName = optional(rec.Name.EN)
	out.ServiceNameML = optional(rec.Name.ML)
	out.AkshayaEligible = rec.AkshayaEligible
	out.Department = optional(rec.Department)
	out.Notes = optional(rec.Notes.In(l))
	out.OnlineApplyURL = optional(rec.OnlineApplyURL)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// callerID trims the supplied id, defaults it and caps it at 100 characters.
func callerID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return anonymousUser
	}
	if utf8.RuneCountInString(id) > maxUserIDLen {
		id = string([]rune(id)[:maxUserIDLen])
	}
	return id
}

// parseLocation accepts {lat, lng}; anything malformed is treated as absent.
func parseLocation(raw json.RawMessage) *geo.Location {
	if len(raw) == 0 {
		return nil
	}
	var loc struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil
	}
	return geo.Validate(loc.Lat, loc.Lng)
}

const (
	replyTooShortEN = "Please enter a valid question (at least 2 characters)"
	replyTooShortML = "ദയവായി ഒരു ചോദ്യം ഇടുക (കുറഞ്ഞത് 2 അക്ഷരങ്ങൾ)"
	replyTooLongEN  = "Your question is too long. Please make it shorter."
	replyTooLongML  = "ചോദ്യം വളരെ നീളമുണ്ട്. ചെറുതായി എഴുതുക."
	replyFailedEN   = "Sorry, I'm having trouble processing your request. Please try again."
	replyFailedML   = "ക്ഷമിക്കണം, ഇപ്പോൾ ചോദ്യം പ്രോസസ് ചെയ്യാൻ കഴിഞ്ഞില്ല. ദയവായി വീണ്ടും ശ്രമിക്കുക."
	noAnswerEN      = "No answer available"
	noAnswerML      = "ഉത്തരം ലഭ്യമല്ല"
)
