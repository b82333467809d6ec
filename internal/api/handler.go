package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/hearthvale/internal/memory"
	"github.com/nidhogg/hearthvale/internal/persona"
	"github.com/nidhogg/hearthvale/internal/world"
	"go.uber.org/zap"
)

// Persistence is the save/load surface the API exposes to the browser.
type Persistence interface {
	world.SnapshotSink
	LoadVillage(ctx context.Context, names []string) (map[string]*persona.Snapshot, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	village *world.Village
	clock   *world.Clock
	persist Persistence // nil when no snapshot backend is configured
	logger  *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(village *world.Village, clock *world.Clock, persist Persistence, logger *zap.Logger) *Handler {
	return &Handler{
		village: village,
		clock:   clock,
		persist: persist,
		logger:  logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/npcs", h.listNPCs)
		r.Post("/npcs/{name}/chat", h.chatWithNPC)
		r.Get("/npcs/{name}/relationships", h.npcRelationships)
		r.Get("/npcs/{name}/memories", h.npcMemories)
		r.Post("/save", h.saveVillage)
		r.Post("/load", h.loadVillage)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "world": "hearthvale"})
}

// npcView is the public shape of an NPC, without its memory internals.
type npcView struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Mood   string  `json:"mood"`
	Energy float64 `json:"energy"`
	Busy   bool    `json:"busy"`
}

func (h *Handler) listNPCs(w http.ResponseWriter, r *http.Request) {
	var out []npcView
	for _, n := range h.village.List() {
		mood, energy := n.Status()
		out = append(out, npcView{
			Name:   n.Name,
			Color:  n.Color,
			Mood:   mood,
			Energy: energy,
			Busy:   h.village.IsBusy(n.Name),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type chatRequest struct {
	Sender    memory.Participant `json:"sender"`
	Text      string             `json:"text"`
	WorldInfo string             `json:"world_info,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) chatWithNPC(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Text == "" || req.Sender.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sender.name and text are required"})
		return
	}

	reply, err := h.village.Converse(r.Context(), name, req.Sender, req.Text, req.WorldInfo)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, world.ErrUnknownNPC):
			status = http.StatusNotFound
		case errors.Is(err, world.ErrBusy):
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (h *Handler) npcRelationships(w http.ResponseWriter, r *http.Request) {
	n, ok := h.village.Get(chi.URLParam(r, "name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "npc not found"})
		return
	}
	writeJSON(w, http.StatusOK, n.Memory().GetAllRelationships())
}

func (h *Handler) npcMemories(w http.ResponseWriter, r *http.Request) {
	n, ok := h.village.Get(chi.URLParam(r, "name"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "npc not found"})
		return
	}
	query := r.URL.Query().Get("q")
	category := memory.Category(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, n.Memory().SearchMemories(query, category))
}

func (h *Handler) saveVillage(w http.ResponseWriter, r *http.Request) {
	if h.persist == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot store configured"})
		return
	}
	if err := h.persist.SaveVillage(r.Context(), h.village.Serialize()); err != nil {
		h.logger.Error("save failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) loadVillage(w http.ResponseWriter, r *http.Request) {
	if h.persist == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot store configured"})
		return
	}
	var names []string
	for _, n := range h.village.List() {
		names = append(names, n.Name)
	}
	snaps, err := h.persist.LoadVillage(r.Context(), names)
	if err != nil {
		h.logger.Error("load failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.village.Restore(snaps)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "loaded", "npcs": len(snaps)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
