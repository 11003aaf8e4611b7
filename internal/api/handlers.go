/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode the JSON requests, call the matching Game command
    and return JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid?)
    - Command Dispatch (Calling the Game, which serializes every mutation)
    - Timer Ownership (Restarting the Scheduler after a reset or a new map,
      and driving the warp frame loop once the black hole is entered)
    - Error Mapping (Command refusals become 4xx codes)
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/everforgeworks/outrider/internal/game"
)

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type RemoveSlotRequest struct {
	Index int `json:"index"`
}

type WarpInputRequest struct {
	Value int `json:"value"`
}

type DecisionRequest struct {
	Risk bool `json:"risk"`
}

type WarpOutResponse struct {
	Score int `json:"score"`
}

type EncounterResponse struct {
	Encounter  *game.Encounter       `json:"encounter"`
	LastResult *game.EncounterResult `json:"last_result"`
}

// Server binds the HTTP surface to one Game and its Scheduler.
type Server struct {
	ctx   context.Context // Lifetime of the loops started from handlers
	game  *game.Game
	sched *game.Scheduler
	hub   *Hub
}

// NewServer wires the handlers and installs the websocket command handler on hub.
func NewServer(ctx context.Context, g *game.Game, sched *game.Scheduler, hub *Hub) *Server {
	s := &Server{ctx: ctx, game: g, sched: sched, hub: hub}
	hub.HandleCommands(s.HandleCommand)
	return s
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Information Endpoints
	mux.HandleFunc("GET /api/state", s.HandleGetState)
	mux.HandleFunc("GET /api/market", s.HandleGetMarket)
	mux.HandleFunc("GET /api/log", s.HandleGetLog)
	mux.HandleFunc("GET /api/encounter", s.HandleGetEncounter)

	// Action Endpoints
	mux.HandleFunc("POST /api/craft/sail", s.HandleCraftSail)
	mux.HandleFunc("POST /api/craft/battery", s.HandleCraftBattery)
	mux.HandleFunc("POST /api/slots/remove", s.HandleRemoveSlot)
	mux.HandleFunc("POST /api/blackhole", s.HandleEnterBlackhole)
	mux.HandleFunc("POST /api/warp/input", s.HandleWarpInput)
	mux.HandleFunc("POST /api/warp/out", s.HandleWarpOut)
	mux.HandleFunc("POST /api/encounter/decide", s.HandleDecide)
	mux.HandleFunc("POST /api/encounter/dismiss", s.HandleDismiss)
	mux.HandleFunc("POST /api/map/next", s.HandleNextMap)
	mux.HandleFunc("POST /api/reset", s.HandleReset)

	// Debug Endpoints (refused unless the config enables them)
	mux.HandleFunc("POST /api/debug/lightyears", s.HandleMintLightyears)
	mux.HandleFunc("POST /api/debug/photons", s.HandleMintPhotons)
	mux.HandleFunc("POST /api/debug/encounter", s.HandleForceEncounter)

	// Real-Time WebSocket Endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.hub, w, r)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps a command refusal onto a status code.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrInsufficientPhotons), errors.Is(err, game.ErrInsufficientLightyears):
		status = http.StatusPaymentRequired
	case errors.Is(err, game.ErrInventoryFull),
		errors.Is(err, game.ErrCraftCooldown),
		errors.Is(err, game.ErrRunConcluded),
		errors.Is(err, game.ErrMapNotCleared),
		errors.Is(err, game.ErrWarpInProgress),
		errors.Is(err, game.ErrWarpNotRunning),
		errors.Is(err, game.ErrNoActiveEncounter):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidSlot):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrDebugDisabled):
		status = http.StatusForbidden
	}
	http.Error(w, err.Error(), status)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

// HandleGetState returns the full run snapshot.
func (s *Server) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.game.Snapshot())
}

// HandleGetMarket returns the market gauges and the derived craft values.
func (s *Server) HandleGetMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.game.Market())
}

// HandleGetLog returns the ship's log, newest first.
func (s *Server) HandleGetLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.game.LogEntries())
}

// HandleGetEncounter returns the pending encounter and the last wagered result.
func (s *Server) HandleGetEncounter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, EncounterResponse{
		Encounter:  s.game.ActiveEncounter(),
		LastResult: s.game.LastEncounterResult(),
	})
}

// HandleCraftSail builds a sail.
func (s *Server) HandleCraftSail(w http.ResponseWriter, r *http.Request) {
	sail, err := s.game.CraftSail()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, sail)
}

// HandleCraftBattery builds a battery.
func (s *Server) HandleCraftBattery(w http.ResponseWriter, r *http.Request) {
	battery, err := s.game.CraftBattery()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, battery)
}

// HandleRemoveSlot jettisons one module.
func (s *Server) HandleRemoveSlot(w http.ResponseWriter, r *http.Request) {
	var req RemoveSlotRequest
	if !decode(w, r, &req) {
		return
	}
	removed, err := s.game.RemoveSlot(req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, removed)
}

// HandleEnterBlackhole starts the warp minigame and its frame loop.
func (s *Server) HandleEnterBlackhole(w http.ResponseWriter, r *http.Request) {
	if err := s.game.EnterBlackhole(); err != nil {
		writeError(w, err)
		return
	}
	go s.sched.RunWarp(s.ctx, s.publishFrame)
	writeJSON(w, s.game.Snapshot().Warp)
}

// publishFrame forwards one warp frame to the websocket feed.
func (s *Server) publishFrame(view game.WarpView) {
	s.hub.Publish(game.Event{
		ID:       uuid.New(),
		Type:     game.EventWarpFrame,
		Severity: game.SeverityInfo,
		At:       time.Now(),
		Payload:  view,
	})
}

// HandleWarpInput sets the steering axis.
func (s *Server) HandleWarpInput(w http.ResponseWriter, r *http.Request) {
	var req WarpInputRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.game.ApplyWarpInput(req.Value); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWarpOut banks the minigame score.
func (s *Server) HandleWarpOut(w http.ResponseWriter, r *http.Request) {
	score, err := s.game.WarpOut()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, WarpOutResponse{Score: score})
}

// HandleDecide resolves the active encounter.
func (s *Server) HandleDecide(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.game.ResolveEncounter(req.Risk)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res)
}

// HandleDismiss clears the encounter result popup.
func (s *Server) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	s.game.DismissEncounterResult()
	w.WriteHeader(http.StatusNoContent)
}

// HandleNextMap moves to the next map after a win and restarts the loops.
func (s *Server) HandleNextMap(w http.ResponseWriter, r *http.Request) {
	if err := s.game.AdvanceToNextMap(); err != nil {
		writeError(w, err)
		return
	}
	s.sched.Start(s.ctx)
	writeJSON(w, s.game.Snapshot())
}

// HandleReset restarts the session and its loops.
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	s.game.ResetRun()
	s.sched.Start(s.ctx)
	writeJSON(w, s.game.Snapshot())
}

// HandleMintLightyears is the debug lightyear mint.
func (s *Server) HandleMintLightyears(w http.ResponseWriter, r *http.Request) {
	if err := s.game.MintLightyears(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, s.game.Snapshot())
}

// HandleMintPhotons is the debug photon mint.
func (s *Server) HandleMintPhotons(w http.ResponseWriter, r *http.Request) {
	if err := s.game.MintPhotons(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, s.game.Snapshot())
}

// HandleForceEncounter activates an encounter bypassing the gates.
func (s *Server) HandleForceEncounter(w http.ResponseWriter, r *http.Request) {
	enc, err := s.game.ForceEncounter()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, enc)
}

// HandleCommand serves the websocket warp controls.
func (s *Server) HandleCommand(in Inbound) *Message {
	switch in.Type {
	case "warp_input":
		if err := s.game.ApplyWarpInput(in.Value); err != nil {
			return &Message{Type: "error", Payload: err.Error(), Sender: "hub"}
		}
		return nil
	case "warp_out":
		score, err := s.game.WarpOut()
		if err != nil {
			return &Message{Type: "error", Payload: err.Error(), Sender: "hub"}
		}
		return &Message{Type: "warp_out", Payload: WarpOutResponse{Score: score}, Sender: "hub"}
	default:
		return &Message{Type: "error", Payload: "unknown command " + in.Type, Sender: "hub"}
	}
}
