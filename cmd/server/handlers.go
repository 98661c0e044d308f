package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/fleet"
	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/protocol"
	"github.com/novaforge/cosmos-core/internal/telemetry"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// api holds the handlers' shared dependencies.
type api struct {
	fleet  *fleet.Fleet
	logger *telemetry.Logger
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case gameerrors.Is(err, gameerrors.ErrBodyNotFound):
		status = http.StatusNotFound
	case gameerrors.Is(err, gameerrors.ErrInsufficientResources),
		gameerrors.Is(err, gameerrors.ErrBodyLimitReached),
		gameerrors.Is(err, gameerrors.ErrOutOfBounds),
		gameerrors.Is(err, gameerrors.ErrTooClose),
		gameerrors.Is(err, gameerrors.ErrInvalidVelocity),
		gameerrors.Is(err, gameerrors.ErrInvalidMass):
		status = http.StatusBadRequest
	case gameerrors.Is(err, gameerrors.ErrRateLimitExceeded),
		gameerrors.Is(err, gameerrors.ErrSuspiciousActivity):
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func playerID(r *http.Request) string {
	return r.Header.Get("X-Player-ID")
}

// handleSessionStart registers the calling player's session with the
// fleet if it is not already active. Idempotent: calling it twice for
// the same player returns the existing session.
func (a *api) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	if id == "" {
		http.Error(w, "missing X-Player-ID", http.StatusBadRequest)
		return
	}
	a.fleet.AddPlayer(id, time.Now())
	writeJSON(w, http.StatusOK, map[string]string{"status": "active", "player": id})
}

func (a *api) handleCreateBody(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	var req struct {
		Kind     string    `json:"kind"`
		Position vec3.Vec3 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	kind, err := bodies.ParseKind(req.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, err = a.fleet.Dispatch(r.Context(), id, protocol.CreateBody{Player: id, Kind: kind, Position: req.Position})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "created"})
}

func (a *api) handleRemoveBody(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	var req struct {
		BodyID bodies.BodyID `json:"body_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	_, err := a.fleet.Dispatch(r.Context(), id, protocol.RemoveBody{Player: id, BodyID: req.BodyID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (a *api) handlePurchaseUpgrade(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	kind, err := economy.ParseUpgradeKind(req.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, err = a.fleet.Dispatch(r.Context(), id, protocol.PurchaseUpgrade{Player: id, Kind: kind})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purchased"})
}

func (a *api) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	_, err := a.fleet.Dispatch(r.Context(), id, protocol.SaveGame{Player: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (a *api) handleLoadGame(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	var req struct {
		Tick    uint64 `json:"tick"`
		HasTick bool   `json:"has_tick"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
	}
	_, err := a.fleet.Dispatch(r.Context(), id, protocol.LoadGame{Player: id, Tick: req.Tick, HasTick: req.HasTick})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (a *api) handleGetState(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	result, err := a.fleet.Dispatch(r.Context(), id, protocol.GetState{Player: id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.(protocol.GetStateResult).Snapshot)
}

func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"running":        a.fleet.Running(),
		"tick":           a.fleet.Tick(),
		"active_players": a.fleet.ActivePlayerCount(),
	})
}
