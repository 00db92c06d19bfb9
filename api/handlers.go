package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/signalnine/ecoround/config"
	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/evolution"
	"github.com/signalnine/ecoround/simulation"
	"github.com/signalnine/ecoround/store"
	"github.com/signalnine/ecoround/strategy"
	"github.com/signalnine/ecoround/wire"
)

// HealthResponse reports liveness and what the server can do.
type HealthResponse struct {
	Status        string `json:"status"`
	EngineVersion string `json:"engine_version"`
	Uptime        string `json:"uptime"`
	Strategies    int    `json:"strategies"`
	Store         bool   `json:"store"`
}

// MatchRequest plays a single match. Omitted match fields keep the server
// defaults.
type MatchRequest struct {
	A     string                 `json:"a"`
	B     string                 `json:"b"`
	Seed  int64                  `json:"seed"`
	Match simulation.MatchConfig `json:"match"`
}

// TournamentRequest builds an interaction matrix and, when Evolve is set,
// runs replicator dynamics on it.
type TournamentRequest struct {
	Tournament evolution.TournamentConfig `json:"tournament"`
	Match      simulation.MatchConfig     `json:"match"`
	Evolve     bool                       `json:"evolve"`
	Replicator config.ReplicatorConfig    `json:"replicator"`
}

// TournamentResponse is the result of a tournament.
type TournamentResponse struct {
	ID         string                       `json:"id,omitempty"`
	Matrix     *evolution.InteractionMatrix `json:"matrix"`
	Trajectory *evolution.Trajectory        `json:"trajectory,omitempty"`
	Ranking    []evolution.Share            `json:"ranking,omitempty"`
}

// ReplicatorRequest evolves a population over a supplied matrix.
type ReplicatorRequest struct {
	Matrix     *evolution.InteractionMatrix `json:"matrix"`
	Replicator config.ReplicatorConfig      `json:"replicator"`
}

// ReplicatorResponse is a trajectory with its per-timepoint summary.
type ReplicatorResponse struct {
	Trajectory *evolution.Trajectory      `json:"trajectory"`
	Stats      []evolution.TimepointStats `json:"stats"`
	Ranking    []evolution.Share          `json:"ranking"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		EngineVersion: engine.Version,
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		Strategies:    len(strategy.Names()),
		Store:         s.db != nil,
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"strategies": strategy.Names()})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	req := MatchRequest{Seed: s.cfg.Tournament.Seed, Match: s.cfg.Match}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := strategy.Lookup(req.A)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := strategy.Lookup(req.B)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := simulation.PlayMatch(a, b, req.Match, engine.NewSource(req.Seed))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsBinary(r) {
		s.writeBinary(w, wire.EncodeMatch(result))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTournament(w http.ResponseWriter, r *http.Request) {
	req := TournamentRequest{
		Tournament: s.cfg.Tournament,
		Match:      s.cfg.Match,
		Replicator: s.cfg.Replicator,
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit := s.cfg.Server.MaxSampleSize; limit > 0 && req.Tournament.SampleSize > limit {
		s.writeError(w, r, fmt.Errorf("%w: sample_size %d exceeds %d", errBadRequest, req.Tournament.SampleSize, limit))
		return
	}

	roster, err := strategy.ResolveRoster(req.Tournament.Roster, req.Match.Mode == simulation.Halves)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var shares []float64
	if req.Evolve {
		if shares, err = evolution.ResolveShares(evolution.RosterNames(roster), req.Replicator.Shares); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	t := evolution.NewTournament(req.Tournament, req.Match, s.logger)
	recorder := &store.Recorder{}
	t.OnPairComplete = recorder.Observe

	m, err := t.InteractionMatrix(r.Context(), roster)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := TournamentResponse{Matrix: m}

	if req.Evolve {
		traj, err := evolution.Evolve(m, shares, req.Replicator.Timepoints())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Trajectory = traj
		resp.Ranking = traj.Final().Ranked()
	}

	status := http.StatusOK
	if s.db != nil {
		id, err := store.SaveTournament(r.Context(), s.db, t, m, recorder.Cells(), resp.Trajectory, engine.Version)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.ID = id
		status = http.StatusCreated
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleReplicator(w http.ResponseWriter, r *http.Request) {
	req := ReplicatorRequest{Replicator: s.cfg.Replicator}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Matrix == nil {
		s.writeError(w, r, fmt.Errorf("%w: matrix is required", errBadRequest))
		return
	}

	shares, err := evolution.SharesByName(req.Matrix, req.Replicator.Shares)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	traj, err := evolution.Evolve(req.Matrix, shares, req.Replicator.Timepoints())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsBinary(r) {
		s.writeBinary(w, wire.EncodeTrajectory(traj))
		return
	}
	s.writeJSON(w, http.StatusOK, ReplicatorResponse{
		Trajectory: traj,
		Stats:      traj.Stats(),
		Ranking:    traj.Final().Ranked(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, errStoreDisabled)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	runs, err := s.db.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, r, errStoreDisabled)
		return
	}
	rec, err := store.LoadRecord(r.Context(), s.db, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsBinary(r) {
		s.writeBinary(w, wire.EncodeMatrix(rec.Matrix))
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// decode reads a JSON body into v, keeping v's values for omitted fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

// wantsBinary reports whether the client asked for FlatBuffers output.
func wantsBinary(r *http.Request) bool {
	return r.URL.Query().Get("format") == "flatbuffers" ||
		r.Header.Get("Accept") == "application/octet-stream"
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, key)
	}
	return v, nil
}
