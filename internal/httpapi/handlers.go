package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/risk"
	"meme-coin-tracker/internal/scheduler"
	"meme-coin-tracker/internal/storage"
)

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status       string          `json:"status"`
	State        scheduler.State `json:"state"`
	Uptime       string          `json:"uptime"`
	StartedAt    time.Time       `json:"startedAt"`
	LastScan     time.Time       `json:"lastScan"`
	Scans        int             `json:"scans"`
	ScanInterval string          `json:"scanInterval"`
	CoinsTracked int             `json:"coinsTracked"`
	Capacity     int             `json:"capacity"`
}

// CoinsResponse is the JSON response for /api/coins.
type CoinsResponse struct {
	Coins      []domain.CoinRecord `json:"coins"`
	Count      int                 `json:"count"`
	Capacity   int                 `json:"capacity"`
	LastUpdate time.Time           `json:"lastUpdate"`
}

// CoinDetail is the JSON response for /api/coins/{id}.
type CoinDetail struct {
	Coin       domain.CoinRecord `json:"coin"`
	Assessment risk.Assessment   `json:"assessment"`
	Flags      risk.FlagLabels   `json:"flags"`
	Emoji      string            `json:"emoji"`
	Color      string            `json:"color"`
}

// StatsResponse is the JSON response for /api/stats.
type StatsResponse struct {
	risk.Summary
	ScanInterval string    `json:"scanInterval"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleStatus returns scheduler status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.scheduler.Status()

	n, err := s.store.Len(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := "running"
	if st.State != scheduler.StateActive {
		status = "stopped"
	}
	uptime := time.Duration(0)
	if !st.StartedAt.IsZero() {
		end := s.now()
		if !st.StoppedAt.IsZero() {
			end = st.StoppedAt
		}
		uptime = end.Sub(st.StartedAt).Round(time.Second)
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:       status,
		State:        st.State,
		Uptime:       uptime.String(),
		StartedAt:    st.StartedAt,
		LastScan:     st.LastScan,
		Scans:        st.Scans,
		ScanInterval: st.Interval.String(),
		CoinsTracked: n,
		Capacity:     s.store.Capacity(),
	})
}

// handleListCoins returns the current window, optionally filtered by ?risk=LEVEL.
func (s *Server) handleListCoins(w http.ResponseWriter, r *http.Request) {
	var snap storage.Snapshot
	var err error

	if q := r.URL.Query().Get("risk"); q != "" {
		level, ok := domain.ParseRiskLevel(q)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown risk level: "+q)
			return
		}
		snap, err = s.coinsByRisk(r.Context(), level)
	} else {
		snap, err = s.store.Snapshot(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CoinsResponse{
		Coins:      snap.Coins,
		Count:      len(snap.Coins),
		Capacity:   s.store.Capacity(),
		LastUpdate: snap.LastUpdate,
	})
}

// coinsByRisk reads the coins of one tier and the store's last update.
func (s *Server) coinsByRisk(ctx context.Context, level domain.RiskLevel) (storage.Snapshot, error) {
	lastUpdate, err := s.store.LastUpdate(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	coins, err := s.store.GetByRisk(ctx, level)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{Coins: coins, LastUpdate: lastUpdate}, nil
}

// handleGetCoin returns one coin with its scoring breakdown.
func (s *Server) handleGetCoin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, err := s.store.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "coin not found: "+id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CoinDetail{
		Coin:       *c,
		Assessment: risk.Evaluate(risk.InputsOf(*c)),
		Flags:      risk.Labels(*c),
		Emoji:      risk.Emoji(c.RugPullRisk),
		Color:      risk.Color(c.RugPullRisk),
	})
}

// handleStats returns the risk distribution of the current window.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Summary:      risk.Summarize(snap.Coins),
		ScanInterval: s.scheduler.Status().Interval.String(),
		LastUpdate:   snap.LastUpdate,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
