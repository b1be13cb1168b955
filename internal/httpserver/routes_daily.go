// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's puzzle (creates or reuses the game)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// The daily game is an ordinary game session: toggle/check/hint/giveup go
// through /game/*, and a winning check writes the daily result.
// Each player solves once per day (enforced by DB + in-memory session map).
// Puzzle selection is deterministic from date + salt.

package httpserver

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchstick/internal/catalog"
	"github.com/robalobadob/matchstick/internal/daily"
	"github.com/robalobadob/matchstick/internal/game"
	"github.com/robalobadob/matchstick/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	now      func() time.Time
	sessions map[string]string // game IDs keyed by owner|date
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		now:      time.Now,
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// today returns today's date key and catalog index.
func (d *dailyServer) today() (date string, idx int) {
	now := d.now().UTC()
	return daily.DateKey(now), daily.PuzzleIndex(now, d.salt, catalog.Len())
}

// newRes is returned by /daily/new.
type newRes struct {
	GameID string     `json:"gameId"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	Game   *game.View `json:"game,omitempty"`
}

// handleNew creates or reuses the caller's daily game for the current date.
//   - If the caller already has a result for today → Played=true.
//   - Otherwise reuse a live session or start a new game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	_, uid := d.srv.owner(w, r)
	date, idx := d.today()

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Str("user", uid).Msg("daily already played")
	}
	if played {
		writeJSON(w, newRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	id, ok := d.sessions[key]
	d.mu.Unlock()
	if ok {
		g, err := d.srv.store.Get(r.Context(), id)
		if err == nil {
			v := g.State()
			writeJSON(w, newRes{GameID: g.ID, Date: date, Game: &v})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("gameId", id).Msg("load daily game")
			writeErr(w, http.StatusInternalServerError, "store_error")
			return
		}
	}

	pz, err := catalog.At(idx)
	if err != nil {
		log.Error().Err(err).Int("index", idx).Msg("daily puzzle")
		writeErr(w, http.StatusInternalServerError, "no_daily_puzzle")
		return
	}
	g, err := game.New(pz)
	if err != nil {
		log.Error().Err(err).Str("equation", pz.Equation).Msg("daily game")
		writeErr(w, http.StatusInternalServerError, "new_game_failed")
		return
	}
	g.Daily, g.DailyIndex = date, idx
	if !d.srv.save(w, r, g) {
		return
	}
	d.srv.insertGameRow(w, r, g)

	d.mu.Lock()
	d.sessions[key] = g.ID
	d.mu.Unlock()

	v := g.State()
	writeJSON(w, newRes{GameID: g.ID, Date: date, Game: &v})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, lbRes{Date: date, Top: rows})
}
