// internal/httpserver/server.go
//
// HTTP server wiring for the matchstick backend.
// Responsibilities:
//   - Router + middleware (request IDs, logging, JSON, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): new, view, toggle, check, hint, give up.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: see auth.go.
//   - Database persistence for game history and user stats (best effort).
//
// Notes:
//   - Verification failures are ordinary 200 responses carrying a reason;
//     only malformed requests and finished games are HTTP errors.
//   - The two routes that can reach the AI service are rate limited per client.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/config"
	"github.com/robalobadob/matchstick/internal/daily"
	"github.com/robalobadob/matchstick/internal/game"
	"github.com/robalobadob/matchstick/internal/puzzle"
	"github.com/robalobadob/matchstick/internal/ratelimit"
	"github.com/robalobadob/matchstick/internal/solver"
	"github.com/robalobadob/matchstick/internal/store"
)

// Server bundles router, session store, DB handle and puzzle provider.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	store    store.Store
	db       *sql.DB
	provider *puzzle.Provider
	limiter  ratelimit.Limiter
	daily    *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
// lim may be nil to disable rate limiting.
func New(cfg config.Config, st store.Store, db *sql.DB, prov *puzzle.Provider, lim ratelimit.Limiter) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, store: st, db: db, provider: prov, limiter: lim}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                      // zerolog access log
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(handlerTimeout(cfg))) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))             // credentials-friendly CORS
	s.r.Use(withAnonHolder)                     // one anon id per request

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"matchstick-go","endpoints":["/health","POST /game/new","POST /game/toggle","POST /game/check","POST /game/hint","POST /game/giveup","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints: optional auth, guests can play
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.With(rateLimited(lim)).Post("/game/new", s.handleNewGame)
		r.Get("/game/{id}", s.handleGetGame)
		r.Post("/game/toggle", s.handleToggle)
		r.Post("/game/check", s.handleCheck)
		r.With(rateLimited(lim)).Post("/game/hint", s.handleHint)
		r.Post("/game/giveup", s.handleGiveUp)

		// Daily Challenge: results persisted on win
		s.mountDaily(r)
	})

	// Auth + profile/stats
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found")
	})

	return s
}

func handlerTimeout(cfg config.Config) time.Duration {
	// AI calls get their own client timeout; leave room for the solver and DB.
	return cfg.LLMTimeout + 5*time.Second
}

// Start serves HTTP on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ GAME ---------------------------------------

// gameReq is the shared payload for game actions.
type gameReq struct {
	GameID string `json:"gameId"`
	Cell   int    `json:"cell"`
	Stick  int    `json:"stick"`
}

// decodeGame reads a gameReq and loads its game, writing the error
// response itself when it returns nil.
func (s *Server) decodeGame(w http.ResponseWriter, r *http.Request) (*game.Game, gameReq) {
	var req gameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return nil, req
	}
	return s.loadGame(w, r, req.GameID), req
}

func (s *Server) loadGame(w http.ResponseWriter, r *http.Request, id string) *game.Game {
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not_found")
		} else {
			log.Error().Err(err).Str("gameId", id).Msg("load game")
			writeErr(w, http.StatusInternalServerError, "store_error")
		}
		return nil
	}
	return g
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, g *game.Game) bool {
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return false
	}
	return true
}

// handleNewGame asks the provider for a puzzle (never fails; degraded
// puzzles carry a reason), stores the session and records an owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	pz := s.provider.Next(r.Context())
	g, err := game.New(pz)
	if err != nil {
		// Provider output always builds a board; this is a programming error.
		log.Error().Err(err).Str("equation", pz.Equation).Msg("new game")
		writeErr(w, http.StatusInternalServerError, "new_game_failed")
		return
	}
	if !s.save(w, r, g) {
		return
	}
	s.insertGameRow(w, r, g)
	writeJSON(w, g.State())
}

// insertGameRow persists the owner row (user_id or anonymous_id).
func (s *Server) insertGameRow(w http.ResponseWriter, r *http.Request, g *game.Game) {
	col, owner := s.owner(w, r)
	_, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, `+col+`, equation, target_moves, degraded, started_at, status, checks)
		 VALUES (?,?,?,?,?,?,?,0)`,
		g.ID, owner, g.Puzzle.Equation, g.Puzzle.TargetMoves, nullIfEmpty(g.Puzzle.Error),
		g.StartedAt.Format(time.RFC3339), string(game.StatusPlaying))
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g := s.loadGame(w, r, chi.URLParam(r, "id"))
	if g == nil {
		return
	}
	writeJSON(w, g.State())
}

// handleToggle flips one stick.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	g, req := s.decodeGame(w, r)
	if g == nil {
		return
	}
	view, err := g.Toggle(req.Cell, req.Stick)
	switch {
	case errors.Is(err, game.ErrFinished):
		writeErr(w, http.StatusConflict, "game_finished")
		return
	case errors.Is(err, board.ErrCellOutOfRange), errors.Is(err, board.ErrStickOutOfRange):
		writeErr(w, http.StatusBadRequest, "out_of_range")
		return
	case err != nil:
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.save(w, r, g) {
		return
	}
	writeJSON(w, view)
}

// handleCheck verifies the board, then persists counters and, on a win,
// stats and the daily result.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	g, _ := s.decodeGame(w, r)
	if g == nil {
		return
	}
	res, err := g.Check()
	if errors.Is(err, game.ErrFinished) {
		writeErr(w, http.StatusConflict, "game_finished")
		return
	}
	if !s.save(w, r, g) {
		return
	}
	s.recordCheck(w, r, g, res)
	writeJSON(w, res)
}

func (s *Server) recordCheck(w http.ResponseWriter, r *http.Request, g *game.Game, res game.CheckResult) {
	col, owner := s.owner(w, r)
	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET checks = checks + 1 WHERE id=? AND `+col+`=?`, g.ID, owner); err != nil {
		log.Warn().Err(err).Msg("update checks")
	}
	if res.Solved {
		s.finishRow(tx, g.ID, col, owner, game.StatusWon)
		if col == "user_id" {
			if err := bumpStats(tx, owner, true); err != nil {
				log.Warn().Err(err).Str("user", owner).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit check")
	}

	if res.Solved && g.Daily != "" {
		elapsed := int(g.Elapsed().Milliseconds())
		view := g.State()
		if err := s.daily.store.InsertResult(r.Context(), daily.Result{
			UserID: owner, Date: g.Daily, PuzzleIndex: g.DailyIndex, Checks: view.Checks, ElapsedMs: elapsed,
		}); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("insert daily result")
		}
	}
}

func (s *Server) finishRow(tx *sql.Tx, id, col, owner string, st game.Status) {
	if _, err := tx.Exec(`UPDATE games SET status=?, finished_at=? WHERE id=? AND `+col+`=?`,
		string(st), time.Now().UTC().Format(time.RFC3339), id, owner); err != nil {
		log.Warn().Err(err).Msg("finish game")
	}
}

// handleHint returns an AI hint, or the puzzle's own hint when degraded.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	g, _ := s.decodeGame(w, r)
	if g == nil {
		return
	}
	writeJSON(w, s.provider.Hint(r.Context(), g.Puzzle, g.Snapshot()))
}

type giveUpRes struct {
	State     game.Status       `json:"state"`
	Solution  *solver.Solution  `json:"solution"`
	Solutions []solver.Solution `json:"solutions"`
}

// handleGiveUp ends the game as lost and reveals a solution.
func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	g, _ := s.decodeGame(w, r)
	if g == nil {
		return
	}
	sols, err := g.GiveUp(r.Context())
	if errors.Is(err, game.ErrFinished) {
		writeErr(w, http.StatusConflict, "game_finished")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("solve on give up")
	}
	if !s.save(w, r, g) {
		return
	}

	col, owner := s.owner(w, r)
	if tx, err := s.db.BeginTx(r.Context(), nil); err == nil {
		s.finishRow(tx, g.ID, col, owner, game.StatusLost)
		if col == "user_id" {
			if err := bumpStats(tx, owner, false); err != nil {
				log.Warn().Err(err).Str("user", owner).Msg("bump stats")
			}
		}
		if err := tx.Commit(); err != nil {
			log.Warn().Err(err).Msg("commit give up")
		}
	}

	res := giveUpRes{State: game.StatusLost, Solutions: sols}
	if res.Solutions == nil {
		res.Solutions = []solver.Solution{}
	}
	if len(sols) > 0 {
		res.Solution = &sols[0]
	}
	writeJSON(w, res)
}

// owner returns the games column and value identifying the caller.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (col, id string) {
	if me := currentUser(r); me != nil {
		return "user_id", me.ID
	}
	return "anonymous_id", s.ensureAnonID(w, r)
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
