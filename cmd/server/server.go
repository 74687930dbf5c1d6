// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/EscalationLeague/internal/api"
	"github.com/codr1/EscalationLeague/internal/api/armies"
	"github.com/codr1/EscalationLeague/internal/api/auth"
	"github.com/codr1/EscalationLeague/internal/api/leagues"
	"github.com/codr1/EscalationLeague/internal/api/matches"
	"github.com/codr1/EscalationLeague/internal/api/memberships"
	"github.com/codr1/EscalationLeague/internal/api/players"
	"github.com/codr1/EscalationLeague/internal/config"
)

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		auth.WithClerkSession,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	// Register routes
	registerRoutes(router)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.Handle("GET /auth/callback", auth.RequireClerkSession(http.HandlerFunc(auth.HandleClerkCallback)))
	mux.Handle("GET /api/v1/me", api.RequireUser(http.HandlerFunc(auth.HandleMe)))

	// League routes
	mux.HandleFunc("GET /api/v1/leagues", leagues.HandleLeaguesList)
	mux.HandleFunc("POST /api/v1/leagues", leagues.HandleLeagueCreate)
	mux.HandleFunc("GET /api/v1/leagues/{id}", leagues.HandleLeagueDetail)
	mux.HandleFunc("PUT /api/v1/leagues/{id}", leagues.HandleLeagueUpdate)
	mux.HandleFunc("DELETE /api/v1/leagues/{id}", leagues.HandleLeagueDelete)
	mux.HandleFunc("GET /api/v1/leagues/{id}/standings", leagues.HandleLeagueStandings)

	// Membership routes
	mux.HandleFunc("POST /api/v1/leagues/{id}/join", memberships.HandleJoin)
	mux.HandleFunc("POST /api/v1/leagues/{id}/leave", memberships.HandleLeave)
	mux.HandleFunc("GET /api/v1/leagues/{id}/members", memberships.HandleListMembers)
	mux.HandleFunc("POST /api/v1/leagues/{id}/transfer-ownership", memberships.HandleTransferOwnership)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/members/{user_id}/role", memberships.HandleUpdateRole)
	mux.HandleFunc("POST /leagues/{id}/join", memberships.HandleJoin)
	mux.HandleFunc("POST /leagues/{id}/leave", memberships.HandleLeave)

	// Player routes
	mux.HandleFunc("POST /api/v1/leagues/{id}/players", players.HandlePlayerCreate)
	mux.HandleFunc("GET /api/v1/leagues/{id}/players", players.HandlePlayersList)

	// Army list routes
	mux.HandleFunc("POST /api/v1/players/{player_id}/armies", armies.HandleArmyCreate)
	mux.HandleFunc("GET /api/v1/players/{player_id}/armies", armies.HandleArmiesList)
	mux.HandleFunc("PUT /api/v1/armies/{army_id}", armies.HandleArmyUpdate)

	// Match routes
	mux.HandleFunc("POST /api/v1/leagues/{id}/matches", matches.HandleMatchReport)
	mux.HandleFunc("GET /api/v1/leagues/{id}/matches", matches.HandleMatchesList)
}
