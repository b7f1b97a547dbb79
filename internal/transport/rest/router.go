package rest

import (
	"net/http"
	"os"

	"podium/internal/service"
	"podium/internal/transport/rest/handler"
	"podium/internal/transport/rest/middleware"
	"podium/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	CommitteeService *service.CommitteeService
	DebateService    *service.DebateService
	SpeechService    *service.SpeechService
	MotionService    *service.MotionService
	DocumentService  *service.DocumentService
	PointService     *service.PointService
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	committeeHandler := handler.NewCommitteeHandler(c.CommitteeService)
	debateHandler := handler.NewDebateHandler(c.DebateService)
	speechHandler := handler.NewSpeechHandler(c.SpeechService)
	motionHandler := handler.NewMotionHandler(c.MotionService)
	documentHandler := handler.NewDocumentHandler(c.DocumentService)
	pointHandler := handler.NewPointHandler(c.PointService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/join", authHandler.Join).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws", wsHandler.CommitteeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Session routes (require a committee token; per-operation role
	// checks live in the services)
	session := v1.NewRoute().Subrouter()
	session.Use(authMW.Require)

	session.HandleFunc("/committee", committeeHandler.Snapshot).Methods("GET", "OPTIONS")
	session.HandleFunc("/committee", committeeHandler.UpdateInfo).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/committee/countries", committeeHandler.ListCountries).Methods("GET", "OPTIONS")
	session.HandleFunc("/committee/countries/own", committeeHandler.OwnCountry).Methods("GET", "OPTIONS")
	session.HandleFunc("/committee/countries/{countryId}/roll", committeeHandler.UpdateRoll).Methods("PUT", "OPTIONS")

	session.HandleFunc("/debate/mode", debateHandler.ChangeMode).Methods("PUT", "OPTIONS")
	session.HandleFunc("/debate/gsl", debateHandler.UpdateGsl).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/debate/gsl/list", debateHandler.AddListParticipant).Methods("POST", "OPTIONS")
	session.HandleFunc("/debate/gsl/list/{countryId}", debateHandler.RemoveListParticipant).Methods("DELETE", "OPTIONS")
	session.HandleFunc("/debate/gsl/next", debateHandler.NextSpeaker).Methods("POST", "OPTIONS")
	session.HandleFunc("/debate/yield", debateHandler.YieldTime).Methods("POST", "OPTIONS")
	session.HandleFunc("/debate/mod", debateHandler.UpdateMod).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/debate/mod/hands", debateHandler.RaiseHand).Methods("POST", "OPTIONS")
	session.HandleFunc("/debate/mod/hands/{countryId}", debateHandler.LowerHand).Methods("DELETE", "OPTIONS")
	session.HandleFunc("/debate/unmod", debateHandler.UpdateUnmod).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/debate/single", debateHandler.UpdateSingle).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/debate/speaker", debateHandler.SetSpeaker).Methods("PUT", "OPTIONS")
	session.HandleFunc("/debate/voting", debateHandler.UpdateVoting).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/debate/voting/votes", debateHandler.Vote).Methods("POST", "OPTIONS")
	session.HandleFunc("/debate/voting/votes", debateHandler.ClearVotes).Methods("DELETE", "OPTIONS")

	session.HandleFunc("/speeches", speechHandler.List).Methods("GET", "OPTIONS")
	session.HandleFunc("/speeches", speechHandler.Clear).Methods("DELETE", "OPTIONS")
	session.HandleFunc("/speeches/stats", speechHandler.Stats).Methods("GET", "OPTIONS")
	session.HandleFunc("/speeches/table", speechHandler.Table).Methods("GET", "OPTIONS")
	session.HandleFunc("/speeches/top", speechHandler.TopSpeakers).Methods("GET", "OPTIONS")
	session.HandleFunc("/speeches/{speechId}", speechHandler.Rate).Methods("PATCH", "OPTIONS")

	session.HandleFunc("/motions", motionHandler.Propose).Methods("POST", "OPTIONS")
	session.HandleFunc("/motions", motionHandler.List).Methods("GET", "OPTIONS")
	session.HandleFunc("/motions/{motionId}/accept", motionHandler.Accept).Methods("POST", "OPTIONS")
	session.HandleFunc("/motions/{motionId}/reject", motionHandler.Reject).Methods("POST", "OPTIONS")

	session.HandleFunc("/documents", documentHandler.Submit).Methods("POST", "OPTIONS")
	session.HandleFunc("/documents", documentHandler.List).Methods("GET", "OPTIONS")
	session.HandleFunc("/documents/{documentId}", documentHandler.Get).Methods("GET", "OPTIONS")
	session.HandleFunc("/documents/{documentId}", documentHandler.Update).Methods("PATCH", "OPTIONS")
	session.HandleFunc("/documents/{documentId}", documentHandler.Delete).Methods("DELETE", "OPTIONS")

	session.HandleFunc("/points", pointHandler.Raise).Methods("POST", "OPTIONS")
	session.HandleFunc("/points", pointHandler.List).Methods("GET", "OPTIONS")
	session.HandleFunc("/points/{pointId}", pointHandler.Resolve).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
