// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sync Trigger Authorization

POST /leaderboard/sync requires a bearer token signed with SYNC_TOKEN_SECRET:

	mux.HandleFunc("POST /leaderboard/sync",
		middleware.WithLogging(middleware.RequireTrigger(validator, handler)))

Rejected requests get 401. The token subject is available to the handler
through TriggerSubject(r.Context()).

# CORS Middleware

Enable cross-origin requests for the club website:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type, Authorization.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadGateway, "message")

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
