// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadDotEnv reads an optional .env file, then ParseFlags returns a Config:

	_ = cliparse.LoadDotEnv(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

Variables already present in the environment win over the .env file.

# CLI Flags and Environment Variables

	-p                     PORT                     Server port (default 3318)
	-d                     DATABASE_URL             Database URL (required)
	-t                     DATABASE_TYPE            sqlite (default) or postgres
	-judge-url             JUDGE_BASE_URL           Judge base URL (default https://vjudge.net)
	-judge-cookie          JUDGE_SESSION_COOKIE     Cookie header sent to the judge
	-judge-cookie-expires  JUDGE_COOKIE_EXPIRES_AT  RFC3339 expiry of that cookie
	-judge-timeout         JUDGE_TIMEOUT            Per-request timeout (default 15s)
	-sync-secret           SYNC_TOKEN_SECRET        HMAC secret for trigger tokens (required)
	-sync-interval         SYNC_INTERVAL            In-process schedule, 0 disables
	-redis                 REDIS_ADDR               Redis sync lock (in-process lock if empty)
	-kafka-brokers         KAFKA_BROKERS            Comma separated brokers (events off if empty)
	-kafka-topic           KAFKA_TOPIC              Event topic (default leaderboard.updated)

CLI flags take precedence over environment variables.

# Token Subcommand

ParseTokenFlags reads the flags of "club-leaderboard token":

	-sync-secret  SYNC_TOKEN_SECRET  Secret the server validates with (required)
	-sub          -                  Subject recorded in sync logs (default cron)
	-ttl          -                  Lifetime, 0 for a token that never expires

# Validation

ParseFlags returns an error if DATABASE_URL or SYNC_TOKEN_SECRET is missing,
or if a duration, expiry or database type cannot be parsed.
*/
package cliparse
