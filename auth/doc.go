// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and validates the bearer tokens that guard the sync trigger.

# Trigger Tokens

Tokens are HS256 JWTs signed with SYNC_TOKEN_SECRET and carry the scope
"leaderboard:sync":

	token, err := auth.IssueTriggerToken(secret, "cron", 0)
	claims, err := auth.NewTriggerValidator(secret).Validate(token)

A ttl of 0 issues a token without expiry, which suits a long-lived cron
credential; rotate the secret to revoke it. The server binary mints one with:

	club-leaderboard token -sync-secret ... [-subject cron] [-ttl 720h]

# Errors

  - ErrMissingToken: no token presented
  - ErrInvalidToken: bad signature, malformed, or non-HMAC algorithm
  - ErrExpiredToken: exp claim in the past
  - ErrWrongScope: valid token without the sync scope
*/
package auth
