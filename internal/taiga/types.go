package taiga

import "time"

// authRequest is the POST /api/v1/auth payload for normal logins.
type authRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse carries the bearer token issued on login.
type authResponse struct {
	AuthToken string `json:"auth_token"`
}

// historyEntry is one entry of GET /api/v1/history/userstory/{id}.
// ValuesDiff.Status holds the [from, to] status names when the entry
// changed the story's status; other kinds of edits leave it empty.
type historyEntry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ValuesDiff struct {
		Status []string `json:"status"`
	} `json:"values_diff"`
}
