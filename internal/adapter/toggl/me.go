package toggl

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const mePath = "/api/v9/me"

// HasWorkspace fetches the authenticated user's profile and reports whether
// workspaceID is one of the user's workspaces. Transport failures are
// returned; an unrecognised profile shape or a missing workspace is false.
func (c *Client) HasWorkspace(ctx context.Context, workspaceID string) (bool, error) {
	raw, err := c.do(ctx, http.MethodGet, mePath, nil, nil)
	if err != nil {
		return false, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(workspaceID), 10, 64)
	if err != nil {
		c.log.Error("workspace id is not numeric", slog.String("workspace_id", workspaceID))
		return false, nil
	}
	profile := decodeProfile(raw)
	if profile != nil && profile.hasWorkspace(id) {
		return true, nil
	}
	c.log.Error("workspace not found in user's workspaces or profile format is unexpected",
		slog.String("workspace_id", workspaceID))
	return false, nil
}

// profile is one of the response shapes /me has had over time.
type profile interface {
	hasWorkspace(id int64) bool
}

// nestedProfile: {"me": {"workspaces": [{"id": 1}]}}
type nestedProfile struct {
	Workspaces []struct {
		ID int64 `json:"id"`
	} `json:"workspaces"`
}

func (p nestedProfile) hasWorkspace(id int64) bool {
	for _, ws := range p.Workspaces {
		if ws.ID == id {
			return true
		}
	}
	return false
}

// legacyProfile: [{"workspaces": [{"workspace_id": 1}]}], first user only.
type legacyProfile struct {
	Workspaces []struct {
		WorkspaceID int64 `json:"workspace_id"`
	} `json:"workspaces"`
}

func (p legacyProfile) hasWorkspace(id int64) bool {
	for _, ws := range p.Workspaces {
		if ws.WorkspaceID == id {
			return true
		}
	}
	return false
}

// flatProfile: {"default_workspace_id": 1}
type flatProfile struct {
	DefaultWorkspaceID *int64 `json:"default_workspace_id"`
}

func (p flatProfile) hasWorkspace(id int64) bool {
	return p.DefaultWorkspaceID != nil && *p.DefaultWorkspaceID == id
}

// decodeProfile tries the known shapes in order: nested "me" object, legacy
// list of users, flat object with a default workspace. It returns nil when
// none applies, including empty objects and lists.
func decodeProfile(raw json.RawMessage) profile {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
			return nil
		}
		if me, ok := obj["me"]; ok && isJSONObject(me) {
			var p nestedProfile
			if err := json.Unmarshal(me, &p); err != nil {
				return nil
			}
			return p
		}
		if _, ok := obj["default_workspace_id"]; ok {
			var p flatProfile
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil
			}
			return p
		}
	case '[':
		var users []json.RawMessage
		if err := json.Unmarshal(raw, &users); err != nil || len(users) == 0 {
			return nil
		}
		if !isJSONObject(users[0]) {
			return nil
		}
		var p legacyProfile
		if err := json.Unmarshal(users[0], &p); err != nil {
			return nil
		}
		return p
	}
	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
