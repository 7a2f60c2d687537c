package client

import (
	"strings"
)

// The backend's serialization casing is inconsistent across endpoints:
// some payloads are camelCase, some PascalCase, and auth responses may nest
// the real object under a wrapper key. Everything in this file reconciles
// that into one canonical shape with fixed precedence per field, so no view
// of the data ever does its own ad hoc fallback chains.

// tokenCandidateKeys in precedence order, camelCase before PascalCase.
var tokenCandidateKeys = []string{
	"token", "Token",
	"accessToken", "AccessToken", "access_token",
	"jwt", "Jwt", "jwtToken", "JwtToken", "jwt_token",
	"idToken", "IdToken",
}

// userWrapperKeys are checked in order before falling back to "data" or the
// payload itself.
var userWrapperKeys = []string{"user", "User", "profile", "Profile"}

// lookup returns the first present value among keys. Precedence is the key
// order given by the caller; absence is not an error.
func lookup(payload map[string]any, keys ...string) (any, bool) {
	if payload == nil {
		return nil, false
	}
	for _, key := range keys {
		if v, ok := payload[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// StringField resolves keys in order and returns "" when nothing matches.
func StringField(payload map[string]any, keys ...string) string {
	if v, ok := lookup(payload, keys...); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IntField resolves keys in order and returns 0 when nothing matches.
// JSON numbers arrive as float64.
func IntField(payload map[string]any, keys ...string) int64 {
	if v, ok := lookup(payload, keys...); ok {
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int:
			return int64(n)
		case int64:
			return n
		}
	}
	return 0
}

// BoolField resolves keys in order and returns false when nothing matches.
func BoolField(payload map[string]any, keys ...string) bool {
	if v, ok := lookup(payload, keys...); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// ExtractToken scans the payload and its known wrapper objects for a bearer
// token. Wrapper precedence: the payload itself, then data, user, User,
// profile, Profile. Returns "" when no candidate holds a non-blank string.
func ExtractToken(payload map[string]any) string {
	if payload == nil {
		return ""
	}

	sources := []any{payload, payload["data"], payload["user"], payload["User"], payload["profile"], payload["Profile"]}
	for _, source := range sources {
		obj, ok := source.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range tokenCandidateKeys {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// ExtractUserPayload unwraps the user object: a wrapper key wins, then
// "data", then the payload itself.
func ExtractUserPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}

	for _, key := range userWrapperKeys {
		if obj, ok := payload[key].(map[string]any); ok {
			return obj
		}
	}
	if obj, ok := payload["data"].(map[string]any); ok {
		return obj
	}
	return payload
}

// DeriveAdminFlag decides whether a user payload marks an administrator.
// A direct isAdmin/IsAdmin field wins: booleans are taken as-is, strings
// count only as "true" or "1" (trimmed, case-insensitive). With no direct
// flag, the roles field is consulted: a list or delimited string containing
// "admin" (case-insensitive). Everything else, including an absent field,
// is false.
func DeriveAdminFlag(payload map[string]any) bool {
	if direct, ok := lookup(payload, "isAdmin", "IsAdmin"); ok {
		switch v := direct.(type) {
		case bool:
			return v
		case string:
			normalized := strings.ToLower(strings.TrimSpace(v))
			return normalized == "true" || normalized == "1"
		case float64:
			return v != 0
		default:
			return false
		}
	}

	roles, ok := lookup(payload, "roles", "Roles", "role", "Role")
	if !ok {
		return false
	}
	switch v := roles.(type) {
	case []any:
		for _, role := range v {
			if s, ok := role.(string); ok && strings.EqualFold(s, "admin") {
				return true
			}
		}
	case string:
		for _, role := range strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			if strings.EqualFold(role, "admin") {
				return true
			}
		}
	}
	return false
}

// NormalizeUser returns a copy of the user payload with a canonical
// isAdmin flag stamped on.
func NormalizeUser(payload map[string]any) map[string]any {
	normalized := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		normalized[k] = v
	}
	normalized["isAdmin"] = DeriveAdminFlag(payload)
	return normalized
}

// Canonical accessors for submission file payloads. Precedence is always
// camelCase before PascalCase.

func FileID(file map[string]any) int64 {
	return IntField(file, "id", "Id", "ID")
}

func FileName(file map[string]any) string {
	return StringField(file, "fileName", "FileName")
}

func FileSize(file map[string]any) int64 {
	return IntField(file, "fileSize", "FileSize")
}

func FileContentType(file map[string]any) string {
	return strings.TrimSpace(StringField(file, "contentType", "ContentType"))
}

// CompletedTask is the canonical shape of a results-page entry.
type CompletedTask struct {
	ID                  int64
	TaskTitle           string
	TaskDescription     string
	EventName           string
	EventEndDate        string
	Notes               string
	SubmittedAt         string
	SubmittedByUsername string
	CreatedByUsername   string
	Files               []map[string]any
}

// NormalizeCompletedTask reconciles a completed-task payload regardless of
// which casing the endpoint used.
func NormalizeCompletedTask(payload map[string]any) CompletedTask {
	task := CompletedTask{
		ID:                  IntField(payload, "id", "Id", "ID"),
		TaskTitle:           StringField(payload, "taskTitle", "TaskTitle"),
		TaskDescription:     StringField(payload, "taskDescription", "TaskDescription"),
		EventName:           StringField(payload, "eventName", "EventName"),
		EventEndDate:        StringField(payload, "eventEndDate", "EventEndDate"),
		Notes:               StringField(payload, "notes", "Notes"),
		SubmittedAt:         StringField(payload, "submittedAt", "SubmittedAt"),
		SubmittedByUsername: StringField(payload, "submittedByUsername", "SubmittedByUsername"),
		CreatedByUsername:   StringField(payload, "createdByUsername", "CreatedByUsername"),
	}

	if raw, ok := lookup(payload, "files", "Files"); ok {
		if list, ok := raw.([]any); ok {
			for _, entry := range list {
				if file, ok := entry.(map[string]any); ok {
					task.Files = append(task.Files, file)
				}
			}
		}
	}
	return task
}
