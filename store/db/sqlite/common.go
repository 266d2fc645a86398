package sqlite

import (
	"encoding/json"
	"strings"
)

// placeholder returns a placeholder for SQLite (uses ?)
func placeholder(int) string {
	return "?"
}

func placeholders(n int) string {
	list := make([]string, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// SQLite has no array type; roles are stored as a JSON array in a TEXT column.
func marshalRole(role []string) (string, error) {
	if role == nil {
		role = []string{}
	}
	bytes, err := json.Marshal(role)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func unmarshalRole(raw string) ([]string, error) {
	role := []string{}
	if raw == "" {
		return role, nil
	}
	if err := json.Unmarshal([]byte(raw), &role); err != nil {
		return nil, err
	}
	return role, nil
}
