package v1

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	boarderrors "github.com/hrygo/personalboard/server/internal/errors"
)

const maxBodyBytes = 64 << 10

const submitHistorySchema = `{
  "type": "object",
  "properties": {
    "user_id": {"type": "string", "minLength": 1},
    "user_input": {"type": "string", "minLength": 1}
  },
  "required": ["user_id", "user_input"]
}`

const createMemberSchema = `{
  "type": "object",
  "properties": {
    "user_id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "background": {"type": "string"},
    "role": {"type": "array", "items": {"type": "string"}},
    "picture": {"type": ["string", "null"]}
  },
  "required": ["user_id", "name"]
}`

const updateMemberSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "background": {"type": "string"},
    "role": {"type": "array", "items": {"type": "string"}},
    "picture": {"type": "string"}
  },
  "minProperties": 1
}`

type requestSchemas struct {
	submitHistory *gojsonschema.Schema
	createMember  *gojsonschema.Schema
	updateMember  *gojsonschema.Schema
}

func newRequestSchemas() (*requestSchemas, error) {
	compile := func(name, raw string) (*gojsonschema.Schema, error) {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compile %s schema", name)
		}
		return schema, nil
	}

	submit, err := compile("submit history", submitHistorySchema)
	if err != nil {
		return nil, err
	}
	create, err := compile("create member", createMemberSchema)
	if err != nil {
		return nil, err
	}
	update, err := compile("update member", updateMemberSchema)
	if err != nil {
		return nil, err
	}
	return &requestSchemas{submitHistory: submit, createMember: create, updateMember: update}, nil
}

// decodeBody validates the request body against schema and decodes it into v.
func decodeBody(c echo.Context, schema *gojsonschema.Schema, v any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return boarderrors.ValidationFailed("failed to read request body")
	}
	if len(body) == 0 {
		return boarderrors.ValidationFailed("request body is required")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return boarderrors.ValidationFailed("request body is not valid JSON")
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return boarderrors.ValidationFailed(strings.Join(details, "; "))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return boarderrors.ValidationFailed("request body is not valid JSON")
	}
	return nil
}
