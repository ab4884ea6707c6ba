package tool

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/parser"
	"github.com/invopop/jsonschema"
)

const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

var toolNameRe = regexp.MustCompile(`^[A-Za-z][\w.\-]*$`)

type (
	Param struct {
		Name        string   `json:"name" yaml:"name"`
		Type        string   `json:"type" yaml:"type"`
		Description string   `json:"description" yaml:"description"`
		Required    bool     `json:"required" yaml:"required"`
		Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	}

	// Schema describes a tool to the model and to the dispatcher. Params keep
	// their declaration order.
	Schema struct {
		Name        string
		Description string
		Params      []Param
		Timeout     time.Duration
	}
)

func (s Schema) Validate() error {
	if !toolNameRe.MatchString(s.Name) {
		return errors.Wrapf(errors.ErrInvalidParams, "invalid tool name %q", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Params))
	for _, p := range s.Params {
		if p.Name == "" {
			return errors.Wrapf(errors.ErrInvalidParams, "tool %s has a parameter without name", s.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return errors.Wrapf(errors.ErrInvalidParams, "tool %s declares parameter %s twice", s.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if !knownType(p.Type) {
			return errors.Wrapf(errors.ErrInvalidParams, "tool %s parameter %s has unknown type %q", s.Name, p.Name, p.Type)
		}
	}
	return nil
}

func knownType(typ string) bool {
	switch typ {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeObject, TypeArray:
		return true
	}
	return false
}

func (s Schema) ParamNames() []string {
	names := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		names = append(names, p.Name)
	}
	return names
}

func (s Schema) Signature() parser.ToolSignature {
	return parser.ToolSignature{Name: s.Name, Params: s.ParamNames()}
}

// CapabilityLine renders the schema as one prompt line, optional params marked with '?':
//
//	- run_command(command, cwd?): Run a shell command.
func (s Schema) CapabilityLine() string {
	params := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Required {
			params = append(params, p.Name)
		} else {
			params = append(params, p.Name+"?")
		}
	}
	return fmt.Sprintf("- %s(%s): %s", s.Name, strings.Join(params, ", "), s.Description)
}

// ExtractArgs maps argument keys onto declared parameter names, accepting
// aliases and case variations, and checks required parameters are present.
// Keys that match no parameter are passed through untouched.
func (s Schema) ExtractArgs(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[s.canonical(k)] = v
	}

	var missing []string
	for _, p := range s.Params {
		if !p.Required {
			continue
		}
		if v, ok := out[p.Name]; !ok || v == nil {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingParamsError{Tool: s.Name, Params: missing}
	}

	return out, nil
}

type MissingParamsError struct {
	Tool   string
	Params []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("Missing required parameter %s for %s", strings.Join(e.Params, ", "), e.Tool)
}

func (e *MissingParamsError) Unwrap() error {
	return errors.ErrInvalidParams
}

func (s Schema) canonical(key string) string {
	for _, p := range s.Params {
		if p.Name == key {
			return key
		}
	}
	for _, p := range s.Params {
		if strings.EqualFold(p.Name, key) {
			return p.Name
		}
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, key) {
				return p.Name
			}
		}
	}
	return key
}

func (s Schema) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	required := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		props.Set(p.Name, &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		})
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:        TypeObject,
		Title:       s.Name,
		Description: s.Description,
		Properties:  props,
		Required:    required,
	}
}
