package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/tweaks.schema.json
var schemaBytes []byte

const schemaURL = "tweaks.schema.json"

// entryFields are the keys allowed inside a tweak entry, in manifest order.
var entryFields = []string{"value", "title", "group", "description", "hidden", "read_only"}

var (
	loadSchema = sync.OnceValues(compileSchema)
	printer    = message.NewPrinter(language.English)
)

// ValidationResult is the outcome of checking a manifest against the schema.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation. Issues under tweaks/<id> carry the
// tweak identifier and the offending field.
type ValidationIssue struct {
	Tweak   string // "" for document-level issues
	Field   string // e.g. "value"; "" when the whole entry is at fault
	Path    string // JSON pointer, e.g. "/tweaks/display_red_view/value"
	Message string
	Keyword string // failing schema keyword
}

func (i ValidationIssue) String() string {
	switch {
	case i.Tweak != "" && i.Field != "":
		return fmt.Sprintf("tweak %q: %s: %s", i.Tweak, i.Field, i.Message)
	case i.Tweak != "":
		return fmt.Sprintf("tweak %q: %s", i.Tweak, i.Message)
	case i.Path != "":
		return i.Path + ": " + i.Message
	}
	return i.Message
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("registering schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return s, nil
}

// Validate checks raw YAML or JSON manifest bytes against the tweaks schema.
// The error is for unreadable input or a broken schema; violations are
// reported in the result, ordered by tweak identifier.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	inst, err := decodeInstance(data)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	issues := collectIssues(ve, nil)
	if len(issues) == 0 {
		issues = []ValidationIssue{{Message: ve.Error()}}
	}
	return &ValidationResult{Issues: sortIssues(issues)}, nil
}

// ValidateFile reads path and validates it.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// decodeInstance parses YAML (a superset of JSON) and re-decodes it with the
// validator's JSON reader so numbers keep their exact representation.
func decodeInstance(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	encoded, err := json.Marshal(jsonCompatible(doc))
	if err != nil {
		return nil, fmt.Errorf("encoding manifest for validation: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
}

// jsonCompatible stringifies non-string map keys, which YAML allows and JSON
// does not (e.g. a tweak named 404).
func jsonCompatible(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = jsonCompatible(item)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return m
	case []any:
		for i, item := range v {
			v[i] = jsonCompatible(item)
		}
		return v
	}
	return v
}

// collectIssues flattens the error tree into one issue per failing keyword.
// Grouping keywords ($ref, allOf) only carry causes and add nothing.
func collectIssues(ve *jsonschema.ValidationError, out []ValidationIssue) []ValidationIssue {
	if pn, ok := ve.ErrorKind.(*kind.PropertyNames); ok {
		return append(out, ValidationIssue{
			Tweak:   pn.Property,
			Path:    "/tweaks/" + pn.Property,
			Keyword: "propertyNames",
			Message: "invalid identifier: use letters, digits, '_', '.' or '-', starting with a letter or digit",
		})
	}
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			out = collectIssues(cause, out)
		}
		return out
	}
	if ve.ErrorKind == nil {
		return out
	}
	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 || kw[len(kw)-1] == "$ref" || kw[len(kw)-1] == "allOf" {
		return out
	}
	return append(out, newIssue(ve.InstanceLocation, kw[len(kw)-1], ve.ErrorKind))
}

func newIssue(loc []string, keyword string, k jsonschema.ErrorKind) ValidationIssue {
	issue := ValidationIssue{Keyword: keyword}
	if len(loc) > 0 {
		issue.Path = "/" + strings.Join(loc, "/")
	}
	if len(loc) >= 2 && loc[0] == "tweaks" {
		issue.Tweak = loc[1]
		issue.Field = strings.Join(loc[2:], "/")
	}
	inEntry := issue.Tweak != "" && issue.Field == ""

	switch k := k.(type) {
	case *kind.Required:
		if inEntry {
			issue.Message = "missing " + strings.Join(k.Missing, ", ") + " (a tweak needs a boolean, number or string value)"
		} else {
			issue.Message = "missing top-level " + strings.Join(k.Missing, ", ")
		}
	case *kind.Type:
		if issue.Field == "value" {
			issue.Message = fmt.Sprintf("must be a boolean, number or string, got %s", k.Got)
		} else {
			issue.Message = fmt.Sprintf("must be %s, got %s", strings.Join(k.Want, " or "), k.Got)
		}
	case *kind.AdditionalProperties:
		if inEntry {
			issue.Message = fmt.Sprintf("unknown field %s (allowed: %s)",
				strings.Join(k.Properties, ", "), strings.Join(entryFields, ", "))
		} else {
			issue.Message = "unknown key " + strings.Join(k.Properties, ", ")
		}
	default:
		issue.Message = k.LocalizedString(printer)
	}
	return issue
}

// sortIssues drops duplicates and orders document-level issues first, then
// by tweak identifier and field.
func sortIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[ValidationIssue]bool, len(issues))
	out := issues[:0]
	for _, i := range issues {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Tweak != out[b].Tweak {
			return out[a].Tweak < out[b].Tweak
		}
		return out[a].Field < out[b].Field
	})
	return out
}
