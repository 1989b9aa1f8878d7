// Package schema validates candidate articles and reports every violation
// with a JSON pointer to where it occurred.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"blogwriter/internal/config"
	"blogwriter/internal/domain"
)

//go:embed article.schema.json
var schemaJSON []byte

const schemaURL = "article.schema.json"

// Validator checks articles against the JSON schema, the metadata value
// rules and the structural node rules. All three run on every call.
//
// A Validator is read-only after construction and safe for concurrent use.
type Validator struct {
	schema   *jsonschema.Schema
	printer  *message.Printer
	maxDepth int
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse article schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add article schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile article schema: %w", err)
	}
	return &Validator{
		schema:   compiled,
		printer:  message.NewPrinter(language.English),
		maxDepth: config.MaxDocumentDepth,
	}, nil
}

var shared = sync.OnceValues(New)

// Validate checks candidate with the process-wide validator.
func Validate(candidate any) error {
	v, err := shared()
	if err != nil {
		return err
	}
	return v.Validate(candidate)
}

// ValidateJSON checks a raw JSON document with the process-wide validator.
func ValidateJSON(data []byte) error {
	return Validate(json.RawMessage(data))
}

// Validate returns nil or a *domain.ValidationError listing every
// violation. Raw JSON ([]byte, json.RawMessage) is parsed; any other value
// is checked as its JSON encoding. The candidate is never modified.
func (v *Validator) Validate(candidate any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = invalid([]domain.Violation{{
				Kind:    domain.ViolationType,
				Message: fmt.Sprintf("value cannot be inspected: %v", r),
			}})
		}
	}()

	inst, err := instance(candidate)
	if err != nil {
		return invalid([]domain.Violation{{Kind: domain.ViolationType, Message: err.Error()}})
	}

	var violations []domain.Violation
	if err := v.schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("schema validation: %w", err)
		}
		violations = v.collect(ve, violations)
	}
	violations = append(violations, metadataViolations(inst)...)
	violations = append(violations, structuralViolations(inst, v.maxDepth)...)

	if len(violations) == 0 {
		return nil
	}
	return invalid(violations)
}

func instance(candidate any) (any, error) {
	var data []byte
	switch c := candidate.(type) {
	case json.RawMessage:
		data = c
	case []byte:
		data = c
	default:
		b, err := json.Marshal(candidate)
		if err != nil {
			return nil, fmt.Errorf("value is not JSON encodable: %w", err)
		}
		data = b
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}
	return inst, nil
}

// collect flattens the schema error tree into leaf violations.
func (v *Validator) collect(ve *jsonschema.ValidationError, out []domain.Violation) []domain.Violation {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			out = v.collect(c, out)
		}
		return out
	}

	path := pointer(ve.InstanceLocation...)
	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			out = append(out, domain.Violation{
				Path:    path + "/" + escape(name),
				Kind:    domain.ViolationRequired,
				Message: fmt.Sprintf("missing required field %q", name),
			})
		}
		return out
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			out = append(out, domain.Violation{
				Path:    path + "/" + escape(name),
				Kind:    domain.ViolationExtraField,
				Message: fmt.Sprintf("unexpected field %q", name),
			})
		}
		return out
	}

	return append(out, domain.Violation{
		Path:    path,
		Kind:    keyword(ve.ErrorKind),
		Message: ve.ErrorKind.LocalizedString(v.printer),
	})
}

func keyword(k jsonschema.ErrorKind) string {
	kp := k.KeywordPath()
	if len(kp) == 0 {
		return domain.ViolationType
	}
	switch kw := kp[len(kp)-1]; kw {
	case "type":
		return domain.ViolationType
	case "enum", "const":
		return domain.ViolationEnum
	case "pattern":
		return domain.ViolationPattern
	case "format":
		return domain.ViolationFormat
	default:
		return kw
	}
}

func invalid(violations []domain.Violation) *domain.ValidationError {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
	unique := make([]domain.Violation, 0, len(violations))
	for _, vi := range violations {
		if n := len(unique); n > 0 && unique[n-1] == vi {
			continue
		}
		unique = append(unique, vi)
	}
	return &domain.ValidationError{
		Message:    fmt.Sprintf("article is invalid (%d violations)", len(unique)),
		Violations: unique,
	}
}

// pointer builds a JSON pointer from reference tokens.
func pointer(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(escape(t))
	}
	return b.String()
}

func escape(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

func index(path string, i int) string {
	return path + "/" + strconv.Itoa(i)
}
