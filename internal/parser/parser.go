package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dannytech/default-server/internal/model"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Required entry fields, as emitted by the client-side log writer.
const (
	FieldMachineName = "MachineName"
	FieldMessage     = "Message"
	FieldTimeCreated = "TimeCreated"
)

// MalformedLogError means a log file is not valid UTF-16 JSON of the expected shape.
type MalformedLogError struct {
	Source string
	Reason string
	Err    error
}

func (e *MalformedLogError) Error() string {
	msg := fmt.Sprintf("malformed log %s: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedLogError) Unwrap() error { return e.Err }

// MissingFieldError means an entry lacks one of the required fields.
type MissingFieldError struct {
	Source string
	Index  int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("log %s entry %d: missing field %q", e.Source, e.Index, e.Field)
}

// utf16 honours a BOM when present and falls back to little-endian, which
// is what the Windows client writes.
var utf16 = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// DecodeFile reads and decodes the log file at path.
func DecodeFile(path string) ([]model.LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads UTF-16 JSON from r and normalizes it to a slice of entries.
// A root object yields one entry; a root array yields one entry per element.
// source only labels errors.
func Decode(r io.Reader, source string) ([]model.LogEntry, error) {
	raw, err := io.ReadAll(transform.NewReader(r, utf16.NewDecoder()))
	if err != nil {
		return nil, &MalformedLogError{Source: source, Reason: "not UTF-16 text", Err: err}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &MalformedLogError{Source: source, Reason: "empty file"}
	}

	var objects []map[string]json.RawMessage
	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, &MalformedLogError{Source: source, Reason: "invalid JSON object", Err: err}
		}
		objects = append(objects, obj)
	case '[':
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil, &MalformedLogError{Source: source, Reason: "invalid JSON array of objects", Err: err}
		}
	default:
		return nil, &MalformedLogError{Source: source, Reason: "root must be an object or an array"}
	}

	entries := make([]model.LogEntry, 0, len(objects))
	for i, obj := range objects {
		entry, err := toEntry(obj, source, i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toEntry(obj map[string]json.RawMessage, source string, index int) (model.LogEntry, error) {
	if obj == nil {
		return model.LogEntry{}, &MalformedLogError{Source: source, Reason: fmt.Sprintf("entry %d is null", index)}
	}

	var entry model.LogEntry
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{FieldMachineName, &entry.MachineName},
		{FieldMessage, &entry.Message},
	} {
		// A null value carries no text, so it counts as absent.
		v, ok := obj[f.name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return model.LogEntry{}, &MissingFieldError{Source: source, Index: index, Field: f.name}
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return model.LogEntry{}, &MalformedLogError{
				Source: source,
				Reason: fmt.Sprintf("entry %d field %q is not a string", index, f.name),
				Err:    err,
			}
		}
	}

	ts, ok := obj[FieldTimeCreated]
	if !ok {
		return model.LogEntry{}, &MissingFieldError{Source: source, Index: index, Field: FieldTimeCreated}
	}
	entry.TimeCreated = append(json.RawMessage(nil), ts...)

	return entry, nil
}
