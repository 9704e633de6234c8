package frontmatter

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/postmatter/internal/errors"
)

// Kind identifies the syntax of a header.
type Kind string

// Supported header kinds. KindNone is reported for content without a header.
const (
	KindNone Kind = ""
	KindYAML Kind = "yaml"
	KindTOML Kind = "toml"
)

// Sentinel errors.
var (
	// ErrMissingFrontmatter is returned by MustParse when no frontmatter is found.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnclosedFrontmatter indicates an opening delimiter without a matching close.
	ErrUnclosedFrontmatter = errors.New("missing closing frontmatter delimiter")

	// ErrInvalidFrontmatter indicates the header could not be decoded.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrUnknownKind indicates an unsupported header kind was requested.
	ErrUnknownKind = errors.New("unknown frontmatter kind")
)

// ParseKind maps a user supplied name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return KindYAML, nil
	case "toml":
		return KindTOML, nil
	default:
		return KindNone, errors.Wrapf(ErrUnknownKind, "%q", s)
	}
}

// Delimiter returns the line that opens and closes a header of kind k.
func (k Kind) Delimiter() string {
	switch k {
	case KindYAML:
		return "---"
	case KindTOML:
		return "+++"
	default:
		return ""
	}
}

func (k Kind) unmarshal(data []byte, v any) error {
	switch k {
	case KindYAML:
		return yaml.Unmarshal(data, v)
	case KindTOML:
		return toml.Unmarshal(data, v)
	default:
		return errors.Wrapf(ErrUnknownKind, "%q", string(k))
	}
}

func (k Kind) format() *frontmatter.Format {
	d := k.Delimiter()
	return frontmatter.NewFormat(d, d, k.unmarshal)
}

// bom is the UTF-8 byte order mark some editors put at the start of a file.
var bom = []byte("\uFEFF")

func kindOf(line string) Kind {
	switch strings.TrimRight(line, " \t\r") {
	case "---":
		return KindYAML
	case "+++":
		return KindTOML
	default:
		return KindNone
	}
}

// Split separates content into the raw header and body without decoding.
// Content without a header yields a nil header, the full content as body and
// KindNone.
func Split(content []byte) (header, body []byte, kind Kind, err error) {
	first, rest, ok := cutLine(bytes.TrimPrefix(content, bom))
	kind = kindOf(string(first))
	if kind == KindNone {
		return nil, content, KindNone, nil
	}
	if !ok {
		return nil, nil, kind, ErrUnclosedFrontmatter
	}

	delim := kind.Delimiter()
	offset := 0
	for offset <= len(rest) {
		line, next, more := cutLine(rest[offset:])
		if strings.TrimRight(string(line), " \t\r") == delim {
			header = rest[:offset]
			body = rest[offset+len(line):]
			if more {
				body = next
			}
			return header, body, kind, nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}

	return nil, nil, kind, ErrUnclosedFrontmatter
}

// cutLine returns the first line of b without its trailing newline and the
// remainder. ok reports whether a newline was found.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, false
}

// Parse extracts frontmatter and body content from a reader.
// If no frontmatter is present, matter is left untouched and the full content
// is returned as body.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but returns ErrMissingFrontmatter if no
// frontmatter is found.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading content")
	}

	header, body, kind, err := Split(content)
	if err != nil {
		return nil, err
	}
	if kind == KindNone {
		if required {
			return nil, ErrMissingFrontmatter
		}
		return content, nil
	}

	// The decoder sees a normalized LF copy of the header block only.
	var block bytes.Buffer
	block.WriteString(kind.Delimiter())
	block.WriteByte('\n')
	block.Write(bytes.ReplaceAll(header, []byte("\r\n"), []byte("\n")))
	block.WriteString(kind.Delimiter())
	block.WriteByte('\n')

	if _, err := frontmatter.Parse(&block, matter, kind.format()); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decoding %s header", kind), ErrInvalidFrontmatter)
	}

	return body, nil
}

// ParseHeader decodes only the frontmatter from the reader.
// It stops reading after the closing delimiter and returns the detected kind.
// Content without a header is a silent success with KindNone.
func ParseHeader(r io.Reader, matter any) (Kind, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return KindNone, scanner.Err()
	}
	kind := kindOf(strings.TrimPrefix(scanner.Text(), string(bom)))
	if kind == KindNone {
		return KindNone, nil
	}

	delim := kind.Delimiter()
	var buf bytes.Buffer
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimRight(line, " \t") == delim {
			if err := kind.unmarshal(buf.Bytes(), matter); err != nil {
				return kind, errors.Mark(errors.Wrapf(err, "decoding %s header", kind), ErrInvalidFrontmatter)
			}
			return kind, nil
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return kind, errors.Wrap(err, "reading header")
	}

	return kind, ErrUnclosedFrontmatter
}

// Encode serializes matter as a header of the given kind, without delimiters.
func Encode(kind Kind, matter any) ([]byte, error) {
	var buf bytes.Buffer
	switch kind {
	case KindYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(matter); err != nil {
			return nil, errors.Wrap(err, "encoding YAML header")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "encoding YAML header")
		}
	case KindTOML:
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(matter); err != nil {
			return nil, errors.Wrap(err, "encoding TOML header")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", string(kind))
	}
	return buf.Bytes(), nil
}

// Assemble wraps an already encoded header in the delimiters for kind and
// appends body. A blank line separates header and body unless body already
// starts with one.
func Assemble(kind Kind, header []byte, body string) ([]byte, error) {
	delim := kind.Delimiter()
	if delim == "" {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", string(kind))
	}

	var buf bytes.Buffer
	buf.WriteString(delim)
	buf.WriteByte('\n')
	buf.Write(header)
	if len(header) > 0 && header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(delim)
	buf.WriteByte('\n')

	if body != "" {
		if !strings.HasPrefix(body, "\n") && !strings.HasPrefix(body, "\r\n") {
			buf.WriteByte('\n')
		}
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes(), nil
}

// Newline returns the line ending used by the first line of content: "\r\n"
// or "\n".
func Newline(content []byte) string {
	if line, _, ok := cutLine(content); ok && bytes.HasSuffix(line, []byte("\r")) {
		return "\r\n"
	}
	return "\n"
}

// Replace wraps an encoded header in the delimiters for kind and appends body
// unchanged. Header lines are written with the given newline.
func Replace(kind Kind, header, body []byte, newline string) ([]byte, error) {
	delim := kind.Delimiter()
	if delim == "" {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", string(kind))
	}

	header = bytes.ReplaceAll(header, []byte("\r\n"), []byte("\n"))
	if len(header) > 0 && header[len(header)-1] != '\n' {
		header = append(header, '\n')
	}

	var buf bytes.Buffer
	buf.WriteString(delim)
	buf.WriteString(newline)
	buf.Write(bytes.ReplaceAll(header, []byte("\n"), []byte(newline)))
	buf.WriteString(delim)
	buf.WriteString(newline)
	buf.Write(body)
	return buf.Bytes(), nil
}

// Format formats content with YAML frontmatter.
func Format(matter any, body string) ([]byte, error) {
	return FormatAs(KindYAML, matter, body)
}

// FormatAs formats content with a header of the given kind.
func FormatAs(kind Kind, matter any, body string) ([]byte, error) {
	header, err := Encode(kind, matter)
	if err != nil {
		return nil, err
	}
	return Assemble(kind, header, body)
}
