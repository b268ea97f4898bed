package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a config file syntax.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// File is a decoded keyflow configuration file.
type File struct {
	Settings Settings      `toml:"settings" yaml:"settings"`
	Log      LogSettings   `toml:"log" yaml:"log"`
	Maps     []MapSpec     `toml:"map" yaml:"map"`
	Commands []CommandSpec `toml:"command" yaml:"command"`
}

// Settings holds input timing and count options.
type Settings struct {
	// TimeoutMS is how long to wait for the next key of an ambiguous
	// mapping or command before flushing. Zero uses DefaultTimeout.
	TimeoutMS int `toml:"timeout_ms" yaml:"timeout_ms"`

	// CountModes lists the modes in which leading digits form a count.
	CountModes []string `toml:"count_modes" yaml:"count_modes"`
}

// DefaultTimeout matches Vim's default 'timeoutlen'.
const DefaultTimeout = time.Second

// Timeout returns the configured flush timeout.
func (s Settings) Timeout() time.Duration {
	if s.TimeoutMS <= 0 {
		return DefaultTimeout
	}
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// LogSettings configures logging output.
type LogSettings struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// MapSpec is one [[map]] entry.
type MapSpec struct {
	// Mode is a single mode name. Modes lists several. With neither, the
	// mapping applies to normal, visual, select and operator-pending, as
	// Vim's :map does.
	Mode  string   `toml:"mode" yaml:"mode"`
	Modes []string `toml:"modes" yaml:"modes"`

	LHS       string `toml:"lhs" yaml:"lhs"`
	RHS       string `toml:"rhs" yaml:"rhs"`
	Recursive bool   `toml:"recursive" yaml:"recursive"`
}

// CommandSpec is one [[command]] entry.
type CommandSpec struct {
	Keys     string `toml:"keys" yaml:"keys"`
	Name     string `toml:"name" yaml:"name"`
	Argument bool   `toml:"argument" yaml:"argument"`

	// Mode restricts the command to one mode's matcher. Empty means the
	// shared matcher.
	Mode string `toml:"mode" yaml:"mode"`

	// Script is an optional Lua handler body.
	Script string `toml:"script" yaml:"script"`
}

// Load reads and decodes the configuration file at path. The format is
// chosen by extension.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return Parse(path, format, data)
}

// Decode reads a configuration document from r.
func Decode(r io.Reader, format Format) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse("<reader>", format, data)
}

// Parse decodes data in the given format. Unknown keys are rejected so
// that typos surface as errors. source names the document in errors.
func Parse(source string, format Format, data []byte) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		if err := parseTOML(data, &f); err != nil {
			return nil, tomlParseError(source, err)
		}
	case FormatYAML:
		if err := parseYAML(data, &f); err != nil {
			return nil, yamlParseError(source, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &f, nil
}

func parseTOML(data []byte, f *File) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(f)
}

func parseYAML(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(f)
	if errors.Is(err, io.EOF) {
		// Empty document
		return nil
	}
	return err
}

func tomlParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var decErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decErr):
		pe.Line, pe.Column = decErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		first := strictErr.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = fmt.Sprintf("unknown field %q", strings.Join(first.Key(), "."))
	}
	return pe
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
