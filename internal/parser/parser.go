package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"textlens-backend/internal/shared/telemetry"
)

var (
	// ErrUnsupportedFormat means the file extension is not a recognized document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument means the format was recognized but the payload could not be decoded.
	ErrCorruptDocument = errors.New("corrupt document")
	// ErrParserUnavailable means the format is recognized but no extractor is registered for it.
	ErrParserUnavailable = errors.New("no parser available for format")
)

// parseFunc extracts plain UTF-8 text from raw document bytes.
type parseFunc func(data []byte) (string, error)

// Format describes one supported document format.
type Format struct {
	Extension   string `json:"extension"`
	MimeType    string `json:"mimeType"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// Parser routes raw uploads to the extractor for their declared format.
// Extraction discards non-textual structure but keeps paragraph boundaries
// as blank lines.
type Parser struct {
	formats map[string]Format
	parsers map[string]parseFunc
}

// New constructs a Parser with every built-in extractor registered.
func New() *Parser {
	p := &Parser{
		formats: make(map[string]Format),
		parsers: make(map[string]parseFunc),
	}

	p.register(".txt", "text/plain", "Plain text files", extractText)
	p.register(".md", "text/markdown", "Markdown files", extractMarkdown)
	p.register(".markdown", "text/markdown", "Markdown files", extractMarkdown)
	p.register(".html", "text/html", "HTML documents", extractHTML)
	p.register(".htm", "text/html", "HTML documents", extractHTML)
	p.register(".rtf", "application/rtf", "Rich Text Format", extractRTF)
	p.register(".pdf", "application/pdf", "PDF documents", extractPDF)
	p.register(".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "Microsoft Word documents (2007+)", extractDOCX)
	p.register(".odt", "application/vnd.oasis.opendocument.text", "OpenDocument Text", extractODT)

	// Legacy Word documents are recognized but have no extractor.
	p.register(".doc", "application/msword", "Legacy Microsoft Word documents", nil)

	available := make([]string, 0, len(p.parsers))
	for ext := range p.parsers {
		available = append(available, ext)
	}
	telemetry.Info("parser.init", map[string]any{"available_formats": len(available)})

	return p
}

func (p *Parser) register(ext, mimeType, description string, fn parseFunc) {
	p.formats[ext] = Format{
		Extension:   ext,
		MimeType:    mimeType,
		Description: description,
		Available:   fn != nil,
	}
	if fn != nil {
		p.parsers[ext] = fn
	}
}

// Parse extracts plain text from the raw bytes of the named document.
func (p *Parser) Parse(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	format, ok := p.formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	fn, ok := p.parsers[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", ErrParserUnavailable, ext, format.Description)
	}

	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", ext, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text content in %s", ErrCorruptDocument, ext)
	}
	return text, nil
}

// SupportedFormats reports every known format and whether an extractor is registered.
func (p *Parser) SupportedFormats() []Format {
	exts := make([]string, 0, len(p.formats))
	for ext := range p.formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	out := make([]Format, 0, len(exts))
	for _, ext := range exts {
		out = append(out, p.formats[ext])
	}
	return out
}

// CheckFormat reports whether fileName can be parsed, before any bytes are
// read. Unknown extensions and recognized formats without an extractor fail
// with different error classes.
func (p *Parser) CheckFormat(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	format, ok := p.formats[ext]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if !format.Available {
		return fmt.Errorf("%w: %s (%s)", ErrParserUnavailable, ext, format.Description)
	}
	return nil
}
