// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts Markdown source text into HTML using goldmark,
// and provides the image-interpolation step used by the public post-detail
// endpoint: attached images are redistributed between paragraphs by
// position before rendering.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks, task lists
		extension.Typographer, // Smart quotes and dashes
		highlighting.NewHighlighting( // Syntax highlighting for fenced code blocks
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // Auto-generate heading IDs for anchors
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // Allow raw HTML blocks for backward compat with existing HTML content
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ImageRef is an image to interpolate into rendered content.
type ImageRef struct {
	URL string
	Alt string
}

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// InterleaveImages splits Markdown source into blank-line-separated
// paragraphs and redistributes the given images between them by position:
// with p paragraphs and n images, image i is placed after paragraph
// (i+1)*max(1, p/(n+1)), and images past the last paragraph are appended
// at the end. Returns new Markdown source with image blocks inserted.
func InterleaveImages(source string, images []ImageRef) string {
	if len(images) == 0 {
		return source
	}

	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	var paragraphs []string
	for _, p := range paragraphBreak.Split(normalized, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	blocks := make([]string, len(images))
	for i, img := range images {
		blocks[i] = fmt.Sprintf("![%s](%s)", img.Alt, img.URL)
	}

	if len(paragraphs) == 0 {
		return strings.Join(blocks, "\n\n")
	}

	step := len(paragraphs) / (len(images) + 1)
	if step < 1 {
		step = 1
	}

	// after[j] collects the image blocks inserted after paragraph j (1-based).
	after := make(map[int][]string)
	for i, block := range blocks {
		pos := (i + 1) * step
		if pos > len(paragraphs) {
			pos = len(paragraphs)
		}
		after[pos] = append(after[pos], block)
	}

	var out []string
	for j, p := range paragraphs {
		out = append(out, p)
		out = append(out, after[j+1]...)
	}
	return strings.Join(out, "\n\n")
}

// RenderWithImages interpolates the images into the source and renders the
// result to HTML.
func RenderWithImages(source string, images []ImageRef) (string, error) {
	return ToHTML(InterleaveImages(source, images))
}
