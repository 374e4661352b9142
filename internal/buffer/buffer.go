// Package buffer defines the text buffer the editor core talks to and a
// headless in-memory implementation of it.
package buffer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/justyntemme/cryptum/internal/classify"
)

// TextBuffer is the editing surface. Offsets count characters, not bytes.
type TextBuffer interface {
	SetText(text string)
	Text() string
	CursorOffset() int
	SetCursor(offset int)
	SetSyntax(id classify.SyntaxID)
	// OnCursorMoved registers fn to be called after every cursor change.
	OnCursorMoved(fn func(offset int))
}

// Memory is a TextBuffer without a widget behind it.
type Memory struct {
	mu        sync.Mutex
	text      string
	cursor    int
	syntax    classify.SyntaxID
	listeners []func(int)
}

var _ TextBuffer = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

// SetText replaces the content and moves the cursor to the start, like a
// freshly loaded document.
func (m *Memory) SetText(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	m.SetCursor(0)
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func (m *Memory) CursorOffset() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// SetCursor clamps offset to the content and notifies listeners.
func (m *Memory) SetCursor(offset int) {
	m.mu.Lock()
	n := utf8.RuneCountInString(m.text)
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	m.cursor = offset
	listeners := make([]func(int), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(offset)
	}
}

// Insert adds text at the cursor and leaves the cursor after it.
func (m *Memory) Insert(text string) {
	m.mu.Lock()
	at := byteOffset(m.text, m.cursor)
	m.text = m.text[:at] + text + m.text[at:]
	next := m.cursor + utf8.RuneCountInString(text)
	m.mu.Unlock()
	m.SetCursor(next)
}

func (m *Memory) SetSyntax(id classify.SyntaxID) {
	m.mu.Lock()
	m.syntax = id
	m.mu.Unlock()
}

// Syntax returns the grammar last set with SetSyntax.
func (m *Memory) Syntax() classify.SyntaxID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syntax
}

func (m *Memory) OnCursorMoved(fn func(offset int)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func byteOffset(s string, runes int) int {
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}

// Position converts a character offset into a zero-based line and column.
func Position(text string, offset int) (line, col int) {
	i := 0
	for _, r := range text {
		if i == offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		i++
	}
	return line, col
}

// CursorLabel formats the cursor position for the status bar.
func CursorLabel(b TextBuffer) string {
	line, col := Position(b.Text(), b.CursorOffset())
	return fmt.Sprintf("Ln %d, Col %d", line+1, col+1)
}

// Fingerprint identifies buffer content for dirty tracking.
func Fingerprint(text string) uint64 {
	return xxhash.Sum64String(text)
}
