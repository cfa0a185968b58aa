// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msg implements the engine message bus: an ordered sink for
// info/warning/error/fatal/debug events that the host drains by polling
package msg

import "sync"

// Kind classifies a message
type Kind int

// message kinds
const (
	Info Kind = iota
	Warning
	Error
	Fatal
	Debug
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	case Debug:
		return "debug"
	}
	return "unknown"
}

// Message is one bus entry
type Message struct {
	Text string // message body
	Kind Kind   // message kind
	Tag  string // optional tag for grouping/deduplication by the host
}

// Handler is a FIFO message queue with per-kind counters. Appends may come
// from any goroutine; the queue serializes them.
type Handler struct {
	mu       sync.Mutex
	queue    []Message
	counters [Debug + 1]int
}

// NewHandler returns an empty message handler
func NewHandler() *Handler {
	return new(Handler)
}

// Add appends one message
func (o *Handler) Add(kind Kind, text, tag string) {
	o.mu.Lock()
	o.queue = append(o.queue, Message{Text: text, Kind: kind, Tag: tag})
	o.counters[kind]++
	o.mu.Unlock()
}

// AddInfo appends an info message
func (o *Handler) AddInfo(text string) { o.Add(Info, text, "") }

// AddWarning appends a warning message
func (o *Handler) AddWarning(text string) { o.Add(Warning, text, "") }

// AddError appends an error message
func (o *Handler) AddError(text string) { o.Add(Error, text, "") }

// AddFatal appends a fatal message
func (o *Handler) AddFatal(text string) { o.Add(Fatal, text, "") }

// AddDebug appends a debug message
func (o *Handler) AddDebug(text string) { o.Add(Debug, text, "") }

// GetMessage pops the oldest message; ok is false when the queue is empty
func (o *Handler) GetMessage() (m Message, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return
	}
	m = o.queue[0]
	o.queue = o.queue[1:]
	return m, true
}

// CheckMessages returns the number of waiting messages
func (o *Handler) CheckMessages() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Count returns how many messages of one kind have been added since the
// last Clear, including already consumed ones
func (o *Handler) Count(kind Kind) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counters[kind]
}

// NumInfos returns the info counter
func (o *Handler) NumInfos() int { return o.Count(Info) }

// NumWarnings returns the warning counter
func (o *Handler) NumWarnings() int { return o.Count(Warning) }

// NumErrors returns the error counter
func (o *Handler) NumErrors() int { return o.Count(Error) }

// NumFatals returns the fatal counter
func (o *Handler) NumFatals() int { return o.Count(Fatal) }

// NumDebugs returns the debug counter
func (o *Handler) NumDebugs() int { return o.Count(Debug) }

// Clear drops all waiting messages and resets the counters
func (o *Handler) Clear() {
	o.mu.Lock()
	o.queue = nil
	for i := range o.counters {
		o.counters[i] = 0
	}
	o.mu.Unlock()
}
