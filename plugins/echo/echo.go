// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package echo is a small brick that answers Say events.
//
// Echoer reads its reply prefix from echo.yaml in the host's config
// directory and only activates when that file exists. Transcript records
// every reply it sees.
package echo

import (
	"fmt"
	"slices"
	"sync"

	"github.com/holomush/bricks/pkg/brick"
)

func init() {
	brick.Register[Echo]()
	brick.Register[Echoer](
		brick.Component(brick.ConfigFile("echo.yaml")),
		brick.Constructor(NewEchoer),
		brick.Listener("OnSay"),
	)
	brick.Register[Transcript](
		brick.Component(),
		brick.Constructor(NewTranscript),
		brick.Listener("OnSay"),
	)
	brick.Register[Say](brick.Event())
}

// DefaultPrefix is used when echo.yaml sets no prefix.
const DefaultPrefix = "echo: "

// Echo is the entry type.
type Echo struct {
	brick.Base
}

// Init announces the configured prefix in the transcript.
func (*Echo) Init(e *Echoer, t *Transcript) {
	t.record(fmt.Sprintf("ready (prefix %q)", e.prefix))
}

// Echoer replies to Say events.
type Echoer struct {
	prefix string
}

// NewEchoer creates an Echoer from echo.yaml.
func NewEchoer(cfg brick.Config) *Echoer {
	prefix, ok := cfg["prefix"].(string)
	if !ok {
		prefix = DefaultPrefix
	}
	return &Echoer{prefix: prefix}
}

// OnSay sets the reply.
func (e *Echoer) OnSay(s *Say) {
	s.Reply = e.prefix + s.Text
}

// Transcript keeps the replies of every Say event.
type Transcript struct {
	mu    sync.Mutex
	lines []string
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// OnSay records the reply. It runs after Echoer.OnSay.
func (t *Transcript) OnSay(s *Say) {
	t.record(s.Reply)
}

// Lines returns the recorded lines.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.lines)
}

func (t *Transcript) record(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
}

// Say is said by someone and answered by Echoer.
type Say struct {
	Text  string
	Reply string
}
