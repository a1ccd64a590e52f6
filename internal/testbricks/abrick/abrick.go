// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package abrick is a complete brick: an entry type, a configured component
// and an event with a listener.
package abrick

import (
	"github.com/holomush/bricks/pkg/brick"
)

func init() {
	brick.Register[ABrick]()
	brick.Register[AService](
		brick.Component(brick.ConfigFile("a_service.yaml")),
		brick.Constructor(NewAService),
		brick.Listener("OnAnEvent"),
	)
	brick.Register[AnEvent](brick.Event())
}

// ABrick is the entry type.
type ABrick struct {
	brick.Base
}

// Init runs once AService is active.
func (b *ABrick) Init(s *AService) {
	s.Counter++
}

// AService is configured from a_service.yaml.
type AService struct {
	config  brick.Config
	Counter int
}

// NewAService creates the service.
func NewAService(cfg brick.Config) *AService {
	return &AService{config: cfg}
}

// GetConfig returns the parsed config file.
func (s *AService) GetConfig() brick.Config {
	return s.config
}

// OnAnEvent answers every AnEvent with 42.
func (s *AService) OnAnEvent(ev *AnEvent) {
	ev.Value = 42
	s.Counter++
}

// AnEvent carries a value listeners may rewrite.
type AnEvent struct {
	Value int
}

// Greeting is a plain type that is not declared to the catalog.
type Greeting string
