// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is a blocking message router. Satisfied by *events.Bus.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventRouterService runs the event router until the supervisor stops it.
//
// A watermill router cannot be started twice, so an early exit is reported
// with suture.ErrDoNotRestart instead of looping through restarts.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router, name: "event-router"}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return fmt.Errorf("event router stopped: %w: %w", err, suture.ErrDoNotRestart)
}

func (s *EventRouterService) String() string {
	return s.name
}
