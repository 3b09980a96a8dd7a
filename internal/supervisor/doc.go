// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

/*
Package supervisor runs the long-lived parts of the service under a suture v4
supervisor tree.

	RootSupervisor ("cropwise")
	├── DataSupervisor ("data-layer")
	│   └── EncoderGCService (when encoder extensions are persisted)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService (when events are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing service is restarted with backoff inside its own layer, so a NATS
outage stalls event forwarding without touching request serving. Supervisor
events are logged through sutureslog on the slog bridge to zerolog.
*/
package supervisor
