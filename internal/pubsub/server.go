// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pubsub

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wandsdn/helix/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades every incoming request to a websocket connection,
// registers it with broker as a Client, and blocks for its lifetime.
// Mount this as the control channel's HTTP endpoint.
func Handler(broker *Broker, log *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if log != nil {
				log.Warningf("pubsub: websocket upgrade failed: %v", err)
			}
			return
		}
		client := NewClient(uuid.NewString(), conn, broker, log)
		client.Run()
	}
}
