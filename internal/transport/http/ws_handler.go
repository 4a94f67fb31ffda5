package http

import (
	"net/http"

	"quiz-economy-service/internal/domain"
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeShopWS streams committed shop changes to the client. The first
// message is a snapshot of the current listings; every later message is a
// "listed" or "bought" event.
func (h *Handler) ServeShopWS(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the snapshot so no commit falls between the two.
	updates, cancel := h.exchange.Feed().Subscribe()
	defer cancel()

	listings, err := h.exchange.Listings(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "error", err)
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, open := <-updates:
				if !open {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "snapshot", Payload: nonNil(listings)}

	// The feed is one-way; reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func nonNil(listings []domain.ShopListing) []domain.ShopListing {
	if listings == nil {
		return []domain.ShopListing{}
	}
	return listings
}
