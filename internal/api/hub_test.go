package api

import (
	"testing"

	"github.com/aresgrid/ares-engine/pkg/models"
)

func TestDrainNewClients(t *testing.T) {
	h := NewHub()

	if ids := h.DrainNewClients(); len(ids) != 0 {
		t.Fatalf("fresh hub reported %d pending clients", len(ids))
	}

	h.newClients <- "a"
	h.newClients <- "b"

	ids := h.DrainNewClients()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("drained %v, want [a b]", ids)
	}

	if ids := h.DrainNewClients(); len(ids) != 0 {
		t.Fatalf("second drain returned %v", ids)
	}
}

func TestBroadcastDropsOnOverflow(t *testing.T) {
	h := NewHub()

	// nobody is draining outbound; fill it past capacity and make sure
	// the producer is never blocked
	for i := 0; i < cap(h.outbound)+10; i++ {
		h.Broadcast(models.Message{Type: models.TypeRobotMoved})
	}

	if len(h.outbound) != cap(h.outbound) {
		t.Fatalf("outbound holds %d frames, want full at %d", len(h.outbound), cap(h.outbound))
	}
}

func TestSendToTargetsClient(t *testing.T) {
	h := NewHub()

	h.SendTo("client-1", models.Message{Type: models.TypeInitializerData})

	msg := <-h.outbound
	if msg.ClientID != "client-1" {
		t.Fatalf("frame targeted %q, want client-1", msg.ClientID)
	}
}
