// Package inflight implementa la guarda de cancelación "gana la última
// petición emitida": cada tipo lógico de consulta (clave) tiene como máximo
// una petición en vuelo, y emitir una nueva cancela y supersede a la anterior
// sin importar en qué orden lleguen las respuestas.
package inflight

import (
	"context"
	"sync"
)

// Guard administra los contextos en vuelo por clave. Close equivale al
// desmontaje del componente: cancela todo y suprime cualquier commit posterior.
type Guard struct {
	mu     sync.Mutex
	closed bool
	slots  map[string]*slot
}

type slot struct {
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifica una petición emitida por Begin. Solo el ticket más
// reciente de su clave puede aplicar estado vía Commit.
type Ticket struct {
	g   *Guard
	key string
	seq uint64
}

// New construye la guarda.
func New() *Guard {
	return &Guard{slots: make(map[string]*slot)}
}

// Begin cancela la petición anterior de la clave (si existe) y devuelve un
// contexto hijo para la nueva, junto con su ticket. Si la guarda ya está
// cerrada, el contexto devuelto nace cancelado.
func (g *Guard) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	child, cancel := context.WithCancel(ctx)
	if g.closed {
		cancel()
		return child, &Ticket{g: g, key: key}
	}

	var next uint64
	if prev, ok := g.slots[key]; ok {
		prev.cancel()
		next = prev.seq + 1
	}
	g.slots[key] = &slot{seq: next, cancel: cancel}

	return child, &Ticket{g: g, key: key, seq: next}
}

// Commit ejecuta apply solo si el ticket sigue siendo el más reciente de su
// clave y la guarda no se cerró. Devuelve false si la actualización fue
// superseded o la guarda está cerrada; en ese caso apply no se ejecuta.
// apply corre bajo el mutex de la guarda: dos commits nunca se solapan y la
// sustitución de estado que hagan es atómica respecto a otros Begin/Commit.
func (t *Ticket) Commit(apply func()) bool {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()

	if t.g.closed {
		return false
	}
	s, ok := t.g.slots[t.key]
	if !ok || s.seq != t.seq {
		return false
	}
	apply()
	return true
}

// Cancel cancela la petición de la clave si este ticket sigue vigente.
func (t *Ticket) Cancel() {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if s, ok := t.g.slots[t.key]; ok && s.seq == t.seq {
		s.cancel()
	}
}

// Close cancela todas las peticiones en vuelo y suprime commits futuros.
// Idempotente.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for _, s := range g.slots {
		s.cancel()
	}
	g.slots = nil
}
