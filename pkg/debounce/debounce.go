// Package debounce implementa un debouncer de flanco posterior: el valor se
// emite solo cuando ha permanecido sin cambios durante el retraso configurado.
package debounce

import (
	"sync"
	"time"
)

// Debouncer retrasa la propagación de un valor que cambia rápidamente.
// Cada Set cancela la emisión pendiente y reinicia el temporizador; solo el
// valor más reciente sobrevive (no hay cola). Close libera el temporizador y
// suprime cualquier emisión pendiente.
type Debouncer[T any] struct {
	mu     sync.Mutex
	delay  time.Duration
	emit   func(T)
	timer  *time.Timer
	seq    uint64
	closed bool
}

// New construye un debouncer que llama a emit con el último valor recibido
// una vez transcurrido delay sin nuevos cambios. emit se invoca desde la
// goroutine del temporizador.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, emit: emit}
}

// Set programa la emisión de v. Si había una emisión pendiente, se descarta.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// Solo emite la programación más reciente y nunca tras Close.
		stale := d.closed || seq != d.seq
		d.mu.Unlock()
		if !stale {
			d.emit(v)
		}
	})
}

// Flush emite v de inmediato, descartando cualquier emisión pendiente.
// Útil cuando el usuario confirma explícitamente (p. ej. Enter).
func (d *Debouncer[T]) Flush(v T) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.mu.Unlock()
	d.emit(v)
}

// Close detiene el temporizador y suprime emisiones futuras. Idempotente.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
