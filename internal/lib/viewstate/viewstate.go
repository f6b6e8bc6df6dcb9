// Package viewstate хранит состояние открытого представления по правилу
// «побеждает последний завершившийся ответ».
//
// Результаты сетевых запросов применяются в порядке завершения, а не в порядке
// отправки. После закрытия представления опоздавшие результаты отбрасываются.
package viewstate

import (
	"sync"
	"time"
)

// View: состояние одного списка в открытом представлении.
type View[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	updated time.Time
	closed  bool
	changed chan struct{}
	now     func() time.Time
}

// New создаёт пустое открытое представление.
func New[T any]() *View[T] {
	return &View[T]{
		changed: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Apply записывает завершившийся результат. Возвращает false, если
// представление уже закрыто и результат отброшен.
func (v *View[T]) Apply(value T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	v.value = value
	v.version++
	v.updated = v.now()
	select {
	case v.changed <- struct{}{}:
	default:
	}
	return true
}

// Snapshot возвращает текущее значение и номер версии.
// Версия 0 означает, что ни один результат ещё не применён.
func (v *View[T]) Snapshot() (T, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.version
}

// Updated возвращает время последнего применённого результата.
func (v *View[T]) Updated() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updated
}

// Changed сигналит после каждого Apply. Несколько Apply подряд
// схлопываются в один сигнал.
func (v *View[T]) Changed() <-chan struct{} {
	return v.changed
}

// Close закрывает представление. Повторный вызов безопасен.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// Closed сообщает, закрыто ли представление.
func (v *View[T]) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
