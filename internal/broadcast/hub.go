// Package broadcast рассылает события об изменениях всем подключённым
// наблюдателям. Доставка best-effort: сбой записи отключает только
// этого наблюдателя и никогда не влияет на вызвавшую мутацию.
package broadcast

import (
	"log"
	"sync"

	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/google/uuid"
)

const eventBufferSize = 256

// Conn — дуплексное соединение наблюдателя. *websocket.Conn из
// gorilla/websocket удовлетворяет этому интерфейсу.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub хранит реестр подключённых наблюдателей и раздает им события
// из фоновой горутины, чтобы публикация никогда не блокировала запрос.
type Hub struct {
	mu        sync.Mutex
	observers map[string]Conn

	events chan domain.Event
	done   chan struct{}
	once   sync.Once
}

// NewHub создает хаб и запускает цикл рассылки.
func NewHub() *Hub {
	h := &Hub{
		observers: make(map[string]Conn),
		events:    make(chan domain.Event, eventBufferSize),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Register добавляет наблюдателя после успешного рукопожатия
// и возвращает его идентификатор для последующего Unregister.
func (h *Hub) Register(conn Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.observers[id] = conn
	h.mu.Unlock()
	return id
}

// Unregister удаляет наблюдателя. Повторный вызов — no-op.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	conn, ok := h.observers[id]
	if ok {
		delete(h.observers, id)
	}
	h.mu.Unlock()

	if ok {
		conn.Close()
	}
}

// ObserverCount возвращает число подключённых наблюдателей.
func (h *Hub) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Publish ставит событие в очередь рассылки, не блокируя вызывающего.
// При переполненной очереди событие теряется — доставка best-effort.
func (h *Hub) Publish(ev domain.Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	default:
		log.Printf("broadcast: event queue full, dropping %s for %s", ev.Type, ev.EntityID)
	}
}

// Close останавливает цикл рассылки и закрывает все соединения.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.done)

		h.mu.Lock()
		for id, conn := range h.observers {
			conn.Close()
			delete(h.observers, id)
		}
		h.mu.Unlock()
	})
}

func (h *Hub) run() {
	for {
		select {
		case ev := <-h.events:
			h.fanOut(ev)
		case <-h.done:
			return
		}
	}
}

// fanOut отправляет событие каждому наблюдателю. Сбой записи молча
// снимает с учета только отказавшего наблюдателя.
func (h *Hub) fanOut(ev domain.Event) {
	h.mu.Lock()
	conns := make(map[string]Conn, len(h.observers))
	for id, c := range h.observers {
		conns[id] = c
	}
	h.mu.Unlock()

	for id, conn := range conns {
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("broadcast: dropping observer %s: %v", id, err)
			h.Unregister(id)
		}
	}
}
