package api

import (
	"log"
	"net/http"
)

// observe подключает наблюдателя: после успешного websocket-рукопожатия
// соединение регистрируется в хабе и получает все события об изменениях.
// Наблюдатель снимается с учета при первом сбое доставки или когда
// соединение закрывается с его стороны.
func (h *Handler) observe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		return
	}

	id := h.hub.Register(conn)

	// Входящих данных от наблюдателей не ждем; цикл чтения нужен только
	// чтобы заметить закрытие соединения и убрать его из реестра.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Unregister(id)
				return
			}
		}
	}()
}
