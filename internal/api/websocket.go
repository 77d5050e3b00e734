package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocket streams bus events over a websocket connection. The after_id
// query param is the resumption cursor, same semantics as the SSE stream.
func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ch := s.Bus.Subscribe(c.Request.Context(), parseCursor(c.Query("after_id")))
	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("ws write failed, dropping subscriber")
			return
		}
	}
}
