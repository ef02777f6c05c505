package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 5 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  2048,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

func tryBindParams(ctx *gin.Context, obj any) (ok bool) {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		respondBadFormat(ctx, err)
		return false
	}
	return true
}

func respondBadFormat(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusUnprocessableEntity, map[string]any{
		"error":   ErrBadFormat,
		"details": err.Error(),
	})
}
