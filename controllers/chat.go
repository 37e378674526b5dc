package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"xportconnect/utils"
)

// Asker answers a free-text question.
type Asker interface {
	Enabled() bool
	Ask(ctx context.Context, message string) (string, error)
}

// ChatController proxies questions to the assistant
type ChatController struct {
	base
	chat Asker
}

// NewChatController creates a new ChatController
func NewChatController(chat Asker, rs utils.Responder, timeout time.Duration) *ChatController {
	return &ChatController{base: base{rs: rs, timeout: timeout}, chat: chat}
}

// Ask forwards the user's message and returns the assistant's reply
func (cc *ChatController) Ask(w http.ResponseWriter, r *http.Request) {
	if !cc.chat.Enabled() {
		cc.rs.Error(w, r, utils.NewError(utils.ErrUnavailable, "chat assistant is not configured"))
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := decode(w, r, &body); err != nil {
		cc.rs.Error(w, r, err)
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		cc.rs.Error(w, r, utils.NewError(utils.ErrValidation, "message is required"))
		return
	}

	ctx, cancel := cc.withTimeout(r)
	defer cancel()
	reply, err := cc.chat.Ask(ctx, body.Message)
	if err != nil {
		cc.rs.Error(w, r, err)
		return
	}
	cc.rs.JSON(w, http.StatusOK, "", map[string]string{"reply": reply})
}
