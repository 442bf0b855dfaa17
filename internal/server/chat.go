package server

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/conversation"
	"github.com/frontdeskhq/frontdesk/internal/orchestrator"
	"github.com/gin-gonic/gin"
)

// closedConversationMessage is part of the public API contract: clients
// detect a killed conversation by this string.
const closedConversationMessage = "This conversation has been closed and cannot accept new messages."

// messageJSON is the wire shape of a stored message.
type messageJSON struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// handleChatNew starts a conversation from an HTML form post and redirects
// the visitor into it.
func handleChatNew(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		text := c.PostForm("message")

		res, err := d.Turns.StartConversation(c.Request.Context(), text)
		if err != nil {
			if errors.Is(err, orchestrator.ErrMessageTooShort) || errors.Is(err, orchestrator.ErrEmptyMessage) {
				c.Redirect(http.StatusSeeOther, "/chat/new?error="+url.QueryEscape("message too short"))
				return
			}
			log.Printf("server: new chat: %v", err)
			c.Redirect(http.StatusSeeOther, "/chat/new?error="+url.QueryEscape("something went wrong"))
			return
		}
		c.Redirect(http.StatusSeeOther, "/chat/view/"+res.ConversationID)
	}
}

// handleChatSend runs one JSON chat turn, creating the conversation when no
// ID is supplied.
func handleChatSend(d Deps) gin.HandlerFunc {
	type request struct {
		ConversationID string `json:"conversation_id"`
		Message        string `json:"message"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.ConversationID != "" && !conversation.ValidID(req.ConversationID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
			return
		}

		res, err := d.Turns.Converse(c.Request.Context(), req.ConversationID, req.Message)
		if err != nil {
			switch {
			case errors.Is(err, orchestrator.ErrEmptyMessage):
				c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			case errors.Is(err, orchestrator.ErrConversationNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			case errors.Is(err, orchestrator.ErrConversationClosed):
				c.JSON(http.StatusConflict, gin.H{
					"error":   "conversation_closed",
					"message": closedConversationMessage,
				})
			default:
				log.Printf("server: chat turn: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Sent",
			"data": gin.H{
				"id":              res.UserMessageID,
				"conversation_id": res.ConversationID,
				"reply":           res.Reply,
			},
		})
	}
}

// handleChatHistory returns a conversation's messages, oldest first.
func handleChatHistory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("conversationID")
		if !conversation.ValidID(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
			return
		}
		if _, err := d.Store.Get(id); err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
				return
			}
			log.Printf("server: chat history: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		history, err := d.Store.History(id)
		if err != nil {
			log.Printf("server: chat history: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		out := make([]messageJSON, len(history))
		for i, m := range history {
			out[i] = messageJSON{
				ID:             m.ID,
				ConversationID: m.ConversationID,
				Role:           m.Role,
				Body:           m.Body,
				CreatedAt:      m.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": out})
	}
}
