package server

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/catalog"
	"github.com/frontdeskhq/frontdesk/internal/conversation"
	"github.com/frontdeskhq/frontdesk/internal/models"
	"github.com/gin-gonic/gin"
)

func okJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func errJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// handleAdminLogin checks the configured credential pair and issues a
// session cookie.
func handleAdminLogin(d Deps) gin.HandlerFunc {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid request body")
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(d.Admin.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(d.Admin.Password)) == 1
		if !userOK || !passOK {
			errJSON(c, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := d.Sessions.Create()
		if err != nil {
			log.Printf("server: login: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		ttlSeconds := d.Admin.SessionTTLMinutes * 60
		c.SetCookie(SessionCookie, token, ttlSeconds, "/", "", false, true)
		okJSON(c, gin.H{"logged_in": true})
	}
}

// handleAdminLogout destroys the current session.
func handleAdminLogout(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil {
			d.Sessions.Destroy(token)
		}
		c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
		okJSON(c, gin.H{"logged_in": false})
	}
}

func handleConversationList(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		rows, err := ConversationList(d.DB, limit, offset)
		if err != nil {
			log.Printf("server: conversation list: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		okJSON(c, rows)
	}
}

// conversationJSON is the wire shape of a conversation with its messages.
type conversationJSON struct {
	ID           string        `json:"id"`
	CustomerName string        `json:"customer_name"`
	Channel      string        `json:"channel"`
	Status       string        `json:"status"`
	Mood         string        `json:"mood"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Messages     []messageJSON `json:"messages"`
}

func handleConversationDetail(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := lookupConversation(c, d)
		if !ok {
			return
		}

		history, err := d.Store.History(conv.ID)
		if err != nil {
			log.Printf("server: conversation detail: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}

		out := conversationJSON{
			ID:           conv.ID,
			CustomerName: conv.CustomerName,
			Channel:      conv.Channel,
			Status:       conv.Status,
			Mood:         conv.Mood,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			Messages:     make([]messageJSON, len(history)),
		}
		for i, m := range history {
			out.Messages[i] = messageJSON{
				ID:             m.ID,
				ConversationID: m.ConversationID,
				Role:           m.Role,
				Body:           m.Body,
				CreatedAt:      m.CreatedAt,
			}
		}
		okJSON(c, out)
	}
}

func handleConversationKill(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		setConversationStatus(c, d, d.Store.Kill, models.ConversationKilled)
	}
}

func handleConversationReactivate(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		setConversationStatus(c, d, d.Store.Reactivate, models.ConversationActive)
	}
}

func setConversationStatus(c *gin.Context, d Deps, flip func(string) error, status string) {
	id := c.Param("id")
	if !conversation.ValidID(id) {
		errJSON(c, http.StatusBadRequest, "invalid conversation id")
		return
	}
	if err := flip(id); err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			errJSON(c, http.StatusNotFound, "conversation not found")
			return
		}
		log.Printf("server: set status: %v", err)
		errJSON(c, http.StatusInternalServerError, "internal error")
		return
	}
	okJSON(c, gin.H{"id": id, "status": status})
}

// moodEntryJSON is the wire shape of one mood log row.
type moodEntryJSON struct {
	Mood      string    `json:"mood"`
	MessageID string    `json:"message_id"`
	CreatedAt time.Time `json:"created_at"`
}

func handleMoodHistory(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := lookupConversation(c, d)
		if !ok {
			return
		}

		entries, err := d.Store.MoodHistory(conv.ID)
		if err != nil {
			log.Printf("server: mood history: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]moodEntryJSON, len(entries))
		for i, e := range entries {
			out[i] = moodEntryJSON{Mood: e.Mood, MessageID: e.MessageID, CreatedAt: e.CreatedAt}
		}
		okJSON(c, out)
	}
}

func handleMoodTrend(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := lookupConversation(c, d)
		if !ok {
			return
		}

		entries, err := d.Store.MoodHistory(conv.ID)
		if err != nil {
			log.Printf("server: mood trend: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		trend := ConversationTrend(entries)
		okJSON(c, gin.H{
			"improving": trend.Improving,
			"declining": trend.Declining,
			"stable":    trend.Stable,
		})
	}
}

func handleSummary(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := lookupConversation(c, d)
		if !ok {
			return
		}

		latest, err := d.Store.LatestSummary(conv.ID)
		if err != nil {
			log.Printf("server: summary: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if latest == nil {
			okJSON(c, nil)
			return
		}
		okJSON(c, gin.H{"body": latest.Body, "created_at": latest.CreatedAt})
	}
}

func handleStats(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := GlobalStats(d.DB)
		if err != nil {
			log.Printf("server: stats: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		okJSON(c, stats)
	}
}

// lookupConversation resolves the :id path param, writing the error response
// itself when the conversation cannot be served.
func lookupConversation(c *gin.Context, d Deps) (*models.Conversation, bool) {
	id := c.Param("id")
	if !conversation.ValidID(id) {
		errJSON(c, http.StatusBadRequest, "invalid conversation id")
		return nil, false
	}
	conv, err := d.Store.Get(id)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			errJSON(c, http.StatusNotFound, "conversation not found")
			return nil, false
		}
		log.Printf("server: get conversation: %v", err)
		errJSON(c, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return conv, true
}

// productJSON is the wire shape of a catalog product.
type productJSON struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

func toProductJSON(p *models.Product) productJSON {
	return productJSON{ID: p.ID, Name: p.Name, Price: p.Price, Description: p.Description}
}

func handleProductList(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.List(d.DB)
		if err != nil {
			log.Printf("server: product list: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]productJSON, len(products))
		for i := range products {
			out[i] = toProductJSON(&products[i])
		}
		okJSON(c, out)
	}
}

func handleProductCreate(d Deps) gin.HandlerFunc {
	type request struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := catalog.Create(d.DB, catalog.CreateOpts{
			Name:        req.Name,
			Price:       req.Price,
			Description: req.Description,
		})
		if err != nil {
			errJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		okJSON(c, toProductJSON(p))
	}
}

func handleProductUpdate(d Deps) gin.HandlerFunc {
	type request struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
	}

	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			errJSON(c, http.StatusBadRequest, "invalid product id")
			return
		}
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := catalog.Update(d.DB, uint(id), catalog.UpdateOpts{
			Name:        req.Name,
			Price:       req.Price,
			Description: req.Description,
		})
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				errJSON(c, http.StatusNotFound, "product not found")
				return
			}
			errJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		okJSON(c, toProductJSON(p))
	}
}

func handleProductDelete(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			errJSON(c, http.StatusBadRequest, "invalid product id")
			return
		}
		if err := catalog.Delete(d.DB, uint(id)); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				errJSON(c, http.StatusNotFound, "product not found")
				return
			}
			log.Printf("server: product delete: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		okJSON(c, gin.H{"deleted": true})
	}
}
