package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GabrielG71/online-chat/logger"
	midsec "github.com/GabrielG71/online-chat/middleware/security"
	"github.com/GabrielG71/online-chat/module/chat/model"
)

// Handler exposes the message and typing HTTP routes.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type sendReq struct {
	Content    string `json:"content"`
	ReceiverID string `json:"receiverId"`
}

type typingReq struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

// PostMessage handles POST /api/messages.
func (h *Handler) PostMessage(c *gin.Context) {
	senderID := midsec.UserID(c)

	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), senderID, req.ReceiverID, req.Content)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, msg)
	case err == ErrEmptyContent || err == ErrEmptyReceiver:
		c.JSON(http.StatusBadRequest, gin.H{"error": "content and receiverId are required"})
	default:
		logger.Errorf("[messages] send failed sender=%s err=%v", senderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GetMessages handles GET /api/messages?userId=<other>.
func (h *Handler) GetMessages(c *gin.Context) {
	userID := midsec.UserID(c)
	otherID := c.Query("userId")
	if otherID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	msgs, err := h.svc.History(c.Request.Context(), userID, otherID)
	if err != nil {
		logger.Errorf("[messages] history failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// PostTyping handles POST /api/typing.
func (h *Handler) PostTyping(c *gin.Context) {
	senderID := midsec.UserID(c)

	var req typingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.svc.Typing(senderID, req.ReceiverID, req.IsTyping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiverId is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
