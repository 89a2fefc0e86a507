package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
)

type conversation struct {
	db     *gorm.DB
	seller *models.User
	buyer  *models.User
	order  *models.Order
}

func seedConversation(t *testing.T, db *gorm.DB) conversation {
	t.Helper()

	seller := seedUser(t, db, "clerk_seller", "seller@example.com")
	buyer := seedUser(t, db, "clerk_buyer", "buyer@example.com")
	service := seedService(t, db, seller, "Logo design", 100)
	order := seedOrder(t, db, buyer, service, true)
	return conversation{db: db, seller: seller, buyer: buyer, order: order}
}

func TestAddMessage(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	conv := seedConversation(t, db)

	resp := doJSON(t, app, http.MethodPost, "/api/messages/add-message/"+conv.order.ID.String(),
		authToken(t, "clerk_buyer"),
		map[string]string{
			"recipientId": conv.seller.ID.String(),
			"message":     "hello, a question about the order",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var message models.Message
	require.NoError(t, db.First(&message, "order_id = ?", conv.order.ID).Error)
	assert.Equal(t, conv.buyer.ID, message.SenderID)
	assert.Equal(t, conv.seller.ID, message.RecipientID)
	assert.False(t, message.IsRead)
}

func TestAddMessageAuthorization(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	conv := seedConversation(t, db)
	outsider := seedUser(t, db, "clerk_other", "other@example.com")

	// An outsider cannot write into the thread.
	resp := doJSON(t, app, http.MethodPost, "/api/messages/add-message/"+conv.order.ID.String(),
		authToken(t, "clerk_other"),
		map[string]string{
			"recipientId": conv.seller.ID.String(),
			"message":     "let me in",
		})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A party cannot address anyone but the other party.
	resp = doJSON(t, app, http.MethodPost, "/api/messages/add-message/"+conv.order.ID.String(),
		authToken(t, "clerk_buyer"),
		map[string]string{
			"recipientId": outsider.ID.String(),
			"message":     "wrong recipient",
		})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/messages/add-message/6b6f81f9-9e2f-4b52-9d9e-000000000000",
		authToken(t, "clerk_buyer"),
		map[string]string{
			"recipientId": conv.seller.ID.String(),
			"message":     "no such order",
		})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMessagesMarksRead(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	conv := seedConversation(t, db)

	for _, text := range []string{"first", "second"} {
		require.NoError(t, db.Create(&models.Message{
			SenderID:    conv.buyer.ID,
			RecipientID: conv.seller.ID,
			OrderID:     conv.order.ID,
			Text:        text,
		}).Error)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/messages/get-messages/"+conv.order.ID.String(),
		authToken(t, "clerk_seller"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	messages := data["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].(map[string]interface{})["text"])
	assert.Equal(t, conv.buyer.ID.String(), data["recipientId"])

	// Fetching the thread marks the caller's incoming messages read.
	var unread int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", conv.seller.ID, false).
		Count(&unread).Error)
	assert.Zero(t, unread)
}

func TestGetMessagesPartiesOnly(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	conv := seedConversation(t, db)
	seedUser(t, db, "clerk_other", "other@example.com")

	resp := doJSON(t, app, http.MethodGet, "/api/messages/get-messages/"+conv.order.ID.String(),
		authToken(t, "clerk_other"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetUnreadMessages(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	conv := seedConversation(t, db)

	require.NoError(t, db.Create(&models.Message{
		SenderID:    conv.buyer.ID,
		RecipientID: conv.seller.ID,
		OrderID:     conv.order.ID,
		Text:        "unread one",
	}).Error)
	require.NoError(t, db.Create(&models.Message{
		SenderID:    conv.buyer.ID,
		RecipientID: conv.seller.ID,
		OrderID:     conv.order.ID,
		Text:        "already read",
		IsRead:      true,
	}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/messages/unread-messages", authToken(t, "clerk_seller"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := decodeBody(t, resp)["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "unread one", items[0].(map[string]interface{})["text"])
}

func TestMarkAsReadRecipientOnly(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	conv := seedConversation(t, db)

	message := &models.Message{
		SenderID:    conv.buyer.ID,
		RecipientID: conv.seller.ID,
		OrderID:     conv.order.ID,
		Text:        "please read",
	}
	require.NoError(t, db.Create(message).Error)

	// The sender cannot mark their own message read.
	resp := doJSON(t, app, http.MethodPut, "/api/messages/mark-as-read/"+message.ID.String(),
		authToken(t, "clerk_buyer"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/messages/mark-as-read/"+message.ID.String(),
		authToken(t, "clerk_seller"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Message
	require.NoError(t, db.First(&updated, "id = ?", message.ID).Error)
	assert.True(t, updated.IsRead)
}
