package server

import (
	"net/http"

	"github.com/driftboard/listlink/internal/lists"
	"github.com/gin-gonic/gin"
)

type listPayload struct {
	ID               string `json:"id"`
	EditID           string `json:"edit_id,omitempty"`
	ViewID           string `json:"view_id"`
	Title            string `json:"title"`
	Permission       string `json:"permission"`
	CreatedAtSeconds int64  `json:"created_at_s"`
	UpdatedAtSeconds int64  `json:"updated_at_s"`
}

type itemPayload struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	Completed        bool   `json:"completed"`
	Order            int    `json:"order"`
	CreatedAtSeconds int64  `json:"created_at_s"`
	UpdatedAtSeconds int64  `json:"updated_at_s"`
}

// newListPayload serializes a list for the given permission. The edit
// identifier is included only for edit-capable callers: a view link must
// never escalate by revealing its sibling.
func newListPayload(list *lists.List, permission lists.Permission) listPayload {
	payload := listPayload{
		ID:               list.ID,
		Title:            list.Title,
		Permission:       permission.String(),
		CreatedAtSeconds: list.CreatedAt.Unix(),
		UpdatedAtSeconds: list.UpdatedAt.Unix(),
	}
	if list.ViewID != nil {
		payload.ViewID = *list.ViewID
	}
	if permission.AtLeast(lists.PermissionEdit) {
		payload.EditID = list.EditID
	}
	return payload
}

func newItemPayload(item *lists.Item) itemPayload {
	return itemPayload{
		ID:               item.ID,
		Text:             item.Text,
		Completed:        item.Completed,
		Order:            item.Position,
		CreatedAtSeconds: item.CreatedAt.Unix(),
		UpdatedAtSeconds: item.UpdatedAt.Unix(),
	}
}

type createListPayload struct {
	Title string `json:"title"`
}

func (h *httpHandler) handleCreateList(c *gin.Context) {
	identity := h.currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var request createListPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	title, err := lists.NewTitle(request.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	list, err := h.listService.CreateList(c.Request.Context(), identity.UserID, title)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"list": newListPayload(list, lists.PermissionOwner)})
}

func (h *httpHandler) handleOwnedLists(c *gin.Context) {
	identity := h.currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	owned, err := h.listService.ListsOwnedBy(c.Request.Context(), identity.UserID)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}

	payloads := make([]listPayload, 0, len(owned))
	for index := range owned {
		payloads = append(payloads, newListPayload(&owned[index], lists.PermissionOwner))
	}
	c.JSON(http.StatusOK, gin.H{"lists": payloads})
}

func (h *httpHandler) handleGetList(c *gin.Context) {
	access, ok := h.currentAccess(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	items, err := h.listService.ListItems(c.Request.Context(), access)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}

	itemPayloads := make([]itemPayload, 0, len(items))
	for index := range items {
		itemPayloads = append(itemPayloads, newItemPayload(&items[index]))
	}
	c.JSON(http.StatusOK, gin.H{
		"list":  newListPayload(access.List, access.Permission),
		"items": itemPayloads,
	})
}

type updateListTitlePayload struct {
	Title string `json:"title"`
}

func (h *httpHandler) handleUpdateListTitle(c *gin.Context) {
	access, ok := h.currentAccess(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	var request updateListTitlePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	title, err := lists.NewTitle(request.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	list, err := h.listService.UpdateTitle(c.Request.Context(), access, title)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": newListPayload(list, access.Permission)})
}

func (h *httpHandler) handleDeleteList(c *gin.Context) {
	access, ok := h.currentAccess(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := h.listService.DeleteList(c.Request.Context(), access); err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createItemPayload struct {
	Text string `json:"text"`
}

func (h *httpHandler) handleCreateItem(c *gin.Context) {
	access, ok := h.currentAccess(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	var request createItemPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	text, err := lists.NewItemText(request.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	item, err := h.listService.CreateItem(c.Request.Context(), access, text)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": newItemPayload(item)})
}

type updateItemPayload struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func (h *httpHandler) handleUpdateItem(c *gin.Context) {
	access, ok := h.currentAccess(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	var request updateItemPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	update := lists.ItemUpdate{Completed: request.Completed}
	if request.Text != nil {
		text, err := lists.NewItemText(*request.Text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		update.Text = &text
	}

	item, err := h.listService.UpdateItem(c.Request.Context(), access, c.Param("itemId"), update)
	if err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": newItemPayload(item)})
}

func (h *httpHandler) handleDeleteItem(c *gin.Context) {
	access, ok := h.currentAccess(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := h.listService.DeleteItem(c.Request.Context(), access, c.Param("itemId")); err != nil {
		h.abortWithListError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
