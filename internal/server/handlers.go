package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, snapshotToPayload(h.store.Snapshot()))
}

func (h *httpHandler) handleListLeads(c *gin.Context) {
	c.JSON(http.StatusOK, leadsToPayload(h.store.Leads()))
}

func (h *httpHandler) handleCreateLead(c *gin.Context) {
	var request newLeadPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.AddLead(c.Request.Context(), request.toInput())
	if err != nil {
		h.writeGatewayError(c, "leads.create", err)
		return
	}
	c.JSON(http.StatusCreated, leadToPayload(created))
}

func (h *httpHandler) handleUpdateLead(c *gin.Context) {
	var request leadPatchPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.store.UpdateLead(c.Request.Context(), c.Param("id"), request.toPatch())
	if err != nil {
		h.writeGatewayError(c, "leads.update", err)
		return
	}
	c.JSON(http.StatusOK, leadToPayload(updated))
}

func (h *httpHandler) handleDeleteLead(c *gin.Context) {
	deleted := h.store.DeleteLead(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *httpHandler) handleListManufacturers(c *gin.Context) {
	c.JSON(http.StatusOK, manufacturersToPayload(h.store.Manufacturers()))
}

func (h *httpHandler) handleCreateManufacturer(c *gin.Context) {
	var request newManufacturerPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.AddManufacturer(c.Request.Context(), request.toInput())
	if err != nil {
		h.writeGatewayError(c, "manufacturers.create", err)
		return
	}
	c.JSON(http.StatusCreated, manufacturerToPayload(created))
}

func (h *httpHandler) handleUpdateManufacturer(c *gin.Context) {
	var request manufacturerPatchPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.store.UpdateManufacturer(c.Request.Context(), c.Param("id"), request.toPatch())
	if err != nil {
		h.writeGatewayError(c, "manufacturers.update", err)
		return
	}
	c.JSON(http.StatusOK, manufacturerToPayload(updated))
}

func (h *httpHandler) handleDeleteManufacturer(c *gin.Context) {
	deleted := h.store.DeleteManufacturer(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *httpHandler) handleListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, ordersToPayload(h.store.Orders()))
}

func (h *httpHandler) handleCreateOrder(c *gin.Context) {
	var request newOrderPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.AddOrder(c.Request.Context(), request.toInput())
	if err != nil {
		h.writeGatewayError(c, "orders.create", err)
		return
	}
	c.JSON(http.StatusCreated, orderToPayload(created))
}

func (h *httpHandler) handleUpdateOrder(c *gin.Context) {
	var request orderPatchPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.store.UpdateOrder(c.Request.Context(), c.Param("id"), request.toPatch())
	if err != nil {
		h.writeGatewayError(c, "orders.update", err)
		return
	}
	c.JSON(http.StatusOK, orderToPayload(updated))
}

func (h *httpHandler) handleDeleteOrder(c *gin.Context) {
	deleted := h.store.DeleteOrder(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *httpHandler) handleListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, documentsToPayload(h.store.Documents()))
}

func (h *httpHandler) handleCreateDocument(c *gin.Context) {
	var request newDocumentPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.AddDocument(c.Request.Context(), request.toInput())
	if err != nil {
		h.writeGatewayError(c, "documents.create", err)
		return
	}
	c.JSON(http.StatusCreated, documentToPayload(created))
}

func (h *httpHandler) handleUpdateDocument(c *gin.Context) {
	var request documentPatchPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.store.UpdateDocument(c.Request.Context(), c.Param("id"), request.toPatch())
	if err != nil {
		h.writeGatewayError(c, "documents.update", err)
		return
	}
	c.JSON(http.StatusOK, documentToPayload(updated))
}

func (h *httpHandler) handleDeleteDocument(c *gin.Context) {
	deleted := h.store.DeleteDocument(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
