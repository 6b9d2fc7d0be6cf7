package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appproperty "github.com/rentflow/backend/internal/application/property"
	"github.com/rentflow/backend/internal/domain/property"
)

// PropertyUseCases is the owner-scoped property surface
type PropertyUseCases interface {
	Create(ctx context.Context, ownerID uuid.UUID, input appproperty.PropertyInput) (*property.Property, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*property.Property, error)
	Get(ctx context.Context, ownerID, propertyID uuid.UUID) (*property.Property, error)
	Update(ctx context.Context, ownerID, propertyID uuid.UUID, input appproperty.PropertyInput) (*property.Property, error)
	Delete(ctx context.Context, ownerID, propertyID uuid.UUID) error
	AddOwner(ctx context.Context, ownerID, propertyID uuid.UUID, email string) (*property.Property, error)
}

// PropertyHandler handles property endpoints
type PropertyHandler struct {
	BaseHandler
	service PropertyUseCases
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(service PropertyUseCases) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// PropertyRequest creates or updates a property
type PropertyRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Address string `json:"address" binding:"required,min=1,max=500"`
}

// AddOwnerRequest adds a co-owner by email
type AddOwnerRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ListProperties godoc
// @ID           listProperties
// @Summary      List properties
// @Description  List the properties the caller owns
// @Tags         properties
// @Produce      json
// @Success      200 {object} APIResponse[[]PropertyResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties [get]
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	props, err := h.service.List(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyResponses(props))
}

// CreateProperty godoc
// @ID           createProperty
// @Summary      Create property
// @Description  Create a property owned by the caller
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        request body PropertyRequest true "Property details"
// @Success      201 {object} APIResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	var req PropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), session.UserID, appproperty.PropertyInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPropertyResponse(p))
}

// GetProperty godoc
// @ID           getProperty
// @Summary      Get property
// @Tags         properties
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Success      200 {object} APIResponse[PropertyResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), session.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyResponse(p))
}

// UpdateProperty godoc
// @ID           updateProperty
// @Summary      Update property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        request body PropertyRequest true "Property details"
// @Success      200 {object} APIResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id} [put]
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), session.UserID, id, appproperty.PropertyInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyResponse(p))
}

// DeleteProperty godoc
// @ID           deleteProperty
// @Summary      Delete property
// @Description  Delete a property that no tenancy references
// @Tags         properties
// @Param        id path string true "Property ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddOwner godoc
// @ID           addPropertyOwner
// @Summary      Add co-owner
// @Description  Add an existing user as co-owner and grant them the owner role
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID" format(uuid)
// @Param        request body AddOwnerRequest true "Co-owner email"
// @Success      200 {object} APIResponse[PropertyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /properties/{id}/owners [post]
func (h *PropertyHandler) AddOwner(c *gin.Context) {
	session := h.session(c)
	if session == nil {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req AddOwnerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.service.AddOwner(c.Request.Context(), session.UserID, id, req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPropertyResponse(p))
}
