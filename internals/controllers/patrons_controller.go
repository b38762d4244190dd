package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-lending/internals/models"
	"library-lending/internals/service"
)

type PatronRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required,min=10,max=16"`
	Address     string `json:"address" binding:"required,max=255"`
}

type PatronsController struct {
	patrons *service.PatronService
}

func NewPatronsController(patrons *service.PatronService) *PatronsController {
	return &PatronsController{patrons: patrons}
}

func (pc *PatronsController) Register(r gin.IRoutes) {
	r.GET("", pc.GetAllPatrons)
	r.GET("/:id", pc.GetPatronByID)
	r.POST("", pc.AddPatron)
	r.PUT("/:id", pc.UpdatePatron)
	r.DELETE("/:id", pc.DeletePatron)
}

func (pc *PatronsController) GetAllPatrons(c *gin.Context) {
	patrons, err := pc.patrons.GetAllPatrons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgGetAllPatronsOK)
	response.PatronList = toPatronDTOs(patrons)
	c.JSON(http.StatusOK, response)
}

func (pc *PatronsController) GetPatronByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	patron, err := pc.patrons.GetPatronByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgGetPatronOK)
	response.Patron = toPatronDTO(patron)
	c.JSON(http.StatusOK, response)
}

func (pc *PatronsController) AddPatron(c *gin.Context) {
	var req PatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	patron := models.Patron{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	if err := pc.patrons.AddPatron(c.Request.Context(), &patron); err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgPatronAddedOK)
	response.Patron = toPatronDTO(&patron)
	c.JSON(http.StatusOK, response)
}

func (pc *PatronsController) UpdatePatron(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req PatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	patron, err := pc.patrons.UpdatePatron(c.Request.Context(), id, service.PatronUpdate{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgPatronUpdatedOK)
	response.Patron = toPatronDTO(patron)
	c.JSON(http.StatusOK, response)
}

func (pc *PatronsController) DeletePatron(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := pc.patrons.DeletePatron(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse(MsgPatronDeletedOK))
}
