package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-lending/internals/service"
)

// BorrowingsController exposes the lending engine: borrow, return, and the
// denormalized record view.
type BorrowingsController struct {
	lending *service.LendingService
}

func NewBorrowingsController(lending *service.LendingService) *BorrowingsController {
	return &BorrowingsController{lending: lending}
}

func (bc *BorrowingsController) Register(r gin.IRoutes) {
	r.POST("/borrow/:bookId/patron/:patronId", bc.BorrowBook)
	r.PUT("/return/:bookId/patron/:patronId", bc.ReturnBook)
	r.GET("/:id", bc.GetBorrowingRecord)
}

func (bc *BorrowingsController) BorrowBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	patronID, ok := pathID(c, "patronId")
	if !ok {
		return
	}
	view, err := bc.lending.BorrowBook(c.Request.Context(), bookID, patronID)
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgBookBorrowedOK)
	response.BorrowingRecord = toBorrowingDTO(view)
	c.JSON(http.StatusOK, response)
}

func (bc *BorrowingsController) ReturnBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	patronID, ok := pathID(c, "patronId")
	if !ok {
		return
	}
	view, err := bc.lending.ReturnBook(c.Request.Context(), bookID, patronID)
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgBookReturnedOK)
	response.BorrowingRecord = toBorrowingDTO(view)
	c.JSON(http.StatusOK, response)
}

func (bc *BorrowingsController) GetBorrowingRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := bc.lending.GetBorrowingRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgGetBorrowingOK)
	response.BorrowingRecord = toBorrowingDTO(view)
	c.JSON(http.StatusOK, response)
}
