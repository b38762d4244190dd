package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-lending/internals/models"
	"library-lending/internals/service"
)

type BookRequest struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author"`
	Pages           int     `json:"pages" binding:"omitempty,gte=100"`
	Price           float64 `json:"price" binding:"omitempty,gt=0"`
	PublicationYear int     `json:"publication_year" binding:"omitempty,gte=1900,lte=2025"`
}

// BookUpdateRequest carries only the fields an update may change. Pages and
// price are fixed at creation and the availability flag belongs to the
// lending flow, so none of them appear here.
type BookUpdateRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year" binding:"omitempty,gte=1900,lte=2025"`
}

type BooksController struct {
	books *service.BookService
}

func NewBooksController(books *service.BookService) *BooksController {
	return &BooksController{books: books}
}

func (bc *BooksController) Register(r gin.IRoutes) {
	r.GET("", bc.GetAllBooks)
	r.GET("/:id", bc.GetBookByID)
	r.POST("", bc.AddBook)
	r.PUT("/:id", bc.UpdateBook)
	r.DELETE("/:id", bc.DeleteBook)
}

func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.books.GetAllBooks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgGetAllBooksOK)
	response.BookList = toBookDTOs(books)
	c.JSON(http.StatusOK, response)
}

func (bc *BooksController) GetBookByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	book, err := bc.books.GetBookByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgGetBookOK)
	response.Book = toBookDTO(book)
	c.JSON(http.StatusOK, response)
}

func (bc *BooksController) AddBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	book := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Pages:           req.Pages,
		Price:           req.Price,
		PublicationYear: req.PublicationYear,
	}
	if err := bc.books.AddBook(c.Request.Context(), &book); err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgBookAddedOK)
	response.Book = toBookDTO(&book)
	c.JSON(http.StatusOK, response)
}

func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	book, err := bc.books.UpdateBook(c.Request.Context(), id, service.BookUpdate{
		Title:           req.Title,
		Author:          req.Author,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response := okResponse(MsgBookUpdatedOK)
	response.Book = toBookDTO(book)
	c.JSON(http.StatusOK, response)
}

func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := bc.books.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse(MsgBookDeletedOK))
}
