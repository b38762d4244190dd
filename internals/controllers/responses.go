package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"library-lending/internals/apperrors"
	"library-lending/internals/models"
	"library-lending/internals/service"
)

// Success message codes carried in the response envelope.
const (
	MsgGetAllBooksOK   = "GET_ALL_BOOK_SUCCESSFULLY"
	MsgGetBookOK       = "GET_BOOK_SUCCESSFULLY"
	MsgBookAddedOK     = "BOOK_ADDED_SUCCESSFULLY"
	MsgBookUpdatedOK   = "BOOK_UPDATED_SUCCESSFULLY"
	MsgBookDeletedOK   = "BOOK_DELETED_SUCCESSFULLY"
	MsgGetAllPatronsOK = "GET_ALL_PATRON_SUCCESSFULLY"
	MsgGetPatronOK     = "GET_PATRON_SUCCESSFULLY"
	MsgPatronAddedOK   = "PATRON_ADDED_SUCCESSFULLY"
	MsgPatronUpdatedOK = "PATRON_UPDATED_SUCCESSFULLY"
	MsgPatronDeletedOK = "PATRON_DELETED_SUCCESSFULLY"
	MsgBookBorrowedOK  = "BOOK_BORROWED_SUCCESSFULLY"
	MsgBookReturnedOK  = "BOOK_RETURNED_SUCCESSFULLY"
	MsgGetBorrowingOK  = "GET_BORROWING_RECORD_SUCCESSFULLY"
)

// APIResponse is the common success envelope.
type APIResponse struct {
	StatusCode        int              `json:"statusCode"`
	StatusDescription string           `json:"statusDescription"`
	SuccessMessage    string           `json:"successMessage,omitempty"`
	Book              *BookDTO         `json:"book,omitempty"`
	BookList          []BookDTO        `json:"bookList,omitempty"`
	Patron            *PatronDTO       `json:"patron,omitempty"`
	PatronList        []PatronDTO      `json:"patronList,omitempty"`
	BorrowingRecord   *BorrowingDTO    `json:"borrowingRecord,omitempty"`
}

// ErrorResponse is the failure envelope: the error kind plus a readable
// message, with the HTTP status repeated in the body.
type ErrorResponse struct {
	StatusCode   int    `json:"statusCode"`
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

type BookDTO struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Pages           int     `json:"pages"`
	Price           float64 `json:"price"`
	PublicationYear int     `json:"publication_year"`
	Available       bool    `json:"available"`
}

type PatronDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// BorrowingDTO is the denormalized borrowing view for API responses.
type BorrowingDTO struct {
	RecordID    uint   `json:"record_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	BorrowDate  string `json:"borrow_date"`
	ReturnDate  string `json:"return_date,omitempty"`
}

const dateLayout = "2006-01-02 15:04"

func toBookDTO(book *models.Book) *BookDTO {
	return &BookDTO{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Pages:           book.Pages,
		Price:           book.Price,
		PublicationYear: book.PublicationYear,
		Available:       book.Available,
	}
}

func toBookDTOs(books []models.Book) []BookDTO {
	dtos := make([]BookDTO, 0, len(books))
	for i := range books {
		dtos = append(dtos, *toBookDTO(&books[i]))
	}
	return dtos
}

func toPatronDTO(patron *models.Patron) *PatronDTO {
	return &PatronDTO{
		ID:          patron.ID,
		Name:        patron.Name,
		PhoneNumber: patron.PhoneNumber,
		Address:     patron.Address,
	}
}

func toPatronDTOs(patrons []models.Patron) []PatronDTO {
	dtos := make([]PatronDTO, 0, len(patrons))
	for i := range patrons {
		dtos = append(dtos, *toPatronDTO(&patrons[i]))
	}
	return dtos
}

func toBorrowingDTO(view *service.BorrowingView) *BorrowingDTO {
	dto := &BorrowingDTO{
		RecordID:    view.RecordID,
		Title:       view.Title,
		Author:      view.Author,
		Name:        view.Name,
		PhoneNumber: view.PhoneNumber,
		BorrowDate:  view.BorrowDate.Format(dateLayout),
	}
	if view.ReturnDate != nil {
		dto.ReturnDate = view.ReturnDate.Format(dateLayout)
	}
	return dto
}

func okResponse(message string) APIResponse {
	return APIResponse{
		StatusCode:        http.StatusOK,
		StatusDescription: http.StatusText(http.StatusOK),
		SuccessMessage:    message,
	}
}

// respondError translates a service error into the failure envelope using
// the taxonomy's status mapping.
func respondError(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)
	message := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, ErrorResponse{
		StatusCode:   status,
		Error:        string(apperrors.KindOf(err)),
		ErrorMessage: message,
	})
}

// respondValidation turns a binding failure into field-level messages.
// Validator errors are rewritten per field; anything else (malformed JSON,
// wrong value types) gets a generic message so internal type names never
// reach the client.
func respondValidation(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		respondError(c, apperrors.New(apperrors.KindValidationFailed,
			"request body could not be parsed"))
		return
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	respondError(c, apperrors.New(apperrors.KindValidationFailed,
		"%s", strings.Join(messages, "; ")))
}

// fieldMessage renders one validator failure using the field's JSON name.
func fieldMessage(fe validator.FieldError) string {
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// jsonFieldName converts a struct field name to its snake_case JSON name,
// e.g. PublicationYear -> publication_year.
func jsonFieldName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondError(c, apperrors.New(apperrors.KindValidationFailed,
			"%s must be a positive integer", name))
		return 0, false
	}
	return uint(id), true
}
