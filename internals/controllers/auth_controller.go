package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"library-lending/internals/middleware"
	"library-lending/internals/models"
	"library-lending/internals/repository"
)

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthController handles librarian signup and login. Successful login sets
// the access/refresh token cookies used by the auth middleware.
type AuthController struct {
	store  repository.Store
	tokens *middleware.TokenManager
	log    *logrus.Logger
}

func NewAuthController(store repository.Store, tokens *middleware.TokenManager, log *logrus.Logger) *AuthController {
	return &AuthController{store: store, tokens: tokens, log: log}
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		ac.log.WithError(err).Error("failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	librarian := models.Librarian{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}
	if err := ac.store.Librarians().Create(c.Request.Context(), &librarian); err != nil {
		ac.log.WithError(err).WithField("email", req.Email).Error("librarian creation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "librarian creation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "librarian created"})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	librarian, err := ac.store.Librarians().FindByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		ac.log.WithError(err).Error("librarian lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(librarian.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := ac.tokens.GenerateTokensAndSaveInCookies(c, librarian.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful"})
}
