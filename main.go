package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-lending/initializers"
	"library-lending/internals/cache"
	"library-lending/internals/controllers"
	"library-lending/internals/middleware"
	"library-lending/internals/repository"
	"library-lending/internals/service"
	logger "library-lending/loggers"
)

func main() {
	initializers.LoadEnvVariables()
	logger.Init()
	log := logger.Logger

	if err := initializers.ConnectDatabase(); err != nil {
		log.Fatal(err)
	}
	if err := initializers.SyncDatabase(); err != nil {
		log.Fatal(err)
	}
	if err := initializers.ConnectRedis(); err != nil {
		log.Fatal(err)
	}

	store := repository.NewGormStore(initializers.DB)
	resultCache := cache.NewRedisCache(initializers.Client, 10*time.Minute, log)

	lendingService := service.NewLendingService(store, resultCache, log)
	bookService := service.NewBookService(store, resultCache, log)
	patronService := service.NewPatronService(store, resultCache, log)

	tokens := middleware.NewTokenManager(
		initializers.Client,
		initializers.Getenv("ACCESS_SECRET", ""),
		initializers.Getenv("REFRESH_SECRET", ""),
		log,
	)
	auth := controllers.NewAuthController(store, tokens, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "welcome to library lending"})
	})
	r.POST("/signup", auth.SignUp)
	r.POST("/login", auth.Login)

	api := r.Group("/api")
	api.Use(tokens.Authenticate)

	controllers.NewBooksController(bookService).Register(api.Group("/books"))
	controllers.NewPatronsController(patronService).Register(api.Group("/patrons"))
	controllers.NewBorrowingsController(lendingService).Register(api.Group("/borrowings"))

	log.Info("library lending service starting")
	if err := r.Run(); err != nil {
		log.Fatal(err)
	}
}
