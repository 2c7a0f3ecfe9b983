// Package main book swap API.
//
// @title           Booze & Books Swap API
// @version         1.0
// @description     Book swap service: catalog listings and the negotiated swap lifecycle.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sahilm2002/booze-and-books-sub001/app/echoServer"
	authctrl "github.com/sahilm2002/booze-and-books-sub001/app/echoServer/controller/auth"
	bookctrl "github.com/sahilm2002/booze-and-books-sub001/app/echoServer/controller/book"
	swapctrl "github.com/sahilm2002/booze-and-books-sub001/app/echoServer/controller/swap"
	"github.com/sahilm2002/booze-and-books-sub001/app/echoServer/validation"
	"github.com/sahilm2002/booze-and-books-sub001/config"
	"github.com/sahilm2002/booze-and-books-sub001/events"
	bookrepo "github.com/sahilm2002/booze-and-books-sub001/repository/book"
	swaprepo "github.com/sahilm2002/booze-and-books-sub001/repository/swap"
	userrepo "github.com/sahilm2002/booze-and-books-sub001/repository/user"
	authsvc "github.com/sahilm2002/booze-and-books-sub001/service/auth"
	booksvc "github.com/sahilm2002/booze-and-books-sub001/service/book"
	swapsvc "github.com/sahilm2002/booze-and-books-sub001/service/swap"
	"github.com/sahilm2002/booze-and-books-sub001/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	store := swaprepo.New(db)

	// services
	pub := events.NewLogPublisher(log)
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	ss := swapsvc.New(store, pub, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	swapC := &swapctrl.Controller{Svc: ss, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth: authC,
		Book: bookC,
		Swap: swapC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
