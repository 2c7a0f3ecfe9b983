package echoServer

import (
	"net/http"

	"github.com/sahilm2002/booze-and-books-sub001/app/echoServer/controller/auth"
	"github.com/sahilm2002/booze-and-books-sub001/app/echoServer/controller/book"
	"github.com/sahilm2002/booze-and-books-sub001/app/echoServer/controller/swap"
	"github.com/sahilm2002/booze-and-books-sub001/app/echoServer/jwtx"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Swap      *swap.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization",
	}))
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Books
	auth.GET("/books", c.Book.ListAvailable)
	auth.GET("/books/my", c.Book.MyBooks)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create)
	auth.POST("/books/:id/relist", c.Book.Relist)
	auth.POST("/books/:id/unlist", c.Book.Unlist)

	// Swaps
	auth.POST("/swaps", c.Swap.Create)
	auth.GET("/swaps/my", c.Swap.ListMine)
	auth.GET("/swaps/:id", c.Swap.Get)
	auth.POST("/swaps/:id/counter", c.Swap.CounterOffer)
	auth.POST("/swaps/:id/accept", c.Swap.Accept)
	auth.POST("/swaps/:id/cancel", c.Swap.Cancel)
	auth.POST("/swaps/:id/complete", c.Swap.Complete)
}
