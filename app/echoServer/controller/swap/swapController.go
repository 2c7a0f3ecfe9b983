package swap

import (
	"log/slog"
	"net/http"
	"strconv"

	swapsvc "github.com/sahilm2002/booze-and-books-sub001/service/swap"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc swapsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/swaps
// @Summary      Create swap request
// @Description  Request a book, optionally offering one of your own
// @Tags         swaps
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateSwapReq  true  "Create payload"
// @Success      201  {object}  model.SwapRequest
// @Router       /v1/swaps [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateSwapReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Create(c.Request().Context(), uid, req.BookID, req.OfferedBookID, req.Message)
	if err != nil {
		return h.fail(c, "swap create", err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/swaps/:id/counter
func (h *Controller) CounterOffer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CounterOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.CounterOffer(c.Request().Context(), id, uid, req.CounterBookID, req.Message)
	if err != nil {
		return h.fail(c, "swap counter-offer", err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /v1/swaps/:id/accept
func (h *Controller) Accept(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Accept(c.Request().Context(), id, uid)
	if err != nil {
		return h.fail(c, "swap accept", err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /v1/swaps/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return h.fail(c, "swap cancel", err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /v1/swaps/:id/complete
func (h *Controller) Complete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CompleteSwapReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Complete(c.Request().Context(), id, uid, req.Rating, req.Feedback)
	if err != nil {
		return h.fail(c, "swap complete", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/swaps/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return h.fail(c, "swap get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/swaps/my
func (h *Controller) ListMine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("swap list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch swapsvc.Code(err) {
	case swapsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case swapsvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case swapsvc.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case swapsvc.ErrInvalidTransition, swapsvc.ErrConflict, swapsvc.ErrOwnershipMismatch:
		// Stale view of the negotiation. The client should reload the
		// swap and reconsider; nothing was changed.
		return c.JSON(http.StatusConflict, echo.Map{
			"message": err.Error(),
			"code":    string(swapsvc.Code(err)),
		})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
