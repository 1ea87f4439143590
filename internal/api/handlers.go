package api

import (
	"errors"
	"net/http"
	"strconv"

	"vending-machine/internal/change"
	"vending-machine/internal/service"
	"vending-machine/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgChangeUnavailable = "Unable to provide exact change. Please use exact amount or smaller bills."
	defaultSalesLimit    = 50
	maxSalesLimit        = 500
)

type Handlers struct {
	AuthService    service.AuthService
	MachineService service.MachineService
	Logger         pkg.Logger
	CurrencySymbol string
}

func (h *Handlers) PostApiAuth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}

	token, err := h.AuthService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Errors: "Invalid credentials"})
			return
		}
		h.Logger.Error("failed to authenticate", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

func (h *Handlers) GetApiProducts(c *gin.Context) {
	c.JSON(http.StatusOK, productsToResponse(h.MachineService.Products()))
}

func (h *Handlers) GetApiMachine(c *gin.Context) {
	status := h.MachineService.Status()
	c.JSON(http.StatusOK, StatusResponse{
		Session:  sessionToResponse(status.Session),
		Products: productsToResponse(status.Products),
	})
}

func (h *Handlers) PostApiInsert(c *gin.Context) {
	var req InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}

	value, err := change.NewAmount(req.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	session, err := h.MachineService.Insert(c.Request.Context(), value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(session))
}

func (h *Handlers) PostApiBuy(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid product id"})
		return
	}

	res, err := h.MachineService.Purchase(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PurchaseResponse{
		Message:    res.Message,
		Product:    productToResponse(res.Product),
		Change:     breakdownToDTO(res.Change),
		ChangeText: res.ChangeText,
	})
}

func (h *Handlers) PostApiReturn(c *gin.Context) {
	returned, err := h.MachineService.ReturnMoney(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReturnResponse{
		Message:  "Returned " + returned.Total().String() + h.symbol(),
		Returned: breakdownToDTO(returned),
	})
}

func (h *Handlers) PostApiChange(c *gin.Context) {
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}

	amount, err := change.NewAmount(*req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	quote, err := h.MachineService.PreviewChange(amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChangeResponse{
		Amount:    quote.Amount.Float(),
		Breakdown: breakdownToDTO(quote.Breakdown),
		Text:      quote.Text,
	})
}

func (h *Handlers) GetApiAdminInventory(c *gin.Context) {
	c.JSON(http.StatusOK, inventoryToResponse(h.MachineService.Inventory()))
}

func (h *Handlers) PostApiAdminRestockMoney(c *gin.Context) {
	var req BreakdownDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}
	units, err := req.toBreakdown()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: err.Error()})
		return
	}

	inv, err := h.MachineService.RestockMoney(c.Request.Context(), units)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventoryToResponse(inv))
}

func (h *Handlers) PostApiAdminRestockProduct(c *gin.Context) {
	var req RestockProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}

	product, err := h.MachineService.RestockProduct(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, productToResponse(product))
}

func (h *Handlers) GetApiAdminSales(c *gin.Context) {
	limit := defaultSalesLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid limit"})
			return
		}
		limit = min(n, maxSalesLimit)
	}

	sales, err := h.MachineService.Sales(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, saleToResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, change.ErrChangeUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Errors: msgChangeUnavailable})
	case errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusConflict, ErrorResponse{Errors: "Product out of stock"})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Errors: "Product not found"})
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrNothingInserted),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, change.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: err.Error()})
	case errors.Is(err, change.ErrTooManyUnits):
		c.JSON(http.StatusConflict, ErrorResponse{Errors: "Cash box is full"})
	case errors.Is(err, service.ErrUnknownDenomination),
		errors.Is(err, change.ErrInvalidDenomination):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Errors: err.Error()})
	default:
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
	}
}

func (h *Handlers) symbol() string {
	if h.CurrencySymbol == "" {
		return change.DefaultSymbol
	}
	return h.CurrencySymbol
}
