package handler

import (
	stderrors "errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/search"
	"storefront/internal/storesync"
	"storefront/pkg/errors"
	"storefront/pkg/response"
	"storefront/pkg/utils"
)

// StorefrontHandler serves shoppers from the synchronizer's snapshot.
type StorefrontHandler struct {
	store *storesync.Synchronizer
}

var storefrontHandler *StorefrontHandler

func NewStorefrontHandler(store *storesync.Synchronizer) *StorefrontHandler {
	return &StorefrontHandler{
		store: store,
	}
}

func SetupStorefrontHandler(store *storesync.Synchronizer) {
	storefrontHandler = NewStorefrontHandler(store)
}

func GetStorefrontHandler() *StorefrontHandler {
	return storefrontHandler
}

type snapshotResponse struct {
	State    string              `json:"state"`
	Snapshot *storesync.Snapshot `json:"snapshot"`
}

type checkoutRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func parsePriceBound(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.BadRequest("Invalid price bound: "+raw, err)
	}
	return v, nil
}

// Search ranks the current snapshot's products against q.
func (h *StorefrontHandler) Search(c echo.Context) error {
	filters := search.DefaultFilters()
	filters.Category = c.QueryParam("category")
	filters.SortBy = search.ParseSortKey(c.QueryParam("sort"))

	var err error
	if filters.MinPrice, err = parsePriceBound(c.QueryParam("min_price"), 0); err != nil {
		return response.Error(c, err)
	}
	if filters.MaxPrice, err = parsePriceBound(c.QueryParam("max_price"), math.Inf(1)); err != nil {
		return response.Error(c, err)
	}

	ranker := search.NewRanker(search.ParseStrategy(c.QueryParam("strategy")))
	results := ranker.Rank(h.store.Snapshot().Products, c.QueryParam("q"), filters)

	pagination := utils.GetPaginationParams(c)
	page, total := search.Paginate(results, pagination.Page, pagination.PageSize)

	return response.Paginated(c, page, int64(total), pagination.Page, pagination.PageSize)
}

func (h *StorefrontHandler) GetSnapshot(c echo.Context) error {
	return response.Success(c, snapshotResponse{
		State:    h.store.State().String(),
		Snapshot: h.store.Snapshot(),
	})
}

// Refresh forces a sync and returns the snapshot it produced.
func (h *StorefrontHandler) Refresh(c echo.Context) error {
	if err := h.store.Refresh(c.Request().Context()); err != nil {
		return response.Error(c, errors.ServiceUnavailable("Catalog API unavailable", err))
	}

	return response.Success(c, snapshotResponse{
		State:    h.store.State().String(),
		Snapshot: h.store.Snapshot(),
	})
}

// Checkout places an order through the catalog API.
func (h *StorefrontHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	lines := make([]storesync.OrderLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = storesync.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.store.AddOrder(c.Request().Context(), storesync.OrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		Items:           lines,
	})
	if err != nil {
		return response.Error(c, upstreamError(err))
	}

	return response.Created(c, order)
}

// upstreamError keeps the catalog API's client errors and reports anything
// else as a gateway failure.
func upstreamError(err error) error {
	var apiErr *storesync.APIError
	if stderrors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		code := apiErr.Code
		if code == "" {
			code = errors.CodeBadRequest
		}
		return errors.New(code, apiErr.Message, apiErr.Status, err)
	}
	return errors.New("BAD_GATEWAY", "Catalog API request failed", http.StatusBadGateway, err)
}
