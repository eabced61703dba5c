package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"

	appcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/cart"
	appdelivery "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/delivery"
	appinventory "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/inventory"
	apporder "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/application/order"
	domcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
	domcustomer "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/customer"
	domdelivery "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	domorder "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/routing"
	"go.uber.org/zap"
)

// headerCustomer carries the authenticated identity; authentication itself
// lives in the excluded account subsystem.
const headerCustomer = "X-Customer"

type Handler struct {
	carts      *appcart.Service
	orders     *apporder.Service
	deliveries *appdelivery.Service
	inventory  *appinventory.Service
	cartStore  domcart.Store
	log        *zap.Logger
	metrics    *Metrics
}

func NewHandler(
	carts *appcart.Service,
	orders *apporder.Service,
	deliveries *appdelivery.Service,
	inventory *appinventory.Service,
	cartStore domcart.Store,
	logger *zap.Logger,
	metrics *Metrics,
) *Handler {
	return &Handler{
		carts:      carts,
		orders:     orders,
		deliveries: deliveries,
		inventory:  inventory,
		cartStore:  cartStore,
		log:        logger.With(zap.String("component", "http_server")),
		metrics:    metrics,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, name string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, h.withObservability(name, fn))
	}

	route("GET /menu", "/menu", h.handleMenu)

	route("GET /cart", "/cart", h.handleViewCart)
	route("POST /cart/items", "/cart/items", h.handleAddToCart)
	route("PATCH /cart/items/{name}", "/cart/items/{name}", h.handleModifyCart)
	route("DELETE /cart/items/{name}", "/cart/items/{name}", h.handleRemoveFromCart)

	route("POST /orders", "/orders", h.handleValidateOrder)
	route("GET /orders", "/orders", h.handleListOrders)
	route("GET /orders/{id}", "/orders/{id}", h.handleGetOrder)

	route("POST /deliveries", "/deliveries", h.handleCreateDelivery)
	route("GET /deliveries/available", "/deliveries/available", h.handleListAvailable)
	route("POST /deliveries/{id}/accept", "/deliveries/{id}/accept", h.handleAcceptDelivery)

	route("POST /admin/items", "/admin/items", h.handleCreateItem)
	route("DELETE /admin/items/{name}", "/admin/items/{name}", h.handleDeleteItem)
	route("PATCH /admin/items/{name}/name", "/admin/items/{name}/name", h.handleRenameItem)
	route("PATCH /admin/items/{name}/price", "/admin/items/{name}/price", h.handleSetPrice)
	route("PATCH /admin/items/{name}/stock", "/admin/items/{name}/stock", h.handleSetStock)
	route("PATCH /admin/items/{name}/category", "/admin/items/{name}/category", h.handleSetCategory)
	route("PATCH /admin/items/{name}/exposure", "/admin/items/{name}/exposure", h.handleSetExposed)
	route("GET /admin/storage", "/admin/storage", h.handleStorage)

	route("GET /health", "/health", h.handleHealth)

	return mux
}

// ---- menu / inventory ----

type itemResponse struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Major    string `json:"price_major"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Exposed  bool   `json:"exposed"`
}

func toItemResponse(it *domitem.Item) itemResponse {
	return itemResponse{
		Name:     it.Name,
		Price:    int64(it.Price),
		Major:    it.Price.Major(),
		Category: string(it.Category),
		Stock:    it.Stock,
		Exposed:  it.Exposed,
	}
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.Menu(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- cart ----

type cartLineRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type addToCartRequest struct {
	Items []cartLineRequest `json:"items"`
}

type cartLineResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

type cartResponse struct {
	Customer   string             `json:"customer"`
	Lines      []cartLineResponse `json:"lines"`
	Total      int64              `json:"total"`
	TotalMajor string             `json:"total_major"`
}

func toCartResponse(v *appcart.View) cartResponse {
	out := cartResponse{
		Customer:   v.Customer,
		Lines:      make([]cartLineResponse, 0, len(v.Lines)),
		Total:      int64(v.Total),
		TotalMajor: v.Total.Major(),
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, cartLineResponse{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: int64(l.UnitPrice),
			Subtotal:  int64(l.Subtotal),
		})
	}
	return out
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	customerName, ok := h.customer(w, r)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	names := make([]string, 0, len(req.Items))
	quantities := make([]int, 0, len(req.Items))
	for _, line := range req.Items {
		names = append(names, line.Name)
		quantities = append(quantities, line.Quantity)
	}

	view, err := h.carts.Add(r.Context(), customerName, names, quantities)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleModifyCart(w http.ResponseWriter, r *http.Request) {
	customerName, ok := h.customer(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	view, err := h.carts.Modify(r.Context(), customerName, r.PathValue("name"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	customerName, ok := h.customer(w, r)
	if !ok {
		return
	}
	view, err := h.carts.Remove(r.Context(), customerName, r.PathValue("name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	customerName, ok := h.customer(w, r)
	if !ok {
		return
	}
	view, err := h.carts.View(r.Context(), customerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

// ---- orders ----

type validateOrderRequest struct {
	Confirm string `json:"confirm"`
	Address string `json:"address"`
}

type orderLineResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type orderResponse struct {
	ID       string              `json:"id"`
	Customer string              `json:"customer"`
	Driver   string              `json:"driver,omitempty"`
	Address  string              `json:"address"`
	Lines    []orderLineResponse `json:"lines"`
	Total    int64               `json:"total"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	out := orderResponse{
		ID:       o.ID,
		Customer: o.Customer,
		Driver:   o.Driver,
		Address:  o.Address,
		Total:    o.Total,
		Lines:    make([]orderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, orderLineResponse{Name: l.ItemName, Quantity: l.Quantity})
	}
	return out
}

func (h *Handler) handleValidateOrder(w http.ResponseWriter, r *http.Request) {
	customerName, ok := h.customer(w, r)
	if !ok {
		return
	}
	var req validateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.orders.Validate(r.Context(), apporder.ValidateInput{
		Customer: customerName,
		Confirm:  req.Confirm,
		Address:  req.Address,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Cart clearing is this layer's job; a failed clear must not fail the
	// already committed order.
	if err := h.cartStore.Clear(r.Context(), customerName); err != nil {
		h.log.Warn("cart_clear_failed", zap.String("customer", customerName), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	customerName, ok := h.customer(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.ListByCustomer(r.Context(), customerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ---- deliveries ----

type createDeliveryRequest struct {
	OrderIDs []string `json:"order_ids"`
	Stops    []string `json:"stops"`
}

type deliveryResponse struct {
	ID          string   `json:"id"`
	Driver      string   `json:"driver,omitempty"`
	DurationMin int      `json:"duration_min,omitempty"`
	OrderIDs    []string `json:"order_ids"`
	Stops       []string `json:"stops"`
	Accepted    bool     `json:"accepted"`
}

func toDeliveryResponse(d *domdelivery.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:          d.ID,
		Driver:      d.Driver,
		DurationMin: d.DurationMin,
		OrderIDs:    d.OrderIDs,
		Stops:       d.Stops,
		Accepted:    d.Accepted,
	}
}

func (h *Handler) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := h.deliveries.Create(r.Context(), req.OrderIDs, req.Stops)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeliveryResponse(d))
}

type availableDeliveryResponse struct {
	deliveryResponse
	RouteDurationMin int     `json:"route_duration_min"`
	RouteDistanceKm  float64 `json:"route_distance_km"`
	Mode             string  `json:"mode"`
}

func (h *Handler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	mode, err := routing.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	available, err := h.deliveries.ListAvailable(r.Context(), mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]availableDeliveryResponse, 0, len(available))
	for _, a := range available {
		out = append(out, availableDeliveryResponse{
			deliveryResponse: toDeliveryResponse(a.Delivery),
			RouteDurationMin: a.Route.DurationMin,
			RouteDistanceKm:  a.Route.DistanceKm,
			Mode:             string(a.Route.Mode),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type acceptDeliveryRequest struct {
	Driver string `json:"driver"`
	Mode   string `json:"mode"`
}

type acceptDeliveryResponse struct {
	deliveryResponse
	MapsLink string `json:"maps_link"`
}

func (h *Handler) handleAcceptDelivery(w http.ResponseWriter, r *http.Request) {
	var req acceptDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode, err := routing.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.deliveries.Accept(r.Context(), r.PathValue("id"), req.Driver, mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acceptDeliveryResponse{
		deliveryResponse: toDeliveryResponse(result.Delivery),
		MapsLink:         result.MapsLink,
	})
}

// ---- admin ----

type createItemRequest struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Exposed  bool   `json:"exposed"`
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	it, err := h.inventory.Create(r.Context(), appinventory.CreateInput{
		Name:     req.Name,
		Price:    domitem.Price(req.Price),
		Category: req.Category,
		Stock:    req.Stock,
		Exposed:  req.Exposed,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRenameItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeItemUpdate(w)(h.inventory.Rename(r.Context(), r.PathValue("name"), req.Name))
}

func (h *Handler) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price int64 `json:"price"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeItemUpdate(w)(h.inventory.SetPrice(r.Context(), r.PathValue("name"), domitem.Price(req.Price)))
}

func (h *Handler) handleSetStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stock int `json:"stock"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeItemUpdate(w)(h.inventory.SetStock(r.Context(), r.PathValue("name"), req.Stock))
}

func (h *Handler) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeItemUpdate(w)(h.inventory.SetCategory(r.Context(), r.PathValue("name"), req.Category))
}

func (h *Handler) handleSetExposed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exposed bool `json:"exposed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeItemUpdate(w)(h.inventory.SetExposed(r.Context(), r.PathValue("name"), req.Exposed))
}

func (h *Handler) handleStorage(w http.ResponseWriter, r *http.Request) {
	storage, err := h.inventory.Storage(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storage)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeItemUpdate(w http.ResponseWriter) func(*domitem.Item, error) {
	return func(it *domitem.Item, err error) {
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it))
	}
}

// ---- plumbing ----

func (h *Handler) customer(w http.ResponseWriter, r *http.Request) (string, bool) {
	customerName := r.Header.Get(headerCustomer)
	if customerName == "" {
		writeError(w, http.StatusUnauthorized, errors.New("missing "+headerCustomer+" header"))
		return "", false
	}
	return customerName, true
}

func decodeJSON(r *http.Request, into any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeDomainError maps domain sentinels onto the client-facing taxonomy:
// missing entities are 404, precondition violations 400, lost races 409.
// Nothing is ever reported as success with the error swallowed.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domitem.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domdelivery.ErrNotFound),
		errors.Is(err, domcustomer.ErrNotFound),
		errors.Is(err, domcart.ErrLineNotFound),
		errors.Is(err, domorder.ErrAddressUnresolved),
		errors.Is(err, routing.ErrAddressNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domcart.ErrItemAlreadyInCart),
		errors.Is(err, domdelivery.ErrAlreadyAccepted),
		errors.Is(err, domitem.ErrNameTaken):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domitem.ErrInsufficientStock),
		errors.Is(err, domitem.ErrInvalidQuantity),
		errors.Is(err, domitem.ErrInvalidCategory),
		errors.Is(err, domitem.ErrNegativePrice),
		errors.Is(err, domitem.ErrNegativeStock),
		errors.Is(err, domorder.ErrConfirmationRequired),
		errors.Is(err, domorder.ErrEmptyCart),
		errors.Is(err, domdelivery.ErrNoStops),
		errors.Is(err, domdelivery.ErrStopsMismatch),
		errors.Is(err, routing.ErrInvalidMode),
		errors.Is(err, routing.ErrNoDestinations):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, routing.ErrNoRoute):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
