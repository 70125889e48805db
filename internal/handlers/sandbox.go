package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/arko-chat/storebridge/components/utils"
	"github.com/arko-chat/storebridge/internal/pages"
	"github.com/arko-chat/storebridge/internal/sandbox"
)

const qrSize = 256

func (h *Handler) HandlePaymentPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireSandbox(w, r) {
		return
	}
	token := chi.URLParam(r, "token")

	view, err := h.sandbox.PaymentView(token)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := pages.PaymentData{
		Title:     view.Product.ProductID,
		Quantity:  1,
		ActionURL: "/sandbox/pay/" + token,
		QRURL:     "/sandbox/pay/" + token + "/qr.png",
	}
	if view.Product.Title != nil {
		data.Title = *view.Product.Title
	}
	if view.Product.Description != nil {
		data.Description = *view.Product.Description
	}
	if q := view.Purchase.Quantity; q != nil {
		data.Quantity = *q
	}
	if o := view.Purchase.OrderID; o != nil {
		data.OrderID = *o
	}
	if ts := view.Purchase.PurchaseTime; ts != nil {
		data.Created = utils.FormatTimestamp(*ts)
	}
	switch {
	case view.Purchase.Amount != nil:
		var currency string
		if view.Purchase.Currency != nil {
			currency = *view.Purchase.Currency
		}
		data.Price = utils.FormatAmount(*view.Purchase.Amount, currency)
	case view.Product.PriceLabel != nil:
		data.Price = *view.Product.PriceLabel
	}

	h.render(w, r, http.StatusOK, pages.Payment(data))
}

func (h *Handler) HandlePaymentOutcome(w http.ResponseWriter, r *http.Request) {
	if !h.requireSandbox(w, r) {
		return
	}
	token := chi.URLParam(r, "token")
	outcome := sandbox.Outcome(chi.URLParam(r, "outcome"))
	if !outcome.Valid() {
		http.NotFound(w, r)
		return
	}

	intent, err := h.sandbox.CompletePayment(token, outcome)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.ForwardIntent(intent)
	h.render(w, r, http.StatusOK, pages.PaymentDone(string(outcome), intent.Data))
}

// HandlePaymentQR encodes the absolute payment page URL. Other devices can
// follow it only when the server listens on a LAN address.
func (h *Handler) HandlePaymentQR(w http.ResponseWriter, r *http.Request) {
	if !h.requireSandbox(w, r) {
		return
	}
	token := chi.URLParam(r, "token")
	if _, err := h.sandbox.PaymentView(token); err != nil {
		h.serverError(w, r, err)
		return
	}

	qr, err := qrcode.New(h.sandbox.PaymentURL(token), qrcode.High)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	png, err := qr.PNG(qrSize)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (h *Handler) HandleReviewPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireSandbox(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, pages.Review())
}

func (h *Handler) HandleReviewSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.requireSandbox(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	rating, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("rating")))
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pages.Message("Review not saved", "Pick a rating from 1 to 5."))
		return
	}
	if err := h.sandbox.Reviews().Submit(rating, r.PostFormValue("comment")); err != nil {
		h.render(w, r, http.StatusBadRequest, pages.Message("Review not saved", err.Error()))
		return
	}
	h.render(w, r, http.StatusOK, pages.ReviewThanks(rating))
}
