package http

import (
	"net/http"

	"github.com/mapcocoro/kakeiboApp/internal/donation"
	applog "github.com/mapcocoro/kakeiboApp/internal/log"
)

// donationPatch mirrors donation.Patch over JSON. Users mostly edit
// municipality and the fulfillment flags.
type donationPatch struct {
	Year             *string `json:"year"`
	Amount           *int64  `json:"amount"`
	Item             *string `json:"item"`
	Applicant        *string `json:"applicant"`
	Municipality     *string `json:"municipality"`
	ItemReceived     *bool   `json:"itemReceived"`
	DocumentReceived *bool   `json:"documentReceived"`
}

func (s *Server) handleDonations(w http.ResponseWriter, r *http.Request) {
	if s.donations == nil {
		writeError(w, http.StatusNotFound, "donation ledger disabled")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.donations.All())
}

func (s *Server) handleDonationByID(w http.ResponseWriter, r *http.Request) {
	if s.donations == nil {
		writeError(w, http.StatusNotFound, "donation ledger disabled")
		return
	}
	id := pathID(r, "/api/donations/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		s.updateDonation(w, r, id)
	case http.MethodDelete:
		s.deleteDonation(w, r, id)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) updateDonation(w http.ResponseWriter, r *http.Request, id string) {
	var req donationPatch
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Amount != nil && *req.Amount < 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must not be negative")
		return
	}

	updated, found, err := s.donations.Update(r.Context(), id, donation.Patch{
		Year:             req.Year,
		Amount:           req.Amount,
		Item:             req.Item,
		Applicant:        req.Applicant,
		Municipality:     req.Municipality,
		ItemReceived:     req.ItemReceived,
		DocumentReceived: req.DocumentReceived,
	})
	if err != nil {
		writeStoreError(w, r, err, "update_donation")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "donation entry not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteDonation(w http.ResponseWriter, r *http.Request, id string) {
	found, err := s.donations.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "delete_donation")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "donation entry not found")
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Donation entry deleted",
		applog.FieldRecordID, id)
	w.WriteHeader(http.StatusNoContent)
}
