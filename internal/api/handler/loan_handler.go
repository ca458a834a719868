package handler

import (
	"log/slog"
	"net/http"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/loan"
)

type LoanHandler struct {
	credit credit.Service
	loans  loan.LoanService
	logger *slog.Logger
}

func NewLoanHandler(c credit.Service, l loan.LoanService, logger *slog.Logger) *LoanHandler {
	if c == nil || l == nil {
		panic("loan handler services cannot be nil")
	}
	return &LoanHandler{
		credit: c,
		loans:  l,
		logger: logger.With("component", "LoanHandler"),
	}
}

func (h *LoanHandler) decodeLoanRequest(w http.ResponseWriter, r *http.Request) (credit.Request, bool) {
	var req dto.LoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, err)
		return credit.Request{}, false
	}
	if err := validateRequest(req); err != nil {
		h.logger.WarnContext(r.Context(), "Loan request failed validation", slog.Any("error", err))
		respondError(w, err)
		return credit.Request{}, false
	}
	return req.ToRequest(), true
}

// CheckEligibility handles POST /check-eligibility
// @Summary Check loan eligibility
// @Description Scores the customer and decides approval, the corrected interest rate and the monthly installment. Nothing is persisted.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanRequest true "Loan terms"
// @Success 200 {object} dto.EligibilityResponse "Eligibility decision"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /check-eligibility [post]
// @Security BearerAuth
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLoanRequest(w, r)
	if !ok {
		return
	}

	d, err := h.credit.CheckEligibility(r.Context(), req)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Eligibility check failed", slog.Int64("customerID", req.CustomerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewEligibilityResponse(d))
}

// CreateLoan handles POST /create-loan
// @Summary Create a loan
// @Description Re-runs the eligibility check and stores the loan when approved. Send an Idempotency-Key header to make retries safe.
// @Tags Loans
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated key; a retry with the same key and body replays the first response"
// @Param request body dto.LoanRequest true "Loan terms"
// @Success 201 {object} dto.CreateLoanResponse "Loan created"
// @Success 200 {object} dto.CreateLoanResponse "Loan not approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Idempotency-Key conflict"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /create-loan [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeLoanRequest(w, r)
	if !ok {
		return
	}

	res, err := h.credit.IssueLoan(r.Context(), req)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Loan creation failed", slog.Int64("customerID", req.CustomerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if res.Approved() {
		status = http.StatusCreated
	}
	respondJSON(w, status, dto.NewCreateLoanResponse(req.CustomerID, res))
}

// ViewLoan handles GET /view-loan/{loanID}
// @Summary View a loan
// @Description Returns the loan with its owning customer.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.ViewLoanResponse "Loan details"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loan/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) ViewLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	detail, err := h.loans.GetLoan(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewViewLoanResponse(detail))
}

// ViewLoans handles GET /view-loans/{customerID}
// @Summary List a customer's loans
// @Description Returns every loan of the customer with the number of repayments left.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.LoanItemResponse "Customer loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loans/{customerID} [get]
// @Security BearerAuth
func (h *LoanHandler) ViewLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := idFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	loans, err := h.loans.ListCustomerLoans(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanItemResponses(loans))
}
