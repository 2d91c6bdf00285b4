package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Sunday Squares API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for Sunday Squares betting pools.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/pools
	createPool, _ := r.NewOperationContext(http.MethodPost, "/api/pools")
	createPool.SetSummary("Create pool")
	createPool.SetDescription("Creates a new squares pool. Returns the join code to share with players.")
	createPool.AddReqStructure(CreatePoolRequest{})
	createPool.AddRespStructure(CreatePoolResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createPool.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createPool)

	// POST /api/pools/{code}/auth
	postAuth, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/auth")
	postAuth.SetSummary("Join or host a pool")
	postAuth.SetDescription("Admin PIN grants an admin session; the pool code grants a player session.")
	postAuth.AddReqStructure(AuthRequest{})
	postAuth.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAuth.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAuth)

	// POST /api/pools/{code}/activate
	postActivate, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/activate")
	postActivate.SetSummary("Activate pool with a license key")
	postActivate.SetDescription("Checks the key format, records the pool in the directory, and grants an admin session.")
	postActivate.AddReqStructure(ActivateRequest{})
	postActivate.AddRespStructure(ActivateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postActivate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postActivate)

	// POST /api/pools/{code}/payment
	postPayment, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/payment")
	postPayment.SetSummary("Consume a checkout return")
	postPayment.SetDescription("Success activates the pool and grants an admin session; cancelled changes nothing.")
	postPayment.AddReqStructure(PaymentReturnRequest{})
	postPayment.AddRespStructure(ActivateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPayment.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusPaymentRequired))
	_ = r.AddOperation(postPayment)

	// GET /api/pools/{code}/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/pools/{code}/state")
	getState.SetSummary("Get pool state")
	getState.SetDescription("Full pool snapshot with stats, payouts, and the resolved winner. Admin PIN is redacted for non-admin callers.")
	getState.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// GET /api/pools/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/pools/{code}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of pool updates: claims, locks, rolls, scores, winners.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// POST /api/pools/{code}/squares
	postClaim, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/squares")
	postClaim.SetSummary("Claim a square")
	postClaim.SetDescription("Claims or re-claims a cell. Requires Bearer token; payment flags are admin only.")
	postClaim.AddReqStructure(ClaimRequest{})
	postClaim.AddRespStructure(ClaimResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postClaim)

	// DELETE /api/pools/{code}/squares/{cellID}
	deleteSquare, _ := r.NewOperationContext(http.MethodDelete, "/api/pools/{code}/squares/{cellID}")
	deleteSquare.SetSummary("Delete a square")
	deleteSquare.SetDescription("Removes a claim, returning the cell to open. Admin only.")
	deleteSquare.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteSquare.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	deleteSquare.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSquare)

	// PUT /api/pools/{code}/squares/{cellID}/verification
	putVerification, _ := r.NewOperationContext(http.MethodPut, "/api/pools/{code}/squares/{cellID}/verification")
	putVerification.SetSummary("Set payment verification")
	putVerification.SetDescription("Overrides the paid/pending flags on a claimed square. Admin only.")
	putVerification.AddReqStructure(VerificationRequest{})
	putVerification.AddRespStructure(ClaimResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putVerification.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	putVerification.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(putVerification)

	// POST /api/pools/{code}/grid/lock
	postLock, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/grid/lock")
	postLock.SetSummary("Toggle grid lock")
	postLock.SetDescription("Freezes or unfreezes claim edits. Admin only.")
	postLock.AddRespStructure(GridLockResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postLock)

	// POST /api/pools/{code}/grid/roll
	postRoll, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/grid/roll")
	postRoll.SetSummary("Roll the numbers")
	postRoll.SetDescription("Draws random digit permutations for both axes and locks the pool. Requires a locked grid. Admin only.")
	postRoll.AddRespStructure(RollNumbersResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRoll.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postRoll.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postRoll)

	// PUT /api/pools/{code}/score
	putScore, _ := r.NewOperationContext(http.MethodPut, "/api/pools/{code}/score")
	putScore.SetSummary("Update the score")
	putScore.SetDescription("Sets the live score text and returns the re-resolved winner. Admin only.")
	putScore.AddReqStructure(ScoreRequest{})
	putScore.AddRespStructure(ScoreResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(putScore)

	// POST /api/pools/{code}/winners/{quarter}
	postWinner, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/winners/{quarter}")
	postWinner.SetSummary("Record a quarter winner")
	postWinner.SetDescription("Freezes the current winner under q1, q2, or q3. Re-recording overwrites. Admin only.")
	postWinner.AddRespStructure(QuarterWinnerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postWinner.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postWinner.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postWinner)

	// PUT /api/pools/{code}/settings/payments
	putPayments, _ := r.NewOperationContext(http.MethodPut, "/api/pools/{code}/settings/payments")
	putPayments.SetSummary("Update payment settings")
	putPayments.SetDescription("Replaces the collection handles and the price per square. Admin only.")
	putPayments.AddReqStructure(PaymentSettingsRequest{})
	putPayments.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	putPayments.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(putPayments)

	// PUT /api/pools/{code}/settings/distribution
	putDistribution, _ := r.NewOperationContext(http.MethodPut, "/api/pools/{code}/settings/distribution")
	putDistribution.SetSummary("Update prize distribution")
	putDistribution.SetDescription("Saves the four payout percents. A sum other than 100 is flagged but never blocked. Admin only.")
	putDistribution.AddRespStructure(DistributionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putDistribution.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(putDistribution)

	// POST /api/pools/{code}/undo
	postUndo, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/undo")
	postUndo.SetSummary("Undo the last claim")
	postUndo.SetDescription("Restores the grid to its state before the most recent claim. Admin only.")
	postUndo.AddRespStructure(UndoResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postUndo.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postUndo)

	// POST /api/pools/{code}/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/pools/{code}/reset")
	postReset.SetSummary("Reset the pool")
	postReset.SetDescription("Clears numbers, squares, scores, winners, and locks, and revokes every session. Admin only.")
	postReset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postReset)

	// GET /api/pools/{code}/export
	getExport, _ := r.NewOperationContext(http.MethodGet, "/api/pools/{code}/export")
	getExport.SetSummary("Export the pool")
	getExport.SetDescription("Downloads the full pool document as a JSON backup. Admin only.")
	getExport.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("application/json"))
	getExport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(getExport)

	// POST /api/owner/login
	postOwnerLogin, _ := r.NewOperationContext(http.MethodPost, "/api/owner/login")
	postOwnerLogin.SetSummary("Owner login")
	postOwnerLogin.SetDescription("Authenticates the cross-pool operator. Sets owner_session cookie.")
	postOwnerLogin.AddReqStructure(OwnerLoginRequest{})
	postOwnerLogin.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postOwnerLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postOwnerLogin)

	// GET /api/owner/pools
	getOwnerPools, _ := r.NewOperationContext(http.MethodGet, "/api/owner/pools")
	getOwnerPools.SetSummary("List pools")
	getOwnerPools.SetDescription("Directory of activated pools with claim stats. Requires owner_session cookie.")
	getOwnerPools.AddRespStructure(OwnerPoolsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getOwnerPools.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getOwnerPools)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
