package httpgin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	redisrepo "github.com/alsania-dev/gridplay-sub001/internal/repository/redis"
	"github.com/alsania-dev/gridplay-sub001/internal/service"
	"github.com/alsania-dev/gridplay-sub001/internal/service/boards"
	"github.com/alsania-dev/gridplay-sub001/internal/service/ledger"
	"github.com/alsania-dev/gridplay-sub001/internal/service/settlement"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/boards/:id", handleGetBoard(svcs))
	r.GET("/boards/:id/availability", handleGetAvailability(svcs))
	r.GET("/boards/:id/squares", handleListSquares(svcs))

	r.POST("/boards/:id/reserve", handleReserveSquares(svcs, idem))
	r.POST("/boards/:id/release", handleReleaseSquares(svcs))
	r.POST("/boards/:id/winners", handleComputeWinners(svcs))
	r.POST("/boards/:id/winners/summary", handleWinnersSummary(svcs))
	r.GET("/payments/:provider/:external_id", handleGetIntent(svcs))

	// Webhooks (payloads arrive already signature-verified upstream)
	r.POST("/webhooks/stripe", handleWebhook(svcs, settlement.NormalizeStripe, logger))
	r.POST("/webhooks/paypal", handleWebhook(svcs, settlement.NormalizePaypal, logger))

	// Admin-API
	// TODO: add admin middleware
	admin := r.Group("/admin")
	{
		admin.POST("/boards", handleCreateBoard(svcs))
		admin.POST("/boards/:id/assign", handleAssignNumbers(svcs))
		admin.POST("/boards/:id/complete", handleCompleteBoard(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get board
// @Param    id  path  string  true  "Board ID (uuid)"
// @Success  200  {object}  BoardResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /boards/{id} [get]
func handleGetBoard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Boards.GetBoard(c.Request.Context(), boardID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, toBoardResponse(b), "public, max-age=60", true)
	}
}

// @Summary  Get availability counters
// @Param    id  path  string  true  "Board ID (uuid)"
// @Success  200  {object}  domain.SquareCounts
// @Router   /boards/{id}/availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		cnt, err := svcs.Boards.Availability(c.Request.Context(), boardID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, cnt, "public, max-age=15", true)
	}
}

// @Summary  List board squares
// @Param    id  path  string  true  "Board ID (uuid)"
// @Success  200  {array}   SquareResponse
// @Router   /boards/{id}/squares [get]
func handleListSquares(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		sqs, err := svcs.Boards.ListSquares(c.Request.Context(), boardID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, toSquareResponses(sqs), "public, max-age=15", true)
	}
}

// @Summary  Reserve squares (idempotent)
// @Param    id  path  string  true  "Board ID (uuid)"
// @Param    req body  ReserveSquaresRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {array}  SquareResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "squares unavailable / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /boards/{id}/reserve [post]
func handleReserveSquares(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ReserveSquaresRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		squareIDs, ok := parseUUIDs(c, req.SquareIDs)
		if !ok {
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemReserve(boardID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		ttl := time.Duration(req.TTLSec) * time.Second
		rlKey := "ip:" + c.ClientIP()

		sqs, err := svcs.Ledger.ReserveSquares(
			c.Request.Context(),
			boardID,
			squareIDs,
			req.UserID,
			ttl,
			rlKey,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, ledger.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}

		resp := toSquareResponses(sqs)

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Release squares
// @Param    id  path  string  true  "Board ID (uuid)"
// @Param    req body  ReleaseSquaresRequest true "payload"
// @Success  200 {array} SquareResponse
// @Router   /boards/{id}/release [post]
func handleReleaseSquares(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ReleaseSquaresRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		squareIDs, ok := parseUUIDs(c, req.SquareIDs)
		if !ok {
			return
		}
		sqs, err := svcs.Ledger.ReleaseSquares(c.Request.Context(), boardID, squareIDs)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toSquareResponses(sqs))
	}
}

// @Summary  Compute winners for quarter scores
// @Param    id  path  string  true  "Board ID (uuid)"
// @Param    req body  ScoresRequest true "payload"
// @Success  200 {object} WinnersResponse
// @Failure  409 {object} ErrorResponse "numbers not assigned"
// @Router   /boards/{id}/winners [post]
func handleComputeWinners(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ScoresRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		scores := make([]domain.QuarterScore, 0, len(req.Scores))
		for _, sc := range req.Scores {
			scores = append(scores, domain.QuarterScore{
				Quarter: domain.Quarter(sc.Quarter),
				Home:    sc.Home,
				Away:    sc.Away,
			})
		}

		res, err := svcs.Boards.ComputeWinners(c.Request.Context(), boardID, scores)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, WinnersResponse{
			Winners:           res.Winners,
			TotalPaidCents:    res.TotalPaidCents,
			RemainingPotCents: res.RemainingPotCents,
			Unclaimed:         res.Unclaimed,
		})
	}
}

// @Summary  Per-owner winnings totals for quarter scores
// @Param    id  path  string  true  "Board ID (uuid)"
// @Param    req body  ScoresRequest true "payload"
// @Success  200 {array} payout.OwnerSummary
// @Router   /boards/{id}/winners/summary [post]
func handleWinnersSummary(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ScoresRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		scores := make([]domain.QuarterScore, 0, len(req.Scores))
		for _, sc := range req.Scores {
			scores = append(scores, domain.QuarterScore{
				Quarter: domain.Quarter(sc.Quarter),
				Home:    sc.Home,
				Away:    sc.Away,
			})
		}

		summary, err := svcs.Boards.WinnersSummary(c.Request.Context(), boardID, scores)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// @Summary  Get payment intent
// @Param    provider     path  string  true  "stripe or paypal"
// @Param    external_id  path  string  true  "provider transaction id"
// @Success  200 {object} IntentResponse
// @Router   /payments/{provider}/{external_id} [get]
func handleGetIntent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := domain.PaymentProvider(c.Param("provider"))
		if provider != domain.ProviderStripe && provider != domain.ProviderPaypal {
			badRequest(c, "unknown provider")
			return
		}
		in, err := svcs.Settlement.GetIntent(
			c.Request.Context(),
			provider,
			c.Param("external_id"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toIntentResponse(in))
	}
}

// handleWebhook is shared by both providers: normalize the verified payload,
// run it through the settlement state machine, and acknowledge. Event types
// this core does not settle are acknowledged without processing so the
// provider stops retrying them.
func handleWebhook(
	svcs *service.Services,
	normalize func([]byte) (domain.PaymentEvent, error),
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}

		ev, err := normalize(body)
		if err != nil {
			if errors.Is(err, settlement.ErrUnknownEvent) {
				c.JSON(http.StatusOK, gin.H{"ignored": true})
				return
			}
			badRequest(c, err.Error())
			return
		}

		in, err := svcs.Settlement.ProcessEvent(c.Request.Context(), ev)
		if err != nil {
			if errors.Is(err, settlement.ErrLedgerDesync) {
				logger.Error("webhook settlement anomaly",
					"provider", ev.Provider,
					"external_id", ev.ExternalID,
					"error", err,
				)
				c.JSON(http.StatusConflict, ErrorResponse{Error: "settlement anomaly"})
				return
			}
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toIntentResponse(in))
	}
}

// @Summary  Create board
// @Param    req body  CreateBoardRequest true "payload"
// @Success  201 {object} BoardResponse
// @Failure  400 {object} ErrorResponse "invalid size / payout config"
// @Router   /admin/boards [post]
func handleCreateBoard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBoardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Boards.CreateBoard(
			c.Request.Context(),
			req.GameID,
			req.Size,
			req.PriceCents,
			req.HomeTeam,
			req.AwayTeam,
			domain.PayoutConfig{
				Q1Cents:       req.Payout.Q1Cents,
				Q2Cents:       req.Payout.Q2Cents,
				Q3Cents:       req.Payout.Q3Cents,
				FinalCents:    req.Payout.FinalCents,
				TotalPotCents: req.Payout.TotalPotCents,
			},
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, toBoardResponse(b))
	}
}

// @Summary  Assign numbers if the board is full
// @Param    id  path  string  true  "Board ID (uuid)"
// @Success  200 {object} BoardResponse
// @Failure  409 {object} ErrorResponse "board not full"
// @Router   /admin/boards/{id}/assign [post]
func handleAssignNumbers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Boards.AssignNumbersIfNeeded(c.Request.Context(), boardID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBoardResponse(b))
	}
}

// @Summary  Mark board completed
// @Param    id  path  string  true  "Board ID (uuid)"
// @Success  204
// @Router   /admin/boards/{id}/complete [post]
func handleCompleteBoard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		boardID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Boards.CompleteBoard(c.Request.Context(), boardID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseUUIDs(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		v, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, "invalid square id: "+s)
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// boards service
	case errors.Is(err, boards.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "board not found"})
		return
	case errors.Is(err, boards.ErrBoardConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "board conflict"})
		return
	case errors.Is(err, boards.ErrInvalidSize):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "board size must be 5 or 10"})
		return
	case errors.Is(err, boards.ErrConfigInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payout config"})
		return
	case errors.Is(err, boards.ErrBoardNotFull):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "board not full"})
		return
	case errors.Is(err, boards.ErrBoardNotLocked):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "board not locked"})
		return
	case errors.Is(err, boards.ErrNumbersNotAssigned):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "numbers not assigned"})
		return
	// ledger service
	case errors.Is(err, ledger.ErrBoardNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "board not found"})
		return
	case errors.Is(err, ledger.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "squares unavailable"})
		return
	case errors.Is(err, ledger.ErrOwnerMismatch):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "squares held by another user"})
		return
	case errors.Is(err, ledger.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid square transition"})
		return
	case errors.Is(err, ledger.ErrNoSquaresSelected):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no squares selected"})
		return
	// settlement service
	case errors.Is(err, settlement.ErrIntentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "payment not found"})
		return
	case errors.Is(err, settlement.ErrBadPayload):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed payload"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
