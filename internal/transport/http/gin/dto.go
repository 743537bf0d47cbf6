package httpgin

import (
	"time"

	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/payout"
)

type CreateBoardRequest struct {
	GameID     string `json:"game_id" binding:"required"`
	Size       int    `json:"size" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required,gt=0"`
	HomeTeam   string `json:"home_team" binding:"required"`
	AwayTeam   string `json:"away_team" binding:"required"`
	Payout     struct {
		Q1Cents       int64 `json:"q1_cents"`
		Q2Cents       int64 `json:"q2_cents"`
		Q3Cents       int64 `json:"q3_cents"`
		FinalCents    int64 `json:"final_cents"`
		TotalPotCents int64 `json:"total_pot_cents" binding:"required,gt=0"`
	} `json:"payout" binding:"required"`
}

type ReserveSquaresRequest struct {
	UserID    int64    `json:"user_id" binding:"required"`
	SquareIDs []string `json:"square_ids" binding:"required,min=1,dive,uuid"`
	TTLSec    int      `json:"ttl_sec"`
}

type ReleaseSquaresRequest struct {
	SquareIDs []string `json:"square_ids" binding:"required,min=1,dive,uuid"`
}

type ScoresRequest struct {
	Scores []ScoreInput `json:"scores" binding:"required,min=1,dive"`
}

type ScoreInput struct {
	Quarter string `json:"quarter" binding:"required,oneof=Q1 Q2 Q3 Final OT"`
	Home    int    `json:"home" binding:"min=0"`
	Away    int    `json:"away" binding:"min=0"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BoardResponse struct {
	ID         string `json:"id"`
	GameID     string `json:"game_id"`
	Size       int    `json:"size"`
	PriceCents int64  `json:"price_cents"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Status     string `json:"status"`
	RowNumbers []int  `json:"row_numbers,omitempty"`
	ColNumbers []int  `json:"col_numbers,omitempty"`
	Payout     struct {
		Q1Cents       int64 `json:"q1_cents"`
		Q2Cents       int64 `json:"q2_cents"`
		Q3Cents       int64 `json:"q3_cents"`
		FinalCents    int64 `json:"final_cents"`
		TotalPotCents int64 `json:"total_pot_cents"`
	} `json:"payout"`
	CreatedAt time.Time `json:"created_at"`
}

type SquareResponse struct {
	ID            string     `json:"id"`
	Row           int        `json:"row"`
	Col           int        `json:"col"`
	PriceCents    int64      `json:"price_cents"`
	Status        string     `json:"status"`
	OwnerID       int64      `json:"owner_id,omitempty"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
	PurchasedAt   *time.Time `json:"purchased_at,omitempty"`
}

type WinnersResponse struct {
	Winners           []payout.Winner  `json:"winners"`
	TotalPaidCents    int64            `json:"total_paid_cents"`
	RemainingPotCents int64            `json:"remaining_pot_cents"`
	Unclaimed         []domain.Quarter `json:"unclaimed,omitempty"`
}

type IntentResponse struct {
	Provider    string    `json:"provider"`
	ExternalID  string    `json:"external_id"`
	BoardID     string    `json:"board_id"`
	SquareIDs   []string  `json:"square_ids"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBoardResponse(b *domain.Board) BoardResponse {
	r := BoardResponse{
		ID:         b.ID.String(),
		GameID:     b.GameID,
		Size:       b.Size,
		PriceCents: b.PriceCents,
		HomeTeam:   b.HomeTeam,
		AwayTeam:   b.AwayTeam,
		Status:     string(b.Status),
		RowNumbers: b.RowNumbers,
		ColNumbers: b.ColNumbers,
		CreatedAt:  b.CreatedAt,
	}
	r.Payout.Q1Cents = b.Payout.Q1Cents
	r.Payout.Q2Cents = b.Payout.Q2Cents
	r.Payout.Q3Cents = b.Payout.Q3Cents
	r.Payout.FinalCents = b.Payout.FinalCents
	r.Payout.TotalPotCents = b.Payout.TotalPotCents
	return r
}

func toSquareResponse(sq domain.Square) SquareResponse {
	return SquareResponse{
		ID:            sq.ID.String(),
		Row:           sq.Row,
		Col:           sq.Col,
		PriceCents:    sq.PriceCents,
		Status:        string(sq.Ownership.Status),
		OwnerID:       sq.Ownership.OwnerID,
		ReservedUntil: sq.Ownership.ReservedUntil,
		PurchasedAt:   sq.Ownership.PurchasedAt,
	}
}

func toSquareResponses(sqs []domain.Square) []SquareResponse {
	out := make([]SquareResponse, 0, len(sqs))
	for _, sq := range sqs {
		out = append(out, toSquareResponse(sq))
	}
	return out
}

func toIntentResponse(in *domain.PaymentIntent) IntentResponse {
	ids := make([]string, 0, len(in.SquareIDs))
	for _, id := range in.SquareIDs {
		ids = append(ids, id.String())
	}
	return IntentResponse{
		Provider:    string(in.Provider),
		ExternalID:  in.ExternalID,
		BoardID:     in.BoardID.String(),
		SquareIDs:   ids,
		UserID:      in.UserID,
		AmountCents: in.AmountCents,
		Status:      string(in.Status),
		UpdatedAt:   in.UpdatedAt,
	}
}
