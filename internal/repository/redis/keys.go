package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "gridplay:v1"

func KeyBoardSummary(boardID uuid.UUID) string {
	return fmt.Sprintf("%s:board:%s:summary", ns, boardID)
}

func KeyBoardAvailability(boardID uuid.UUID) string {
	return fmt.Sprintf("%s:board:%s:availability", ns, boardID)
}

func KeyBoardGrid(boardID uuid.UUID) string {
	return fmt.Sprintf("%s:board:%s:grid", ns, boardID)
}

func KeyIdemReserve(boardID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:reserve:%s:%s", ns, boardID, idemKey)
}

func ChannelBoardsChanged() string {
	return ns + ":boards:changed"
}
