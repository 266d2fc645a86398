package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	boarderrors "github.com/hrygo/personalboard/server/internal/errors"
	"github.com/hrygo/personalboard/store"
)

const historyCreatedMessage = "History created successfully"

// SubmitHistoryRequest is the body of both submission endpoints.
type SubmitHistoryRequest struct {
	UserID    string `json:"user_id"`
	UserInput string `json:"user_input"`
}

// SubmitHistoryResponse acknowledges a stored submission.
type SubmitHistoryResponse struct {
	Message  string `json:"message"`
	BatchUID string `json:"batch_uid"`
	Count    int    `json:"count"`
}

// History is the JSON form of a history row.
type History struct {
	ID           int64  `json:"id"`
	UID          string `json:"uid"`
	BatchUID     string `json:"batch_uid"`
	UserID       string `json:"user_id"`
	MemberID     string `json:"member_id"`
	UserInput    string `json:"user_input"`
	MemberOutput string `json:"member_output"`
	CreatedAt    string `json:"created_at"`
}

func convertHistoryFromStore(h *store.History) *History {
	return &History{
		ID:           h.ID,
		UID:          h.UID,
		BatchUID:     h.BatchUID,
		UserID:       h.UserID,
		MemberID:     h.MemberID,
		UserInput:    h.UserInput,
		MemberOutput: h.MemberOutput,
		CreatedAt:    time.Unix(h.CreatedTs, 0).UTC().Format(time.RFC3339),
	}
}

// CreateHistory asks every member of the user's board.
// POST /api/history
func (s *APIV1Service) CreateHistory(c echo.Context) error {
	req, err := s.decodeSubmission(c)
	if err != nil {
		return s.errorResponse(c, err)
	}

	submission, err := s.BoardService.CreateForAllMembers(c.Request().Context(), req.UserID, req.UserInput)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, SubmitHistoryResponse{
		Message:  historyCreatedMessage,
		BatchUID: submission.BatchUID,
		Count:    submission.Count,
	})
}

// CreateHistoryForMember asks a single member.
// POST /api/history/member/:id
func (s *APIV1Service) CreateHistoryForMember(c echo.Context) error {
	req, err := s.decodeSubmission(c)
	if err != nil {
		return s.errorResponse(c, err)
	}

	submission, err := s.BoardService.CreateForMember(c.Request().Context(), c.Param("id"), req.UserID, req.UserInput)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, SubmitHistoryResponse{
		Message:  historyCreatedMessage,
		BatchUID: submission.BatchUID,
		Count:    submission.Count,
	})
}

// ListMemberHistory returns a member's answers to a user, newest first.
// GET /api/history/member/:memberId/user/:userId
func (s *APIV1Service) ListMemberHistory(c echo.Context) error {
	list, err := s.BoardService.ListHistory(c.Request().Context(), c.Param("memberId"), c.Param("userId"))
	if err != nil {
		return s.errorResponse(c, err)
	}

	response := make([]*History, 0, len(list))
	for _, h := range list {
		response = append(response, convertHistoryFromStore(h))
	}
	return c.JSON(http.StatusOK, response)
}

// decodeSubmission validates the body and spends one token of the user's submission budget.
func (s *APIV1Service) decodeSubmission(c echo.Context) (*SubmitHistoryRequest, error) {
	req := &SubmitHistoryRequest{}
	if err := decodeBody(c, s.schemas.submitHistory, req); err != nil {
		return nil, err
	}
	if !s.rateLimiter.Allow(req.UserID) {
		return nil, boarderrors.RateLimitExceeded("too many submissions, try again later")
	}
	return req, nil
}
